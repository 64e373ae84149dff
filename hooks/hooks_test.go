package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	sync := HookFunc(func(ctx context.Context, args ...any) error { return nil })

	tests := []struct {
		name string
		ref  any
		want int
	}{
		{
			name: "absent reference yields empty set",
			ref:  nil,
			want: 0,
		},
		{
			name: "single callable yields one entry",
			ref:  sync,
			want: 1,
		},
		{
			name: "any slice passes through",
			ref:  []any{sync, "not-a-function", 42},
			want: 3,
		},
		{
			name: "typed hook slice is converted",
			ref:  []HookFunc{sync, sync},
			want: 2,
		},
		{
			name: "untyped function slice is converted",
			ref: []func(context.Context, ...any) error{
				func(ctx context.Context, args ...any) error { return nil },
			},
			want: 1,
		},
		{
			name: "untyped async function slice is converted",
			ref: []func(context.Context, ...any) <-chan error{
				func(ctx context.Context, args ...any) <-chan error { return nil },
			},
			want: 1,
		},
		{
			name: "single non-callable is preserved",
			ref:  "oops",
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Normalize(tt.ref), tt.want)
		})
	}
}

func TestNormalizeRawAsyncSliceEntriesAreCallable(t *testing.T) {
	ran := false
	entries := Normalize([]func(context.Context, ...any) <-chan error{
		func(ctx context.Context, args ...any) <-chan error {
			ran = true
			done := make(chan error, 1)
			done <- nil
			return done
		},
	})
	require.Len(t, entries, 1)

	done, err, callable := invoke(context.Background(), entries[0], nil)
	require.True(t, callable)
	require.NoError(t, err)
	require.NotNil(t, done)
	assert.NoError(t, <-done)
	assert.True(t, ran)
}

func TestNormalizePreservesOrder(t *testing.T) {
	entries := Normalize([]any{"first", "second", "third"})
	require.Len(t, entries, 3)
	assert.Equal(t, "first", entries[0])
	assert.Equal(t, "second", entries[1])
	assert.Equal(t, "third", entries[2])
}

func TestInvokeCallableShapes(t *testing.T) {
	ctx := context.Background()

	t.Run("canonical sync hook receives the argument tuple", func(t *testing.T) {
		var got []any
		entry := HookFunc(func(ctx context.Context, args ...any) error {
			got = args
			return nil
		})
		done, err, callable := invoke(ctx, entry, []any{1, "two", 3.0})
		require.True(t, callable)
		require.NoError(t, err)
		assert.Nil(t, done)
		assert.Equal(t, []any{1, "two", 3.0}, got)
	})

	t.Run("bare error func", func(t *testing.T) {
		called := false
		done, err, callable := invoke(ctx, func() error { called = true; return nil }, nil)
		require.True(t, callable)
		require.NoError(t, err)
		assert.Nil(t, done)
		assert.True(t, called)
	})

	t.Run("niladic func", func(t *testing.T) {
		called := false
		_, err, callable := invoke(ctx, func() { called = true }, nil)
		require.True(t, callable)
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("variadic func without context", func(t *testing.T) {
		var got []any
		_, err, callable := invoke(ctx, func(args ...any) error { got = args; return nil }, []any{"a"})
		require.True(t, callable)
		require.NoError(t, err)
		assert.Equal(t, []any{"a"}, got)
	})

	t.Run("async hook returns its completion channel", func(t *testing.T) {
		entry := AsyncHookFunc(func(ctx context.Context, args ...any) <-chan error {
			done := make(chan error, 1)
			done <- nil
			return done
		})
		done, err, callable := invoke(ctx, entry, nil)
		require.True(t, callable)
		require.NoError(t, err)
		require.NotNil(t, done)
		assert.NoError(t, <-done)
	})

	t.Run("non-callable entries are skipped", func(t *testing.T) {
		for _, entry := range []any{nil, "str", 42, struct{}{}, []string{"x"}} {
			_, err, callable := invoke(ctx, entry, nil)
			assert.False(t, callable)
			assert.NoError(t, err)
		}
	})

	t.Run("unsupported function signatures are skipped", func(t *testing.T) {
		_, _, callable := invoke(ctx, func(s string) error { return nil }, nil)
		assert.False(t, callable)
	})
}

func TestInvokeRecoversPanics(t *testing.T) {
	ctx := context.Background()

	t.Run("sync panic becomes a hook failure", func(t *testing.T) {
		entry := HookFunc(func(ctx context.Context, args ...any) error {
			panic("boom")
		})
		done, err, callable := invoke(ctx, entry, nil)
		require.True(t, callable)
		assert.Nil(t, done)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("panic while starting an async hook becomes a failure", func(t *testing.T) {
		entry := AsyncHookFunc(func(ctx context.Context, args ...any) <-chan error {
			panic("bad start")
		})
		done, err, callable := invoke(ctx, entry, nil)
		require.True(t, callable)
		assert.Nil(t, done)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad start")
	})
}

func TestSevereError(t *testing.T) {
	base := errors.New("selenium grid unreachable")
	severe := NewSevereError(base)

	assert.True(t, IsSevere(severe))
	assert.True(t, IsSevere(Severef("no devices for %q", "iPhone")))
	assert.ErrorIs(t, severe, base)
	assert.Contains(t, severe.Error(), "severe service error")

	assert.False(t, IsSevere(nil))
	assert.False(t, IsSevere(errors.New("ordinary")))

	// Severity survives wrapping.
	wrapped := errors.Join(errors.New("context"), severe)
	assert.True(t, IsSevere(wrapped))
}
