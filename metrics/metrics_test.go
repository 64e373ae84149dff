package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordError(t *testing.T) {
	// just test that it doesn't panic
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("RecordError panic'd")
		}
	}()

	RecordError("test_error")
}

func TestRecordErrorDetails(t *testing.T) {
	RecordErrorDetails("test", nil)
	RecordErrorDetails("test", errors.New("sample error"))
}

func TestRecordHookSet(t *testing.T) {
	before := testutil.ToFloat64(hookEntriesTotal.WithLabelValues("onPrepare"))

	RecordHookSet("onPrepare", 3)
	RecordHookSet("onPrepare", 2)

	assert.Equal(t, before+5, testutil.ToFloat64(hookEntriesTotal.WithLabelValues("onPrepare")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(hookSetsTotal.WithLabelValues("onPrepare")), 2.0)
}

func TestRecordHookFailure(t *testing.T) {
	ordinaryBefore := testutil.ToFloat64(hookFailuresTotal.WithLabelValues("onComplete", "ordinary"))
	severeBefore := testutil.ToFloat64(hookFailuresTotal.WithLabelValues("onComplete", "severe"))

	RecordHookFailure("onComplete", false)
	RecordHookFailure("onComplete", true)
	RecordHookFailure("onComplete", true)

	assert.Equal(t, ordinaryBefore+1, testutil.ToFloat64(hookFailuresTotal.WithLabelValues("onComplete", "ordinary")))
	assert.Equal(t, severeBefore+2, testutil.ToFloat64(hookFailuresTotal.WithLabelValues("onComplete", "severe")))
}

func TestRecordRun(t *testing.T) {
	RecordRun("run1", "pass", 3, 0, 2*time.Second)
	RecordRun("run2", "fail", 1, 2, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(runResults.WithLabelValues("run1", "pass")))
	assert.Equal(t, 3.0, testutil.ToFloat64(workerSessionsTotal.WithLabelValues("run1", "pass")))
	assert.Equal(t, 2.0, testutil.ToFloat64(workerSessionsTotal.WithLabelValues("run2", "fail")))
	assert.Equal(t, 1.0, testutil.ToFloat64(runDurationSeconds.WithLabelValues("run2")))
}
