// Package registry resolves the run definition and assembles the hook sets
// contributed by service plugins and user configuration.
package registry

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gridware/wd-launcher/hooks"
	"github.com/gridware/wd-launcher/types"
	"github.com/gridware/wd-launcher/version"
)

// Service is a named plugin attached to a run. A service contributes hook
// callbacks by additionally implementing any of the *Hooker interfaces; a
// service that implements none of them is carried through the hook pipeline
// as an inert entry.
type Service interface {
	ServiceName() string
}

// PrepareHooker is implemented by services that participate in the
// pre-launch lifecycle point.
type PrepareHooker interface {
	OnPrepare(ctx context.Context, cfg *types.RunConfig, caps []types.Capability) error
}

// WorkerStartHooker is implemented by services that participate in the
// pre-worker-session lifecycle point.
type WorkerStartHooker interface {
	OnWorkerStart(ctx context.Context, workerID string, cap types.Capability, specs []string) error
}

// CompleteHooker is implemented by services that participate in the post-run
// lifecycle point.
type CompleteHooker interface {
	OnComplete(ctx context.Context, exitCode int, cfg *types.RunConfig, caps []types.Capability, results *types.ResultSummary) error
}

// VersionedService is implemented by service plugins that require a minimum
// launcher version. The requirement is checked once, at instantiation.
type VersionedService interface {
	RequiredLauncherVersion() string
}

// ModularService is implemented by service plugins distributed as standalone
// Go modules. The declared module path is validated at instantiation.
type ModularService interface {
	ModulePath() string
}

// Factory builds a service instance for a run.
type Factory func() Service

// Config contains registry configuration
type Config struct {
	Log             *zap.SugaredLogger
	RunConfigFile   string
	Factories       map[string]Factory
	LauncherVersion string
}

// Registry owns the normalized run definition and the instantiated services.
type Registry struct {
	config   Config
	run      *types.RunConfig
	services []Service

	userPrepare     []any
	userWorkerStart []any
	userComplete    []any

	mu sync.RWMutex
}

// NewRegistry loads the run definition, normalizes its capabilities and
// instantiates the configured services.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.RunConfigFile == "" {
		return nil, fmt.Errorf("run config file is required")
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop().Sugar()
	}

	r := &Registry{config: cfg}

	run, err := LoadRunConfig(cfg.RunConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load run config: %w", err)
	}
	r.run = run

	for _, name := range run.Services {
		factory, ok := cfg.factoryFor(name)
		if !ok {
			return nil, fmt.Errorf("unknown service %q", name)
		}
		svc := factory()
		if err := r.checkService(svc); err != nil {
			return nil, err
		}
		r.services = append(r.services, svc)
	}

	cfg.Log.Debugw("Registry loaded",
		"capabilities", len(run.Capabilities),
		"specs", len(run.Specs),
		"services", len(r.services))

	return r, nil
}

// factoryFor resolves a configured service name to its factory. The run
// definition may use either the short name ("sauce") or the canonical package
// name ("wd-launcher-sauce-service"), independently of which form the factory
// was registered under.
func (c Config) factoryFor(name string) (Factory, bool) {
	if f, ok := c.Factories[name]; ok {
		return f, true
	}
	if f, ok := c.Factories[version.ServiceShortName(name)]; ok {
		return f, true
	}
	if f, ok := c.Factories[version.ServicePackageName(name)]; ok {
		return f, true
	}
	return nil, false
}

// checkService validates a freshly instantiated service plugin against its
// declared module path and launcher version requirement.
func (r *Registry) checkService(svc Service) error {
	if m, ok := svc.(ModularService); ok && m.ModulePath() != "" {
		if err := version.ValidateModulePath(m.ModulePath()); err != nil {
			return fmt.Errorf("service %q: %w", svc.ServiceName(), err)
		}
	}
	if v, ok := svc.(VersionedService); ok && r.config.LauncherVersion != "" {
		if req := v.RequiredLauncherVersion(); req != "" {
			if err := version.Compatible(r.config.LauncherVersion, req); err != nil {
				return fmt.Errorf("service %q: %w", svc.ServiceName(), err)
			}
		}
	}
	return nil
}

// RunConfig returns the normalized run definition.
func (r *Registry) RunConfig() *types.RunConfig {
	return r.run
}

// Services returns the instantiated service plugins in configuration order.
func (r *Registry) Services() []Service {
	return r.services
}

// AddOnPrepare appends a user hook to the pre-launch hook set. The entry is
// deliberately untyped: unsupported values are tolerated by the engine and
// skipped at execution time.
func (r *Registry) AddOnPrepare(hook any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userPrepare = append(r.userPrepare, hook)
}

// AddOnWorkerStart appends a user hook to the pre-worker-session hook set.
func (r *Registry) AddOnWorkerStart(hook any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userWorkerStart = append(r.userWorkerStart, hook)
}

// AddOnComplete appends a user hook to the post-run hook set.
func (r *Registry) AddOnComplete(hook any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userComplete = append(r.userComplete, hook)
}

// PrepareHooks assembles the ordered pre-launch hook set: service hooks in
// configuration order first, then user hooks in registration order. Services
// without an OnPrepare hook stay in the set as inert entries so hook
// positions line up with the service list.
func (r *Registry) PrepareHooks() []any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var set []any
	for _, svc := range r.services {
		if h, ok := svc.(PrepareHooker); ok {
			set = append(set, hooks.HookFunc(func(ctx context.Context, args ...any) error {
				return h.OnPrepare(ctx, r.run, r.run.Capabilities)
			}))
		} else {
			set = append(set, svc)
		}
	}
	return append(set, r.userPrepare...)
}

// WorkerStartHooks assembles the ordered pre-worker-session hook set. The
// worker identity and capability arrive through the hook argument tuple.
func (r *Registry) WorkerStartHooks() []any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var set []any
	for _, svc := range r.services {
		if h, ok := svc.(WorkerStartHooker); ok {
			set = append(set, hooks.HookFunc(func(ctx context.Context, args ...any) error {
				workerID, cap, specs, err := workerStartArgs(args)
				if err != nil {
					return err
				}
				return h.OnWorkerStart(ctx, workerID, cap, specs)
			}))
		} else {
			set = append(set, svc)
		}
	}
	return append(set, r.userWorkerStart...)
}

// CompleteHooks assembles the ordered post-run hook set.
func (r *Registry) CompleteHooks() []any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var set []any
	for _, svc := range r.services {
		if h, ok := svc.(CompleteHooker); ok {
			set = append(set, hooks.HookFunc(func(ctx context.Context, args ...any) error {
				exitCode, cfg, caps, results, err := completeArgs(args)
				if err != nil {
					return err
				}
				return h.OnComplete(ctx, exitCode, cfg, caps, results)
			}))
		} else {
			set = append(set, svc)
		}
	}
	return append(set, r.userComplete...)
}

// workerStartArgs unpacks the pre-worker-session argument tuple.
func workerStartArgs(args []any) (string, types.Capability, []string, error) {
	if len(args) < 3 {
		return "", types.Capability{}, nil, fmt.Errorf("worker start hook expects (workerID, capability, specs), got %d arguments", len(args))
	}
	workerID, ok := args[0].(string)
	if !ok {
		return "", types.Capability{}, nil, fmt.Errorf("worker start hook: first argument is %T, not a worker ID", args[0])
	}
	cap, ok := args[1].(types.Capability)
	if !ok {
		return "", types.Capability{}, nil, fmt.Errorf("worker start hook: second argument is %T, not a capability", args[1])
	}
	specs, _ := args[2].([]string)
	return workerID, cap, specs, nil
}

// completeArgs unpacks the post-run argument tuple.
func completeArgs(args []any) (int, *types.RunConfig, []types.Capability, *types.ResultSummary, error) {
	if len(args) < 4 {
		return 0, nil, nil, nil, fmt.Errorf("complete hook expects (exitCode, config, capabilities, results), got %d arguments", len(args))
	}
	exitCode, ok := args[0].(int)
	if !ok {
		return 0, nil, nil, nil, fmt.Errorf("complete hook: first argument is %T, not an exit code", args[0])
	}
	cfg, _ := args[1].(*types.RunConfig)
	caps, _ := args[2].([]types.Capability)
	results, _ := args[3].(*types.ResultSummary)
	return exitCode, cfg, caps, results, nil
}

// LoadRunConfig reads and normalizes a YAML run definition.
func LoadRunConfig(path string) (*types.RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run config %q: %w", path, err)
	}

	var run types.RunConfig
	if err := yaml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to parse run config %q: %w", path, err)
	}

	if err := normalizeRunConfig(&run); err != nil {
		return nil, err
	}
	return &run, nil
}

// normalizeRunConfig validates the run definition and fills in defaults.
func normalizeRunConfig(run *types.RunConfig) error {
	if len(run.Specs) == 0 {
		return fmt.Errorf("run config must list at least one spec")
	}
	if len(run.Capabilities) == 0 {
		return fmt.Errorf("run config must list at least one capability")
	}
	if run.MaxWorkers <= 0 {
		run.MaxWorkers = 1
	}
	for i := range run.Capabilities {
		cap := &run.Capabilities[i]
		if cap.BrowserName == "" {
			return fmt.Errorf("capability %d is missing browserName", i)
		}
		if cap.MaxInstances <= 0 {
			cap.MaxInstances = 1
		}
	}
	return nil
}
