package sandbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/terp/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/terp/internal/logging"
)

// Factory prepares a module and constructs runtimes from it.
type Factory struct {
	source  Source
	config  Config
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu     sync.RWMutex
	module *Module
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithConfig sets the configuration applied to every runtime.
func WithConfig(config Config) FactoryOption {
	return func(f *Factory) {
		f.config = config
	}
}

// WithLogger sets the logger. Runtimes derive their loggers from it.
func WithLogger(logger *logging.Logger) FactoryOption {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMetrics records prepare outcomes.
func WithMetrics(metrics *monitoring.Metrics) FactoryOption {
	return func(f *Factory) {
		f.metrics = metrics
	}
}

// NewFactory creates a factory for the module served by src.
func NewFactory(src Source, opts ...FactoryOption) *Factory {
	f := &Factory{
		source: src,
		config: DefaultConfig(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Prepare compiles the factory's module. It must succeed before Create.
// Repeated calls are cheap: compiled modules are shared process-wide.
func (f *Factory) Prepare(ctx context.Context) error {
	module, cached, err := prepare(ctx, f.source)
	if err != nil {
		f.metrics.RecordPrepare(monitoring.PrepareError)
		f.logger.Error("Sandbox preparation failed", zap.Error(err))
		return err
	}

	if cached {
		f.metrics.RecordPrepare(monitoring.PrepareCached)
	} else {
		f.metrics.RecordPrepare(monitoring.PrepareCompiled)
	}

	f.mu.Lock()
	f.module = module
	f.mu.Unlock()

	f.logger.Debug("Sandbox prepared",
		zap.String("module", module.Name),
		zap.String("hash", module.Hash[:12]),
		zap.Bool("cached", cached),
	)
	return nil
}

// Module returns the prepared module, or nil before Prepare succeeds.
func (f *Factory) Module() *Module {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.module
}

// Create constructs a runtime for mode. No I/O happens here; register is
// only stored and will be called from inside Run.
//
// All failures are reported as *InstantiationError.
func (f *Factory) Create(mode Mode, register RegisterFunc) (*Runtime, error) {
	if err := mode.Validate(); err != nil {
		return nil, &InstantiationError{Mode: mode, Err: err}
	}
	if register == nil {
		return nil, &InstantiationError{Mode: mode, Err: ErrNilRegister}
	}

	module := f.Module()
	if module == nil {
		return nil, &InstantiationError{Mode: mode, Err: ErrNotPrepared}
	}

	r := newRuntime(mode, f.config, f.logger)

	if _, err := r.vm.RunProgram(module.program); err != nil {
		return nil, &InstantiationError{Mode: mode, Err: err}
	}

	ctor, ok := goja.AssertFunction(r.vm.Get(mode.Export()))
	if !ok {
		return nil, &InstantiationError{Mode: mode, Err: fmt.Errorf("%w: %s", ErrMissingExport, mode.Export())}
	}

	instance, err := ctor(goja.Undefined(), r.vm.ToValue(r.makeRegisterFunc(register)))
	if err != nil {
		return nil, &InstantiationError{Mode: mode, Err: err}
	}

	obj, ok := instance.(*goja.Object)
	if !ok {
		return nil, &InstantiationError{Mode: mode, Err: ErrNoEntryPoint}
	}
	run, ok := goja.AssertFunction(obj.Get("run"))
	if !ok {
		return nil, &InstantiationError{Mode: mode, Err: ErrNoEntryPoint}
	}

	r.run = run
	r.obj = obj

	r.logger.Debug("Runtime created", zap.String("module", module.Name))
	return r, nil
}
