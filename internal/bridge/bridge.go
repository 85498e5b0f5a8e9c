package bridge

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/terp/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/terp/internal/logging"
	"github.com/GriffinCanCode/terp/internal/sandbox"
	"github.com/GriffinCanCode/terp/internal/shared/id"
)

// Bridge boots one runtime and forwards projects into it.
//
// A Bridge is single-use: Init runs at most once, and the runtime it
// creates lives until Close.
type Bridge struct {
	id      id.BridgeID
	factory Factory
	logger  *logging.Logger
	metrics *monitoring.Metrics
	prefix  string

	mu      sync.RWMutex
	state   State
	mode    sandbox.Mode
	runtime Runtime
	loader  sandbox.Loader
	ready   chan struct{}
}

// New creates a Bridge that builds its runtime with factory.
//
// Passing a nil factory panics to surface wiring bugs immediately.
func New(factory Factory, opts ...Option) *Bridge {
	if factory == nil {
		panic("bridge: Factory must not be nil")
	}

	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	if cfg.suspendPrefix == "" {
		cfg.suspendPrefix = DefaultSuspendPrefix
	}

	bid := id.NewBridgeID()
	return &Bridge{
		id:      bid,
		factory: factory,
		logger:  cfg.logger.With(zap.String("bridge_id", bid.String())),
		metrics: cfg.metrics,
		prefix:  cfg.suspendPrefix,
		state:   StateUninitialized,
		ready:   make(chan struct{}),
	}
}

// Init prepares the sandbox, creates the runtime for mode and runs its
// entry point until the runtime yields.
//
// Init returns nil only after the runtime has registered its loader. An
// exit carrying the suspend prefix is the expected way for the runtime to
// yield and is not an error. Any other exit is returned exactly as the
// runtime raised it, as are Prepare and Create failures.
func (b *Bridge) Init(ctx context.Context, mode sandbox.Mode) error {
	if err := mode.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	switch b.state {
	case StateUninitialized:
	case StateClosed:
		b.mu.Unlock()
		return ErrClosed
	default:
		b.mu.Unlock()
		return ErrAlreadyInitialized
	}
	b.mode = mode
	b.state = StateSandboxPreparing
	b.mu.Unlock()

	logger := b.logger.With(zap.String("mode", mode.String()))
	logger.Debug("Bridge state changed",
		zap.Stringer("from", StateUninitialized),
		zap.Stringer("to", StateSandboxPreparing),
	)
	timer := monitoring.NewTimer()

	outcome := b.initialize(ctx, mode, logger)
	if outcome.Kind == Failed {
		b.metrics.RecordInit(mode.String(), outcome.Kind.String(), timer.Elapsed())
		b.transition(StateFailed, logger)
		logger.Error("Bridge init failed", zap.Error(outcome.Err), zap.Duration("elapsed", timer.Elapsed()))
		return outcome.Err
	}

	b.mu.Lock()
	if b.state == StateClosed {
		b.mu.Unlock()
		b.metrics.RecordInit(mode.String(), Failed.String(), timer.Elapsed())
		return ErrClosed
	}
	b.loader = outcome.Loader
	b.state = StateSuspended
	b.mu.Unlock()
	close(b.ready)
	b.metrics.RecordInit(mode.String(), outcome.Kind.String(), timer.Elapsed())
	b.metrics.IncBridgesReady()

	logger.Info("Bridge ready",
		zap.String("outcome", outcome.Kind.String()),
		zap.Duration("elapsed", timer.Elapsed()),
	)
	return nil
}

// initialize prepares the sandbox, moves to RuntimeStarting and reports how
// the entry point returned. Init has already claimed SandboxPreparing.
func (b *Bridge) initialize(ctx context.Context, mode sandbox.Mode, logger *logging.Logger) Outcome {
	if err := b.factory.Prepare(ctx); err != nil {
		return Outcome{Kind: Failed, Err: err}
	}

	slot := newLoaderSlot()
	rt, err := b.factory.Create(mode, slot.register)
	if err != nil {
		return Outcome{Kind: Failed, Err: err}
	}

	b.mu.Lock()
	if b.state == StateClosed {
		b.mu.Unlock()
		_ = rt.Close()
		return Outcome{Kind: Failed, Err: ErrClosed}
	}
	b.runtime = rt
	b.mu.Unlock()
	b.transition(StateRuntimeStarting, logger)

	return b.start(ctx, rt, slot)
}

// start runs the entry point inside the classifying boundary. A Go panic
// escaping the runtime marks the bridge failed and is re-raised.
func (b *Bridge) start(ctx context.Context, rt Runtime, slot *loaderSlot) Outcome {
	defer func() {
		if e := recover(); e != nil {
			b.transition(StateFailed, b.logger)
			panic(e)
		}
	}()

	err := rt.Run(ctx)
	if err != nil && IsSuspendSignal(err, b.prefix) {
		b.logger.Debug("Runtime yielded", zap.String("signal", sandbox.ExitMessage(err)))
	}
	return classify(err, b.prefix, slot)
}

// Load forwards project, unchanged, to the runtime's loader. Errors the
// loader raises are returned as-is.
func (b *Bridge) Load(project interface{}) error {
	b.mu.RLock()
	state, loader := b.state, b.loader
	b.mu.RUnlock()

	switch state {
	case StateSuspended:
	case StateClosed:
		return ErrClosed
	default:
		return ErrNotReady
	}

	err := loader.Load(project)
	b.metrics.RecordLoad(err)
	if err != nil {
		b.logger.Warn("Project load failed", zap.Error(err))
	}
	return err
}

// Close releases the runtime. Close is idempotent.
func (b *Bridge) Close() error {
	b.mu.Lock()
	prev := b.state
	rt := b.runtime
	b.state = StateClosed
	b.runtime = nil
	b.loader = nil
	b.mu.Unlock()

	if prev == StateClosed {
		return nil
	}
	if prev == StateSuspended {
		b.metrics.DecBridgesReady()
	}
	b.logger.Debug("Bridge closed", zap.Stringer("from", prev))

	if rt == nil {
		return nil
	}
	return rt.Close()
}

// ID returns the bridge identifier
func (b *Bridge) ID() id.BridgeID {
	return b.id
}

// State returns the current lifecycle state
func (b *Bridge) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.state
}

// Mode returns the mode passed to Init, or "" before Init
func (b *Bridge) Mode() sandbox.Mode {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.mode
}

// Console returns the console output the runtime captured so far, or nil
// when there is no runtime or it does not capture output.
func (b *Bridge) Console() []sandbox.LogEntry {
	b.mu.RLock()
	rt := b.runtime
	b.mu.RUnlock()

	if c, ok := rt.(interface{ Console() []sandbox.LogEntry }); ok {
		return c.Console()
	}
	return nil
}

// Ready is closed once Init has succeeded
func (b *Bridge) Ready() <-chan struct{} {
	return b.ready
}

// transition moves to state unless the bridge was closed meanwhile
func (b *Bridge) transition(state State, logger *logging.Logger) {
	b.mu.Lock()
	prev := b.state
	if prev != StateClosed {
		b.state = state
	}
	b.mu.Unlock()

	logger.Debug("Bridge state changed", zap.Stringer("from", prev), zap.Stringer("to", state))
}
