package sandbox

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/terp/internal/logging"
	"github.com/GriffinCanCode/terp/internal/shared/id"
)

// Runtime is one instantiated runtime: a goja VM that has evaluated a
// module and constructed an instance for a single mode.
//
// The VM is not safe for concurrent use, so Run and every Loader call made
// through a loader this runtime registered are serialized.
type Runtime struct {
	id     id.RuntimeID
	mode   Mode
	config Config
	logger *logging.Logger

	mu  sync.Mutex
	vm  *goja.Runtime
	run goja.Callable
	obj goja.Value

	// Console output
	console   []LogEntry
	consoleMu sync.Mutex
}

// newRuntime creates a VM with the global scope locked down
func newRuntime(mode Mode, config Config, logger *logging.Logger) *Runtime {
	rid := id.NewRuntimeID()
	r := &Runtime{
		id:      rid,
		mode:    mode,
		config:  config,
		logger:  logger.With(zap.String("runtime_id", rid.String()), zap.String("mode", mode.String())),
		vm:      goja.New(),
		console: []LogEntry{},
	}

	if config.MaxCallStackSize > 0 {
		r.vm.SetMaxCallStackSize(config.MaxCallStackSize)
	}

	r.setupGlobals()
	return r
}

// ID returns the runtime identifier
func (r *Runtime) ID() id.RuntimeID {
	return r.id
}

// Mode returns the mode the runtime was constructed for
func (r *Runtime) Mode() Mode {
	return r.mode
}

// Run invokes the instance's run entry point.
//
// Whatever the entry point throws is returned unchanged, normally as a
// *goja.Exception. Cancelling ctx or exceeding Config.StartupTimeout
// interrupts the VM and yields a *goja.InterruptedError.
func (r *Runtime) Run(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return ErrRuntimeClosed
	}
	vm := r.vm

	var timeout <-chan time.Time
	if r.config.StartupTimeout > 0 {
		timer := time.NewTimer(r.config.StartupTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	// Interrupt watcher; joined before the interrupt flag is cleared
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-timeout:
			vm.Interrupt("startup timeout exceeded")
		case <-ctx.Done():
			vm.Interrupt("context cancelled")
		case <-stop:
		}
	}()

	_, err := r.run(r.obj)

	close(stop)
	wg.Wait()
	vm.ClearInterrupt()

	return err
}

// Console returns a copy of the console output captured so far
func (r *Runtime) Console() []LogEntry {
	r.consoleMu.Lock()
	defer r.consoleMu.Unlock()

	return append([]LogEntry{}, r.console...)
}

// Close releases the VM. Loaders registered by this runtime fail with
// ErrRuntimeClosed afterwards.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.run = nil
	r.obj = nil
	return nil
}

// setupGlobals configures global objects and security
func (r *Runtime) setupGlobals() {
	// Remove dangerous globals
	r.vm.Set("require", goja.Undefined())
	r.vm.Set("process", goja.Undefined())
	r.vm.Set("module", goja.Undefined())
	r.vm.Set("exports", goja.Undefined())

	console := r.vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		console.Set(level, r.makeConsoleFunc(level))
	}
	r.vm.Set("console", console)

	// Timers are not available before the host yields back
	r.vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
	r.vm.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
}

// makeConsoleFunc creates a console function
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		msg := strings.Join(parts, " ")

		r.consoleMu.Lock()
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: msg,
			Time:    time.Now(),
		})
		r.consoleMu.Unlock()

		if r.config.EnableConsole {
			r.logConsole(level, msg)
		}

		return goja.Undefined()
	}
}

func (r *Runtime) logConsole(level, msg string) {
	switch level {
	case "error":
		r.logger.Error(msg, zap.String("source", "console"))
	case "warn":
		r.logger.Warn(msg, zap.String("source", "console"))
	case "debug":
		r.logger.Debug(msg, zap.String("source", "console"))
	default:
		r.logger.Info(msg, zap.String("source", "console"))
	}
}

// makeRegisterFunc exposes register to the instance constructor. The
// argument may be an object with a callable load method or a bare function.
func (r *Runtime) makeRegisterFunc(register RegisterFunc) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		arg := call.Argument(0)

		var (
			fn   goja.Callable
			this goja.Value = goja.Undefined()
			ok   bool
		)
		if fn, ok = goja.AssertFunction(arg); !ok {
			if obj, isObj := arg.(*goja.Object); isObj {
				fn, ok = goja.AssertFunction(obj.Get("load"))
				this = obj
			}
		}
		if !ok {
			panic(r.vm.NewTypeError("register: loader must be a function or expose a load method"))
		}

		if err := register(&jsLoader{rt: r, fn: fn, this: this}); err != nil {
			panic(r.vm.NewTypeError("register: " + err.Error()))
		}

		r.logger.Debug("Runtime registered loader")
		return goja.Undefined()
	}
}

// jsLoader forwards projects to a loader living inside the VM
type jsLoader struct {
	rt   *Runtime
	fn   goja.Callable
	this goja.Value
}

// Load converts project into a JS value and calls the runtime's loader.
// Exceptions thrown by the loader are returned unchanged.
func (l *jsLoader) Load(project interface{}) error {
	l.rt.mu.Lock()
	defer l.rt.mu.Unlock()

	if l.rt.vm == nil {
		return ErrRuntimeClosed
	}

	_, err := l.fn(l.this, l.rt.vm.ToValue(project))
	return err
}
