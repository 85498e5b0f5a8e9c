package bridge

import (
	"context"
	"errors"

	"github.com/GriffinCanCode/terp/internal/sandbox"
)

// DefaultSuspendPrefix is the message prefix of the exit a runtime uses to
// yield back to the host once startup is done.
const DefaultSuspendPrefix = "Using exceptions for control flow"

var (
	// ErrAlreadyInitialized is returned by a second Init on the same Bridge.
	ErrAlreadyInitialized = errors.New("bridge already initialized")
	// ErrNotReady is returned by Load before Init has completed successfully.
	ErrNotReady = errors.New("bridge not ready: runtime has not registered a loader")
	// ErrClosed is returned by Load after Close.
	ErrClosed = errors.New("bridge closed")
	// ErrLoaderNotRegistered is returned by Init when the runtime yielded
	// without ever offering a loader.
	ErrLoaderNotRegistered = errors.New("runtime yielded without registering a loader")
	// ErrLoaderAlreadyRegistered is thrown back into a runtime that
	// registers a second loader.
	ErrLoaderAlreadyRegistered = errors.New("loader already registered")
	// ErrNilLoader is thrown back into a runtime that registers nil.
	ErrNilLoader = errors.New("loader is nil")
)

// Runtime is the handle to an instantiated runtime.
type Runtime interface {
	Run(ctx context.Context) error
	Close() error
}

// Factory prepares the sandbox and constructs runtimes.
type Factory interface {
	// Prepare readies the sandbox. It may block; it must succeed before Create.
	Prepare(ctx context.Context) error
	// Create constructs a runtime for mode without blocking. register must
	// not be called before the runtime's Run.
	Create(mode sandbox.Mode, register sandbox.RegisterFunc) (Runtime, error)
}

// State is a bridge lifecycle state
type State int

const (
	StateUninitialized State = iota
	StateSandboxPreparing
	StateRuntimeStarting
	StateSuspended
	StateFailed
	StateClosed
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSandboxPreparing:
		return "sandbox-preparing"
	case StateRuntimeStarting:
		return "runtime-starting"
	case StateSuspended:
		return "suspended"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
