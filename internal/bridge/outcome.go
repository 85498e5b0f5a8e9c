package bridge

import (
	"strings"

	"github.com/GriffinCanCode/terp/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/terp/internal/sandbox"
)

// OutcomeKind tags how a runtime's entry point returned control
type OutcomeKind int

const (
	// Suspended: the runtime yielded with the suspend signal.
	Suspended OutcomeKind = iota
	// Completed: the entry point returned normally.
	Completed
	// Failed: the entry point exited with anything else.
	Failed
)

// String returns the metrics label for the kind
func (k OutcomeKind) String() string {
	switch k {
	case Suspended:
		return monitoring.OutcomeSuspended
	case Completed:
		return monitoring.OutcomeCompleted
	default:
		return monitoring.OutcomeFailed
	}
}

// Outcome is the result of running a runtime's entry point.
// Loader is set only when Kind is Suspended or Completed and the runtime
// registered one; Err is set only when Kind is Failed.
type Outcome struct {
	Kind   OutcomeKind
	Loader sandbox.Loader
	Err    error
}

// IsSuspendSignal reports whether err is the exit a runtime uses to yield,
// i.e. whether its message starts with prefix. The match is exact and
// case-sensitive. A thrown value without a string message property, such
// as a bare string, is never the suspend signal.
func IsSuspendSignal(err error, prefix string) bool {
	msg, ok := sandbox.ErrorMessage(err)
	return ok && strings.HasPrefix(msg, prefix)
}

// classify maps the exit of Run to an Outcome. Errors other than the
// suspend signal are carried through untouched.
func classify(runErr error, prefix string, slot *loaderSlot) Outcome {
	if runErr != nil && !IsSuspendSignal(runErr, prefix) {
		return Outcome{Kind: Failed, Err: runErr}
	}

	loader, ok := slot.get()
	if !ok {
		return Outcome{Kind: Failed, Err: ErrLoaderNotRegistered}
	}

	if runErr == nil {
		return Outcome{Kind: Completed, Loader: loader}
	}
	return Outcome{Kind: Suspended, Loader: loader}
}
