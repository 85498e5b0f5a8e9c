package sandbox

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

var (
	ErrNilSource     = errors.New("sandbox source is nil")
	ErrNotPrepared   = errors.New("sandbox module not prepared")
	ErrUnknownMode   = errors.New("unknown runtime mode")
	ErrMissingExport = errors.New("module does not export constructor")
	ErrNoEntryPoint  = errors.New("runtime instance has no run entry point")
	ErrNilRegister   = errors.New("register callback is nil")
	ErrRuntimeClosed = errors.New("runtime closed")
)

// InitError reports that a sandbox module could not be prepared.
type InitError struct {
	Source string
	Err    error
}

func (e *InitError) Error() string {
	if e == nil {
		return "sandbox init failed"
	}
	return fmt.Sprintf("sandbox init failed for %s: %v", e.Source, e.Err)
}

func (e *InitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InstantiationError reports that a runtime instance could not be constructed.
type InstantiationError struct {
	Mode Mode
	Err  error
}

func (e *InstantiationError) Error() string {
	if e == nil {
		return "runtime instantiation failed"
	}
	return fmt.Sprintf("runtime instantiation failed for mode %s: %v", e.Mode, e.Err)
}

func (e *InstantiationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExitMessage returns the message carried by an error a runtime exited with.
//
// For a thrown JS Error object this is its message property, for any other
// thrown value its string form, and for plain Go errors err.Error().
func ExitMessage(err error) string {
	if err == nil {
		return ""
	}

	var exc *goja.Exception
	if errors.As(err, &exc) {
		if msg, ok := ErrorMessage(err); ok {
			return msg
		}
		if val := exc.Value(); val != nil {
			return val.String()
		}
		return ""
	}

	return err.Error()
}

// ErrorMessage returns the string message property of the value a runtime
// threw. ok is false when the thrown value carries no such property, as for
// a bare thrown string or number. Plain Go errors report err.Error().
func ErrorMessage(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var exc *goja.Exception
	if !errors.As(err, &exc) {
		return err.Error(), true
	}

	obj, ok := exc.Value().(*goja.Object)
	if !ok {
		return "", false
	}
	msg := obj.Get("message")
	if msg == nil {
		return "", false
	}
	s, ok := msg.Export().(string)
	return s, ok
}
