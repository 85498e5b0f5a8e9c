package bridge

import (
	"sync"

	"github.com/GriffinCanCode/terp/internal/sandbox"
)

// loaderSlot is a one-shot handoff for the loader a runtime registers.
type loaderSlot struct {
	once   sync.Once
	ready  chan struct{}
	loader sandbox.Loader
}

func newLoaderSlot() *loaderSlot {
	return &loaderSlot{ready: make(chan struct{})}
}

// register is the sandbox.RegisterFunc handed to the runtime. Only the
// first non-nil loader is kept.
func (s *loaderSlot) register(loader sandbox.Loader) error {
	if loader == nil {
		return ErrNilLoader
	}

	accepted := false
	s.once.Do(func() {
		s.loader = loader
		accepted = true
		close(s.ready)
	})
	if !accepted {
		return ErrLoaderAlreadyRegistered
	}
	return nil
}

// get returns the registered loader without blocking
func (s *loaderSlot) get() (sandbox.Loader, bool) {
	select {
	case <-s.ready:
		return s.loader, true
	default:
		return nil, false
	}
}
