package bridge

import (
	"context"

	"github.com/GriffinCanCode/terp/internal/sandbox"
)

type sandboxFactory struct {
	factory *sandbox.Factory
}

// Sandboxed adapts a sandbox.Factory to the Factory interface.
func Sandboxed(f *sandbox.Factory) Factory {
	if f == nil {
		panic("bridge: sandbox.Factory must not be nil")
	}
	return sandboxFactory{factory: f}
}

func (s sandboxFactory) Prepare(ctx context.Context) error {
	return s.factory.Prepare(ctx)
}

func (s sandboxFactory) Create(mode sandbox.Mode, register sandbox.RegisterFunc) (Runtime, error) {
	rt, err := s.factory.Create(mode, register)
	if err != nil {
		return nil, err
	}
	return rt, nil
}
