package sandbox

import (
	"context"
	_ "embed"
	"fmt"
	"os"
)

//go:embed runtime/terp.js
var embeddedRuntime []byte

// EmbeddedName is the source name reported for the bundled runtime
const EmbeddedName = "embedded:terp.js"

// Source supplies the script a sandbox module is compiled from
type Source interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
}

type fileSource struct {
	path string
}

// FileSource reads the module script from path
func FileSource(path string) Source {
	return fileSource{path: path}
}

func (s fileSource) Name() string {
	return s.path
}

func (s fileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module: %w", err)
	}
	return data, nil
}

type bytesSource struct {
	name string
	data []byte
}

// BytesSource serves the module script from memory
func BytesSource(name string, data []byte) Source {
	return bytesSource{name: name, data: data}
}

func (s bytesSource) Name() string {
	return s.name
}

func (s bytesSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.data, nil
}

// Embedded returns the bundled reference runtime
func Embedded() Source {
	return BytesSource(EmbeddedName, embeddedRuntime)
}
