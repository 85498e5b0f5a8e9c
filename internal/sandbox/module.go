package sandbox

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/dop251/goja"
)

// Module is a compiled sandbox script. It is immutable and may be shared by
// any number of runtimes.
type Module struct {
	Name    string
	Hash    string
	program *goja.Program
}

type moduleEntry struct {
	done   chan struct{}
	module *Module
	err    error
}

// moduleCache holds compiled modules keyed by content hash. Failed
// compilations are evicted so a later Prepare can retry.
type moduleCache struct {
	mu      sync.Mutex
	entries map[string]*moduleEntry
}

var modules = &moduleCache{entries: make(map[string]*moduleEntry)}

// Prepare reads and compiles the module served by src.
//
// Compilation happens once per distinct script content per process; every
// later call with the same content returns the same *Module. Failures are
// reported as *InitError.
func Prepare(ctx context.Context, src Source) (*Module, error) {
	module, _, err := prepare(ctx, src)
	return module, err
}

func prepare(ctx context.Context, src Source) (*Module, bool, error) {
	if src == nil {
		return nil, false, &InitError{Source: "<nil>", Err: ErrNilSource}
	}

	data, err := src.Read(ctx)
	if err != nil {
		return nil, false, &InitError{Source: src.Name(), Err: err}
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	return modules.load(ctx, src.Name(), hash, data)
}

func (c *moduleCache) load(ctx context.Context, name, hash string, data []byte) (*Module, bool, error) {
	c.mu.Lock()
	if entry, ok := c.entries[hash]; ok {
		c.mu.Unlock()
		select {
		case <-entry.done:
		case <-ctx.Done():
			return nil, false, &InitError{Source: name, Err: ctx.Err()}
		}
		if entry.err != nil {
			return nil, false, &InitError{Source: name, Err: entry.err}
		}
		return entry.module, true, nil
	}

	entry := &moduleEntry{done: make(chan struct{})}
	c.entries[hash] = entry
	c.mu.Unlock()

	program, err := goja.Compile(name, string(data), false)
	if err != nil {
		entry.err = err
	} else {
		entry.module = &Module{Name: name, Hash: hash, program: program}
	}
	close(entry.done)

	if entry.err != nil {
		c.mu.Lock()
		delete(c.entries, hash)
		c.mu.Unlock()
		return nil, false, &InitError{Source: name, Err: entry.err}
	}

	return entry.module, false, nil
}

// reset drops every cached module
func (c *moduleCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*moduleEntry)
}
