// Package id provides ULID-based identifiers for bridges and runtimes.
//
// IDs are prefixed by kind (brg_*, rt_*) so log lines from several bridges
// living in one process stay readable, and the ULID part sorts by creation
// time.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// BridgeID identifies a bridge instance
type BridgeID string

// RuntimeID identifies a sandboxed runtime instance
type RuntimeID string

const (
	BridgePrefix  = "brg"
	RuntimePrefix = "rt"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewBridgeID generates a new bridge ID
func NewBridgeID() BridgeID {
	return BridgeID(Default().GenerateWithPrefix(BridgePrefix))
}

// NewRuntimeID generates a new runtime ID
func NewRuntimeID() RuntimeID {
	return RuntimeID(Default().GenerateWithPrefix(RuntimePrefix))
}

func (id BridgeID) String() string  { return string(id) }
func (id RuntimeID) String() string { return string(id) }
