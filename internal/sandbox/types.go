package sandbox

import (
	"fmt"
	"strings"
	"time"
)

// Config defines sandbox configuration
type Config struct {
	MaxCallStackSize int           // Maximum JS call stack depth (0 = goja default)
	StartupTimeout   time.Duration // Bound on Run (0 = unbounded)
	EnableConsole    bool          // Route console.* to the logger
}

// DefaultConfig returns the configuration used when none is supplied
func DefaultConfig() Config {
	return Config{
		MaxCallStackSize: 1024,
		StartupTimeout:   0,
		EnableConsole:    true,
	}
}

// Mode selects which runtime variant a module constructs
type Mode string

const (
	// ModeDefault is the single-mode variant, constructed via create_terp.
	ModeDefault Mode = "terp"
	ModePlayer  Mode = "player"
	ModeEditor  Mode = "editor"
)

// Modes lists every supported mode
func Modes() []Mode {
	return []Mode{ModeDefault, ModePlayer, ModeEditor}
}

// ParseMode converts a user-supplied string into a Mode.
// An empty string selects ModeDefault.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "terp", "default":
		return ModeDefault, nil
	case "player":
		return ModePlayer, nil
	case "editor":
		return ModeEditor, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Validate reports whether m is a supported mode
func (m Mode) Validate() error {
	switch m {
	case ModeDefault, ModePlayer, ModeEditor:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, string(m))
	}
}

// Export returns the name of the module global that constructs this mode
func (m Mode) Export() string {
	return "create_" + string(m)
}

// String returns the mode name
func (m Mode) String() string {
	return string(m)
}

// Loader pushes project data into a running interpreter
type Loader interface {
	Load(project interface{}) error
}

// LoaderFunc adapts a plain function to the Loader interface
type LoaderFunc func(project interface{}) error

// Load calls f(project)
func (f LoaderFunc) Load(project interface{}) error {
	return f(project)
}

// RegisterFunc receives the loader a runtime offers during startup.
// A non-nil error is thrown back into the runtime.
type RegisterFunc func(Loader) error

// LogEntry represents console output
type LogEntry struct {
	Level   string    // log, info, warn, error, debug
	Message string    // Log message
	Time    time.Time // Timestamp
}
