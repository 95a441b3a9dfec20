package sandbox

import (
	"errors"
	"time"
)

var (
	ErrPoolClosed     = errors.New("sandbox pool is closed")
	ErrAcquireTimeout = errors.New("sandbox acquisition timeout")
	ErrRuntimeClosed  = errors.New("sandbox runtime is closed")
)

// Config defines sandbox configuration
type Config struct {
	Timeout          time.Duration // Evaluation timeout
	AcquireTimeout   time.Duration // Max wait for a pooled runtime
	MaxCallStackSize int           // goja call stack limit
	EnableConsole    bool          // Capture console.log/warn/error/info
}

// DefaultConfig returns the configuration used by the server
func DefaultConfig() Config {
	return Config{
		Timeout:          2 * time.Second,
		AcquireTimeout:   5 * time.Second,
		MaxCallStackSize: 1024,
		EnableConsole:    true,
	}
}

// Result holds the outcome of one evaluation
type Result struct {
	Value    interface{}   `json:"value"`
	Console  []LogEntry    `json:"console"`
	Duration time.Duration `json:"duration"`
}

// LogEntry is a captured console call
type LogEntry struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Page is the static document snippets see as `document`
type Page struct {
	Title    string    `json:"title"`
	URL      string    `json:"url"`
	Elements []Element `json:"elements,omitempty"`
}

// Element is a read-only element exposed through querySelector
type Element struct {
	TagName     string            `json:"tag_name"`
	ID          string            `json:"id,omitempty"`
	ClassName   string            `json:"class_name,omitempty"`
	TextContent string            `json:"text_content,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}
