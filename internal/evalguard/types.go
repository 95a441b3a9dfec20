package evalguard

// Options customizes a single validation. The zero value is the default.
type Options struct {
	// AllowDangerous skips every check. Use only with trusted input.
	AllowDangerous bool

	// CustomBlockedPatterns run after the default catalog
	CustomBlockedPatterns []Rule

	// SkipSyntaxCheck disables the function-body parse
	SkipSyntaxCheck bool
}

// Result is the verdict for one snippet
type Result struct {
	Safe           bool     `json:"safe"`
	Reason         string   `json:"reason,omitempty"`
	BlockedPattern string   `json:"blocked_pattern,omitempty"`
	Category       Category `json:"category,omitempty"`
}

// SyntaxChecker reports whether a string is a valid function body.
// Implementations must not execute the body.
type SyntaxChecker interface {
	CheckFunctionBody(body string) error
}

const (
	reasonPatternPrefix = "Dangerous pattern detected: "
	reasonSyntaxPrefix  = "Invalid function syntax: "
)
