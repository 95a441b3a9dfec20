package evalguard

import (
	"strings"
)

// Validator applies the rule catalog and syntax check to snippets.
// It holds no per-call state and is safe for concurrent use.
type Validator struct {
	rules  []Rule
	syntax SyntaxChecker
}

// Option configures a Validator
type Option func(*Validator)

// WithSyntaxChecker replaces the goja-backed syntax checker
func WithSyntaxChecker(checker SyntaxChecker) Option {
	return func(v *Validator) {
		if checker != nil {
			v.syntax = checker
		}
	}
}

// New creates a validator over the default rule catalog
func New(opts ...Option) *Validator {
	v := &Validator{
		rules:  defaultRules,
		syntax: JSSyntaxChecker{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultValidator = New()

// Validate checks a snippet with the package default validator
func Validate(body string, opts Options) Result {
	return defaultValidator.Validate(body, opts)
}

// ValidateOrError checks a snippet with the package default validator and
// returns a *SecurityError when it is unsafe
func ValidateOrError(body string, opts Options) error {
	return defaultValidator.ValidateOrError(body, opts)
}

// Validate returns the verdict for body. It never returns an error for
// unsafe input; failures are reported in the Result.
func (v *Validator) Validate(body string, opts Options) Result {
	if strings.TrimSpace(body) == "" {
		return Result{Safe: true}
	}

	if opts.AllowDangerous {
		return Result{Safe: true}
	}

	if r, ok := firstMatch(body, v.rules); ok {
		return blocked(r)
	}
	if r, ok := firstMatch(body, opts.CustomBlockedPatterns); ok {
		return blocked(r)
	}

	if !opts.SkipSyntaxCheck {
		if err := v.syntax.CheckFunctionBody(body); err != nil {
			return Result{
				Safe:   false,
				Reason: reasonSyntaxPrefix + err.Error(),
			}
		}
	}

	return Result{Safe: true}
}

// ValidateOrError returns ToError(result) for unsafe snippets and nil otherwise
func (v *Validator) ValidateOrError(body string, opts Options) error {
	result := v.Validate(body, opts)
	if !result.Safe {
		return ToError(result)
	}
	return nil
}

// Rules returns the validator's built-in rules in evaluation order
func (v *Validator) Rules() []Rule {
	return append([]Rule(nil), v.rules...)
}

func firstMatch(body string, rules []Rule) (Rule, bool) {
	for _, r := range rules {
		if r.Pattern != nil && r.Pattern.MatchString(body) {
			return r, true
		}
	}
	return Rule{}, false
}

func blocked(r Rule) Result {
	category := r.Category
	if category == "" {
		category = CategoryCustom
	}
	return Result{
		Safe:           false,
		Reason:         reasonPatternPrefix + r.Description,
		BlockedPattern: r.Source(),
		Category:       category,
	}
}
