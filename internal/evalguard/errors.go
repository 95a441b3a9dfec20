package evalguard

import (
	"errors"
)

// ErrorName identifies errors produced by this package
const ErrorName = "BrowserEvalSecurityError"

const (
	blockedPrefix   = "Browser evaluation blocked: "
	fallbackMessage = blockedPrefix + "security validation failed"
)

// SecurityError is returned when a snippet is rejected
type SecurityError struct {
	Message string
	Result  Result
}

// Error implements the error interface
func (e *SecurityError) Error() string {
	return e.Message
}

// Name returns ErrorName
func (e *SecurityError) Name() string {
	return ErrorName
}

// ToError converts a verdict into a *SecurityError. It does not inspect
// Safe; callers pass results from the unsafe path.
func ToError(result Result) *SecurityError {
	message := fallbackMessage
	if result.Reason != "" {
		message = blockedPrefix + result.Reason
	}
	return &SecurityError{
		Message: message,
		Result:  result,
	}
}

// IsSecurityError reports whether err wraps a *SecurityError
func IsSecurityError(err error) bool {
	var secErr *SecurityError
	return errors.As(err, &secErr)
}
