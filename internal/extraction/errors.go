package extraction

import "fmt"

// GatewayError represents a failed completion service call. It is propagated
// to the caller and never retried.
type GatewayError struct {
	Message string
	Cause   error
}

func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("completion gateway failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("completion gateway failed: %s", e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// ParseError represents a model reply that could not be parsed as the
// expected structured object after fence stripping. Raw carries the reply
// text for diagnostics. Callers recover by continuing with the sentinel
// FieldSet rather than aborting the session.
type ParseError struct {
	Message string
	Raw     string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
