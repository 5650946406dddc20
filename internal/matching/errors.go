package matching

import "fmt"

// ValidationError reports an opportunity that cannot be sent to the matcher.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid opportunity: %s %s", e.Field, e.Message)
}

// MatchError wraps a failure while matching an opportunity.
type MatchError struct {
	Message string
	Cause   error
}

func (e *MatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *MatchError) Unwrap() error {
	return e.Cause
}
