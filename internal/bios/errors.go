package bios

import "fmt"

// APICallError represents a failed call to the completion service
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError reports a completion that did not contain three numbered bios.
// Found is the number of bios that could still be extracted.
type ParseError struct {
	Message string
	Found   int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s (found %d of %d bios)", e.Message, e.Found, BioCount)
}

// ValidationError represents invalid form input
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}
