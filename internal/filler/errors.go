package filler

import "fmt"

// UpstreamError is any failure of the model-backed filler. Callers fall
// back to the next strategy; the message is never shown to users.
type UpstreamError struct {
	Message string
	Cause   error
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("upstream error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("upstream error: %s", e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// AliasError is a malformed alias table.
type AliasError struct {
	Path    string
	Message string
	Cause   error
}

func (e *AliasError) Error() string {
	location := "embedded aliases"
	if e.Path != "" {
		location = e.Path
	}
	if e.Cause != nil {
		return fmt.Sprintf("alias table %s: %s: %v", location, e.Message, e.Cause)
	}
	return fmt.Sprintf("alias table %s: %s", location, e.Message)
}

func (e *AliasError) Unwrap() error {
	return e.Cause
}
