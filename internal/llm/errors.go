package llm

import (
	"fmt"
	"unicode/utf8"
)

// maxErrorBody bounds how many runes of an upstream body are kept in an error.
const maxErrorBody = 512

// APIError is a failed completion call: transport, status or envelope.
type APIError struct {
	Provider   Provider
	StatusCode int
	Message    string
	Cause      error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s api error: %s", e.Provider, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s api error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// truncateBody shortens an upstream body for logging.
func truncateBody(body []byte) string {
	s := string(body)
	if utf8.RuneCountInString(s) <= maxErrorBody {
		return s
	}
	return string([]rune(s)[:maxErrorBody]) + "...(truncated)"
}
