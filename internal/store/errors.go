package store

import "fmt"

// StorageError is a failure reading or writing the backing storage.
type StorageError struct {
	Op      string
	Path    string
	Message string
	Cause   error
}

func (e *StorageError) Error() string {
	location := e.Op
	if e.Path != "" {
		location = fmt.Sprintf("%s %s", e.Op, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("storage error (%s): %s: %v", location, e.Message, e.Cause)
	}
	return fmt.Sprintf("storage error (%s): %s", location, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// ValidationError rejects a Put before anything is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}
