package config

import "fmt"

// ConfigError is a missing or invalid setting. It is fatal at startup.
type ConfigError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s %s: %v", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("config error: %s %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
