package config

import "fmt"

// ConfigurationError reports contradictory or malformed settings
// (spec.md §7).
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return fmt.Sprintf("configuration: %s", e.Msg) }
func (e *ConfigurationError) Kind() string  { return "configuration" }
