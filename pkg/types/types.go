package types

import (
	"fmt"
	"time"
)

// Config holds runtime configuration combining flags, environment variables, and defaults
type Config struct {
	// PostgreSQL connection, used by exec only. Empty means libpq PG* defaults.
	ConnectionString string

	// Rendering
	ParamsFile  string        // JSON or YAML bindings file
	OutputDir   string        // Where rendered files go; empty writes to stdout
	Parallelism int           // Max concurrent renders (1 = sequential)
	Timeout     time.Duration // Statement timeout for exec

	Verbose bool // Enable debug logging
}

// ConfigError reports an invalid configuration value
type ConfigError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Message)
}

// Validate checks the configuration for values no command can work with
func (c *Config) Validate() error {
	if c.Parallelism < 1 {
		return &ConfigError{Field: "parallel", Value: c.Parallelism, Message: "must be at least 1"}
	}
	if c.Timeout < 0 {
		return &ConfigError{Field: "timeout", Value: c.Timeout, Message: "must not be negative"}
	}
	return nil
}
