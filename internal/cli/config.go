package cli

import (
	"time"

	"github.com/cybertec-postgresql/pgsubst/pkg/types"
)

// Config is an alias for the shared Config type
type Config = types.Config

// ConfigError is an alias for the shared ConfigError type
type ConfigError = types.ConfigError

// DefaultConfig provides default configuration values
var DefaultConfig = Config{
	ConnectionString: "",
	ParamsFile:       "",
	OutputDir:        "",
	Parallelism:      1,
	Timeout:          30 * time.Second,
	Verbose:          false,
}

// NewConfig returns a copy of DefaultConfig
func NewConfig() *Config {
	c := DefaultConfig
	return &c
}

// ApplyFlagsToConfig applies command-line flag values to configuration
func ApplyFlagsToConfig(c *Config, connection, paramsFile, outputDir string,
	parallel int, timeout time.Duration, verbose bool) {

	if connection != "" {
		c.ConnectionString = connection
	}
	if paramsFile != "" {
		c.ParamsFile = paramsFile
	}
	if outputDir != "" {
		c.OutputDir = outputDir
	}
	if parallel != 0 {
		c.Parallelism = parallel
	}
	if timeout != 0 {
		c.Timeout = timeout
	}
	c.Verbose = verbose
}
