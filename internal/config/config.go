// Package config holds the explicit run configuration. The values are
// settable only through CLI flags; the run contract allows reading nothing
// from disk except the target itself, so there is no config file loader.
// Passing the struct into each component keeps them independently testable
// instead of sharing ambient globals.
package config

import (
	"fmt"
	"time"
)

// DefaultLogPath is the fixed relative location of the fact log.
const DefaultLogPath = "./envcheck.log"

// Config carries the knobs for one run.
type Config struct {
	// LogPath is where the fact log is overwritten each run.
	LogPath string

	// Timeout bounds the single launch attempt.
	Timeout time.Duration

	// VersionProbeTimeout bounds the interpreter version subprocess.
	VersionProbeTimeout time.Duration

	// MaxLogLines caps the fact log.
	MaxLogLines int
}

// Default returns the standard configuration: 3s attempt timeout, 2s version
// probe, 10 fact lines, log at ./envcheck.log.
func Default() *Config {
	return &Config{
		LogPath:             DefaultLogPath,
		Timeout:             3 * time.Second,
		VersionProbeTimeout: 2 * time.Second,
		MaxLogLines:         10,
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if c.LogPath == "" {
		return fmt.Errorf("configuration error: log path is empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("configuration error: timeout must be positive, got %s", c.Timeout)
	}
	if c.VersionProbeTimeout <= 0 {
		return fmt.Errorf("configuration error: version probe timeout must be positive, got %s", c.VersionProbeTimeout)
	}
	if c.MaxLogLines <= 0 {
		return fmt.Errorf("configuration error: max log lines must be positive, got %d", c.MaxLogLines)
	}
	return nil
}
