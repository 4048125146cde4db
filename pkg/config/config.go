package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// GuardConfig holds the tamper-response configuration. It is immutable
// after construction: mutate it only before handing it to guard.New.
type GuardConfig struct {
	// Failed attempts inside the sliding window that trip the lockout.
	MaxAttempts int `yaml:"max_attempts"`
	// Sliding window for failure counting, in seconds.
	WindowSeconds float64 `yaml:"window_seconds"`
	// Expected lowercase SHA-256 hex digest of the authorised firmware
	// image. Empty disables firmware verification.
	ExpectedDigest string `yaml:"expected_digest"`
	// Paths wiped, in listed order, when the guard trips.
	ProtectedPaths []string `yaml:"protected_paths"`

	// OnDestruct, when non-nil, is invoked exactly once per triggered
	// destruct sequence with the list of paths that were wiped. The guard
	// holds a plain reference and does not own the observer's lifetime.
	OnDestruct func(wiped []string) `yaml:"-"`
}

// DefaultConfig returns a configuration with sane defaults: five failed
// attempts inside a five-minute window, firmware verification disabled.
func DefaultConfig() *GuardConfig {
	return &GuardConfig{
		MaxAttempts:   5,
		WindowSeconds: 300,
	}
}

// Window returns the sliding window as a duration.
func (c *GuardConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds * float64(time.Second))
}

// Validate checks the construction constraints: MaxAttempts >= 1,
// WindowSeconds > 0, and ExpectedDigest (when set) a lowercase hex string.
func (c *GuardConfig) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("config: max_attempts must be >= 1, got %d", c.MaxAttempts)
	}
	if c.WindowSeconds <= 0 {
		return fmt.Errorf("config: window_seconds must be > 0, got %g", c.WindowSeconds)
	}
	if c.ExpectedDigest != "" {
		if c.ExpectedDigest != strings.ToLower(c.ExpectedDigest) {
			return fmt.Errorf("config: expected_digest must be lowercase hex, got %q", c.ExpectedDigest)
		}
		if _, err := hex.DecodeString(c.ExpectedDigest); err != nil {
			return fmt.Errorf("config: expected_digest is not valid hex: %w", err)
		}
	}
	return nil
}

// Load reads a YAML guard configuration from path. Fields omitted in the
// file keep their DefaultConfig values. The result is validated.
func Load(path string) (*GuardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
