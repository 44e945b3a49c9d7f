package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Session.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("session: %w", err))
	}
	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}
	if err := c.Player.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("player: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks SessionConfig for errors.
func (c *SessionConfig) Validate() error {
	if c.ClientID == "" {
		return errors.New("client_id must not be empty")
	}
	if lo.SomeBy(c.Scopes, func(s string) bool { return strings.TrimSpace(s) == "" }) {
		return errors.New("scopes must not contain empty entries")
	}
	return nil
}

// Validate checks CacheConfig for errors.
func (c *CacheConfig) Validate() error {
	switch c.Backend {
	case "", "file", "keyring", "none":
		// valid
	default:
		return fmt.Errorf("invalid backend: %s (must be file, keyring, or none)", c.Backend)
	}
	return nil
}

// Validate checks PlayerConfig for errors.
func (c *PlayerConfig) Validate() error {
	if v := c.Volume(); v < 0 || v > 100 {
		return errors.New("initial_volume must be between 0 and 100")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "trace", "debug", "info", "warn", "error", "disabled":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be trace, debug, info, warn, error, or disabled)", c.Level)
	}
	return nil
}

// ScopeString returns the deduplicated scopes joined the way token requests expect.
func (c *SessionConfig) ScopeString() string {
	return strings.Join(lo.Uniq(c.Scopes), ",")
}
