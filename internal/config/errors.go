package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when no target URL is given by flag, argument, or profile.
	ErrNoTarget = errors.New("no target specified: pass a URL or select a profile with a target")

	// ErrInvalidTarget is returned when the target is not an absolute http(s) URL.
	ErrInvalidTarget = errors.New("invalid target: must be an absolute http or https URL")

	// ErrInvalidPoolSize is returned when the pool size is not positive.
	ErrInvalidPoolSize = errors.New("invalid pool size: must be positive")

	// ErrInvalidInterval is returned when the interval is negative.
	ErrInvalidInterval = errors.New("invalid interval: must be non-negative")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxWaves is returned when the wave limit is negative.
	ErrInvalidMaxWaves = errors.New("invalid max waves: must be non-negative")

	// ErrNoDBDir is returned when history is enabled without a database directory.
	ErrNoDBDir = errors.New("history enabled but no database directory configured")

	// ErrProfileNotFound is returned when a named profile is not in the config file.
	ErrProfileNotFound = errors.New("profile not found")
)

// validateTarget checks that target parses as an absolute http(s) URL.
func validateTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidTarget
	}
	if u.Host == "" {
		return ErrInvalidTarget
	}
	return nil
}
