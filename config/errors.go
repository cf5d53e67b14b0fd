package config

import "errors"

var (
	// ErrPathRequired is returned when a data directory is not configured.
	ErrPathRequired = errors.New("raw, processed and index paths are required")

	// ErrInvalidValue is returned for out-of-range settings.
	ErrInvalidValue = errors.New("invalid configuration value")
)
