package config

import (
	"errors"
	"fmt"
)

// Sentinel errors for configuration lookups.
var (
	// ErrNoSection indicates the requested section does not exist.
	ErrNoSection = errors.New("config: no such section")

	// ErrNoOption indicates the requested key does not exist in its section.
	ErrNoOption = errors.New("config: no such option")
)

// NoSectionError is returned by Get for an unknown section.
type NoSectionError struct {
	Section string
}

func (e *NoSectionError) Error() string {
	return fmt.Sprintf("no section %q", e.Section)
}

func (e *NoSectionError) Unwrap() error {
	return ErrNoSection
}

// NoOptionError is returned by Get for an unknown key in a known section.
type NoOptionError struct {
	Section string
	Key     string
}

func (e *NoOptionError) Error() string {
	return fmt.Sprintf("no option %q in section %q", e.Key, e.Section)
}

func (e *NoOptionError) Unwrap() error {
	return ErrNoOption
}
