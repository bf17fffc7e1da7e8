// Package app wires the command line together: configuration, logging,
// the event bus, modes, the dispatcher, search and Lua scripts.
package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrQuit signals that the application should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrShutdown indicates the application has already been shut down.
	ErrShutdown = errors.New("application shut down")
)

// InitError reports a failure while building the application.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
