package command

import (
	"errors"
	"fmt"
)

// Sentinel errors. The typed errors below unwrap to these so callers can
// use errors.Is without caring about the details.
var (
	// ErrNoSuchCommand indicates the command name is not registered.
	ErrNoSuchCommand = errors.New("command: no such command")

	// ErrArgumentCount indicates a command was given the wrong number of arguments.
	ErrArgumentCount = errors.New("command: invalid argument count")

	// ErrInvalidMode indicates a command is not allowed in the current mode.
	ErrInvalidMode = errors.New("command: invalid mode")

	// ErrAlreadyRegistered indicates a command with the same name exists.
	ErrAlreadyRegistered = errors.New("command: already registered")

	// ErrInvalidCommand indicates a command definition is unusable.
	ErrInvalidCommand = errors.New("command: invalid command")
)

// NoSuchCommandError reports a command name that could not be resolved.
type NoSuchCommandError struct {
	Name string
}

// NewNoSuchCommand creates a NoSuchCommandError.
func NewNoSuchCommand(name string) *NoSuchCommandError {
	return &NoSuchCommandError{Name: name}
}

// Error implements the error interface.
func (e *NoSuchCommandError) Error() string {
	return fmt.Sprintf("%s: no such command", e.Name)
}

// Unwrap returns ErrNoSuchCommand.
func (e *NoSuchCommandError) Unwrap() error {
	return ErrNoSuchCommand
}

// ArgumentCountError reports an arity violation.
type ArgumentCountError struct {
	Command string
	Detail  string
}

// Error implements the error interface.
func (e *ArgumentCountError) Error() string {
	return fmt.Sprintf("%s: invalid argument count - %s", e.Command, e.Detail)
}

// Unwrap returns ErrArgumentCount.
func (e *ArgumentCountError) Unwrap() error {
	return ErrArgumentCount
}

// InvalidModeError reports a command invoked outside its allowed modes.
type InvalidModeError struct {
	Command string
	Detail  string
}

// Error implements the error interface.
func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Detail)
}

// Unwrap returns ErrInvalidMode.
func (e *InvalidModeError) Unwrap() error {
	return ErrInvalidMode
}

// IsDispatchError reports whether err is one of the three expected failure
// kinds of a command line: unknown command, bad arity or wrong mode.
func IsDispatchError(err error) bool {
	return errors.Is(err, ErrNoSuchCommand) ||
		errors.Is(err, ErrArgumentCount) ||
		errors.Is(err, ErrInvalidMode)
}
