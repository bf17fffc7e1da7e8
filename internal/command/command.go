// Package command defines the command entity and the registry the command
// line dispatcher resolves names against.
package command

import (
	"fmt"
	"slices"
	"strings"
)

// Unlimited is used for MaxSplit and MaxArgs to remove the upper bound.
const Unlimited = -1

// Invocation carries the arguments of a single command call.
type Invocation struct {
	// Args are the parsed argument tokens.
	Args []string

	// Count is the numeric prefix. Only meaningful when HasCount is true.
	Count int

	// HasCount is false when the caller omitted the count entirely.
	HasCount bool
}

// CountOr returns the count, or def when no count was given.
func (inv Invocation) CountOr(def int) int {
	if !inv.HasCount {
		return def
	}
	return inv.Count
}

// Handler executes a command.
type Handler func(inv Invocation) error

// Command is a named, registered operation.
type Command struct {
	// Name is the identifier typed on the command line.
	Name string

	// Desc is a one-line description shown by help.
	Desc string

	// MaxSplit is the maximum number of whitespace splits applied to the
	// argument text, so at most MaxSplit+1 tokens are produced and the last
	// one keeps its embedded whitespace. Unlimited splits on every run.
	MaxSplit int

	// MinArgs and MaxArgs bound the argument count. MaxArgs may be Unlimited.
	MinArgs int
	MaxArgs int

	// Modes restricts the modes the command may run in. Empty means any.
	Modes []string

	// Hide excludes the command from help and completion.
	Hide bool

	// Handler is called by Run.
	Handler Handler
}

// Validate reports whether the command definition is usable.
func (c *Command) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil command", ErrInvalidCommand)
	}
	if c.Name == "" || strings.ContainsAny(c.Name, " \t\n") {
		return fmt.Errorf("%w: bad name %q", ErrInvalidCommand, c.Name)
	}
	if c.Handler == nil {
		return fmt.Errorf("%w: %s has no handler", ErrInvalidCommand, c.Name)
	}
	if c.MaxArgs != Unlimited && c.MaxArgs < c.MinArgs {
		return fmt.Errorf("%w: %s has max args below min args", ErrInvalidCommand, c.Name)
	}
	if c.MaxSplit < Unlimited {
		return fmt.Errorf("%w: %s has negative maxsplit", ErrInvalidCommand, c.Name)
	}
	return nil
}

// Check validates args against the command's arity and mode must be one of
// its allowed modes. An empty mode skips the mode check.
func (c *Command) Check(args []string, mode string) error {
	if mode != "" && len(c.Modes) > 0 && !slices.Contains(c.Modes, mode) {
		return &InvalidModeError{
			Command: c.Name,
			Detail:  fmt.Sprintf("this command is only allowed in %s mode", strings.Join(c.Modes, "/")),
		}
	}

	n := len(args)
	if n >= c.MinArgs && (c.MaxArgs == Unlimited || n <= c.MaxArgs) {
		return nil
	}
	return &ArgumentCountError{Command: c.Name, Detail: c.arityDetail(n)}
}

func (c *Command) arityDetail(got int) string {
	switch {
	case c.MaxArgs == c.MinArgs:
		return fmt.Sprintf("expected exactly %s, got %d", plural(c.MinArgs), got)
	case c.MaxArgs == Unlimited:
		return fmt.Sprintf("expected at least %s, got %d", plural(c.MinArgs), got)
	default:
		return fmt.Sprintf("expected %d to %d arguments, got %d", c.MinArgs, c.MaxArgs, got)
	}
}

func plural(n int) string {
	if n == 1 {
		return "1 argument"
	}
	return fmt.Sprintf("%d arguments", n)
}

// Run invokes the handler without a count.
func (c *Command) Run(args []string) error {
	return c.Handler(Invocation{Args: args})
}

// RunWithCount invokes the handler with a count.
func (c *Command) RunWithCount(args []string, count int) error {
	return c.Handler(Invocation{Args: args, Count: count, HasCount: true})
}
