package cmdline

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/dshills/cmdline/internal/command"
	"github.com/dshills/cmdline/internal/message"
)

// Registry resolves command names.
type Registry interface {
	Lookup(name string) (*command.Command, bool)
}

// AliasSource resolves an alias name to replacement command-line text.
// A missing alias is reported with ok=false and is not an error.
type AliasSource interface {
	Alias(name string) (string, bool)
}

// ModeSource reports the current key mode.
type ModeSource interface {
	Current() string
}

// Logger is the subset of the application logger the dispatcher uses.
type Logger interface {
	Debug(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Parsed is the result of splitting a command line.
type Parsed struct {
	// Command is the resolved command name.
	Command string

	// Args are the argument tokens.
	Args []string
}

// Parts returns the command name followed by the arguments.
func (p Parsed) Parts() []string {
	parts := make([]string, 0, len(p.Args)+1)
	parts = append(parts, p.Command)
	return append(parts, p.Args...)
}

// Dispatcher parses command lines and runs the commands they name.
//
// A Dispatcher is not safe for concurrent use; it is driven from the event
// loop one line at a time.
type Dispatcher struct {
	reg       Registry
	aliases   AliasSource
	modes     ModeSource
	messages  message.Sink
	log       Logger
	separator string

	// cmd and args hold the result of the last successful parse only.
	cmd  *command.Command
	args []string
}

// New creates a dispatcher resolving commands in reg.
func New(reg Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		reg:       reg,
		messages:  message.Discard,
		log:       nopLogger{},
		separator: DefaultSeparator,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fork returns a dispatcher sharing d's collaborators but none of its
// parse state.
func (d *Dispatcher) Fork() *Dispatcher {
	return &Dispatcher{
		reg:       d.reg,
		aliases:   d.aliases,
		modes:     d.modes,
		messages:  d.messages,
		log:       d.log,
		separator: d.separator,
	}
}

// Parse splits text into a command name and arguments, resolving at most
// one alias. It fails with *command.NoSuchCommandError when text is blank
// or the command is not registered.
func (d *Dispatcher) Parse(text string) (Parsed, error) {
	p, _, err := d.parse(text, true)
	return p, err
}

// ParseNoAlias is Parse with alias resolution disabled.
func (d *Dispatcher) ParseNoAlias(text string) (Parsed, error) {
	p, _, err := d.parse(text, false)
	return p, err
}

// Last returns the result of the most recent successful parse.
func (d *Dispatcher) Last() (Parsed, bool) {
	if d.cmd == nil {
		return Parsed{}, false
	}
	return Parsed{Command: d.cmd.Name, Args: slices.Clone(d.args)}, true
}

func (d *Dispatcher) parse(text string, allowAliases bool) (Parsed, *command.Command, error) {
	head, rest := splitHead(strings.TrimSpace(text))
	if head == "" {
		return Parsed{}, nil, command.NewNoSuchCommand("No command given")
	}

	if allowAliases && d.aliases != nil {
		if replacement, ok := d.aliases.Alias(head); ok {
			d.log.Debug("alias %s -> %q", head, replacement)
			// The replacement is parsed with aliasing off, so an alias can
			// never expand into another alias.
			return d.parse(replacement, false)
		}
	}

	cmd, ok := d.reg.Lookup(head)
	if !ok {
		return Parsed{}, nil, command.NewNoSuchCommand(head)
	}

	args := splitArgs(rest, cmd.MaxSplit)
	d.cmd = cmd
	d.args = args
	return Parsed{Command: head, Args: args}, cmd, nil
}

// Run parses and runs text. Segments separated by ";;" are run one after
// another and the result is true only if every segment was dispatched.
//
// By default dispatch errors (unknown command, bad arity, wrong mode) are
// reported to the message sink and Run returns false with a nil error.
// With PropagateErrors the error is returned instead and the remaining
// segments of a chain are not run.
//
// The result reports whether the command was dispatched, not what it did.
// An error returned by the command's handler is reported (or, with
// PropagateErrors, returned as *ExecError) but the result is still true.
func (d *Dispatcher) Run(text string, opts ...RunOption) (bool, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if strings.Contains(text, d.separator) {
		all := true
		for _, segment := range strings.Split(text, d.separator) {
			ok, err := d.runOne(segment, cfg)
			all = all && ok
			if err != nil {
				return all, err
			}
		}
		return all, nil
	}
	return d.runOne(text, cfg)
}

func (d *Dispatcher) runOne(text string, cfg runConfig) (bool, error) {
	parsed, cmd, err := d.parse(text, true)
	if err == nil {
		err = cmd.Check(parsed.Args, d.currentMode())
	}
	if err != nil {
		if cfg.propagate {
			return false, err
		}
		d.log.Debug("dispatch failed for %q: %v", text, err)
		d.messages.Error(err.Error())
		return false, nil
	}

	d.log.Debug("run %s %q count=%v", cmd.Name, parsed.Args, cfg.hasCount)
	var runErr error
	if cfg.hasCount {
		runErr = cmd.RunWithCount(parsed.Args, cfg.count)
	} else {
		runErr = cmd.Run(parsed.Args)
	}
	if runErr != nil {
		execErr := &ExecError{Command: cmd.Name, Err: runErr}
		if cfg.propagate {
			return true, execErr
		}
		d.messages.Error(execErr.Error())
	}
	return true, nil
}

func (d *Dispatcher) currentMode() string {
	if d.modes == nil {
		return ""
	}
	return d.modes.Current()
}

// ExecError wraps an error returned by a command handler.
type ExecError struct {
	Command string
	Err     error
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

// Unwrap returns the handler's error.
func (e *ExecError) Unwrap() error {
	return e.Err
}

// splitHead splits s at its first whitespace run.
func splitHead(s string) (head, rest string) {
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimLeftFunc(s[idx:], unicode.IsSpace)
}

// splitArgs splits s on whitespace at most maxsplit times; a negative
// maxsplit splits on every run. The final token keeps any embedded
// whitespace.
func splitArgs(s string, maxsplit int) []string {
	args := []string{}
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	for s != "" {
		if maxsplit == 0 {
			args = append(args, s)
			break
		}
		idx := strings.IndexFunc(s, unicode.IsSpace)
		if idx < 0 {
			args = append(args, s)
			break
		}
		args = append(args, s[:idx])
		s = strings.TrimLeftFunc(s[idx:], unicode.IsSpace)
		if maxsplit > 0 {
			maxsplit--
		}
	}
	return args
}
