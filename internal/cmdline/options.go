package cmdline

import "github.com/dshills/cmdline/internal/message"

// DefaultSeparator splits a line into independently run commands.
const DefaultSeparator = ";;"

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithAliases sets the alias table consulted for the first token.
func WithAliases(a AliasSource) Option {
	return func(d *Dispatcher) {
		d.aliases = a
	}
}

// WithModes sets the mode source used for InvalidMode checks.
func WithModes(m ModeSource) Option {
	return func(d *Dispatcher) {
		d.modes = m
	}
}

// WithMessages sets the sink errors are reported to when they are ignored.
func WithMessages(s message.Sink) Option {
	return func(d *Dispatcher) {
		if s != nil {
			d.messages = s
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(l Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// WithSeparator overrides the command chaining delimiter.
func WithSeparator(sep string) Option {
	return func(d *Dispatcher) {
		if sep != "" {
			d.separator = sep
		}
	}
}

// RunOption configures a single Run call.
type RunOption func(*runConfig)

type runConfig struct {
	count     int
	hasCount  bool
	propagate bool
}

// WithCount passes a count to the command. Without it the count is
// omitted entirely.
func WithCount(n int) RunOption {
	return func(c *runConfig) {
		c.count = n
		c.hasCount = true
	}
}

// PropagateErrors makes Run return dispatch errors instead of reporting
// them to the message sink.
func PropagateErrors() RunOption {
	return func(c *runConfig) {
		c.propagate = true
	}
}
