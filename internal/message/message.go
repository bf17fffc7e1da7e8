// Package message delivers single-line status messages (errors, warnings,
// info) from the command line to whatever displays them.
package message

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/dshills/cmdline/internal/event"
	"github.com/dshills/cmdline/internal/event/topic"
)

// Level is the severity of a message.
type Level int

const (
	// LevelInfo is for ordinary command output.
	LevelInfo Level = iota
	// LevelWarning is for problems the user should notice but that did not stop a command.
	LevelWarning
	// LevelError is for failed commands.
	LevelError
)

// String returns the level name, which is also the topic suffix.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Topic returns the bus topic messages of this level are published on.
func (l Level) Topic() topic.Topic {
	return topic.Join("message", l.String())
}

// Message is a single status line.
type Message struct {
	Level Level
	Text  string
}

// Sink receives status messages.
type Sink interface {
	Error(text string)
	Warning(text string)
	Info(text string)
}

// BusSink publishes messages as events on message.<level>.
type BusSink struct {
	pub event.Publisher
}

// NewBusSink creates a sink publishing to pub.
func NewBusSink(pub event.Publisher) *BusSink {
	return &BusSink{pub: pub}
}

func (s *BusSink) publish(level Level, text string) {
	// Handler failures belong to the subscribers; a status line has
	// nowhere else to go.
	_ = s.pub.Publish(event.NewEvent(level.Topic(), Message{Level: level, Text: text}, "message"))
}

// Error implements Sink.
func (s *BusSink) Error(text string) { s.publish(LevelError, text) }

// Warning implements Sink.
func (s *BusSink) Warning(text string) { s.publish(LevelWarning, text) }

// Info implements Sink.
func (s *BusSink) Info(text string) { s.publish(LevelInfo, text) }

// Logger is the subset of the application logger a LogSink needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// LogSink writes messages to a logger.
type LogSink struct {
	log Logger
}

// NewLogSink creates a sink writing to log.
func NewLogSink(log Logger) *LogSink {
	return &LogSink{log: log}
}

// Error implements Sink.
func (s *LogSink) Error(text string) { s.log.Error("%s", text) }

// Warning implements Sink.
func (s *LogSink) Warning(text string) { s.log.Warn("%s", text) }

// Info implements Sink.
func (s *LogSink) Info(text string) { s.log.Info("%s", text) }

// TerminalSink prints one line per message, coloured when the output is
// a terminal.
type TerminalSink struct {
	mu  sync.Mutex
	out io.Writer

	errColor  *color.Color
	warnColor *color.Color
	infoColor *color.Color
}

// NewTerminalSink creates a sink writing to out.
// A nil out writes to os.Stdout.
func NewTerminalSink(out io.Writer) *TerminalSink {
	if out == nil {
		out = os.Stdout
	}

	s := &TerminalSink{
		out:       out,
		errColor:  color.New(color.FgRed, color.Bold),
		warnColor: color.New(color.FgYellow),
		infoColor: color.New(color.FgCyan),
	}

	if !isTerminal(out) {
		s.errColor.DisableColor()
		s.warnColor.DisableColor()
		s.infoColor.DisableColor()
	}
	return s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (s *TerminalSink) write(c *color.Color, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.out, c.Sprint(text))
}

// Error implements Sink.
func (s *TerminalSink) Error(text string) { s.write(s.errColor, text) }

// Warning implements Sink.
func (s *TerminalSink) Warning(text string) { s.write(s.warnColor, text) }

// Info implements Sink.
func (s *TerminalSink) Info(text string) { s.write(s.infoColor, text) }

// Multi fans messages out to several sinks, in order.
type Multi []Sink

// Error implements Sink.
func (m Multi) Error(text string) {
	for _, s := range m {
		s.Error(text)
	}
}

// Warning implements Sink.
func (m Multi) Warning(text string) {
	for _, s := range m {
		s.Warning(text)
	}
}

// Info implements Sink.
func (m Multi) Info(text string) {
	for _, s := range m {
		s.Info(text)
	}
}

// Discard drops every message.
var Discard Sink = Multi(nil)
