package message

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cmdline/internal/event"
)

type recordingSink struct {
	lines []string
}

func (r *recordingSink) Error(text string)   { r.lines = append(r.lines, "E:"+text) }
func (r *recordingSink) Warning(text string) { r.lines = append(r.lines, "W:"+text) }
func (r *recordingSink) Info(text string)    { r.lines = append(r.lines, "I:"+text) }

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Info(msg string, args ...any) {
	l.lines = append(l.lines, "info "+fmt.Sprintf(msg, args...))
}
func (l *recordingLogger) Warn(msg string, args ...any) {
	l.lines = append(l.lines, "warn "+fmt.Sprintf(msg, args...))
}
func (l *recordingLogger) Error(msg string, args ...any) {
	l.lines = append(l.lines, "error "+fmt.Sprintf(msg, args...))
}

func TestLevel(t *testing.T) {
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "message.warning", LevelWarning.Topic().String())
	assert.Equal(t, "unknown", Level(42).String())
}

func TestBusSinkPublishes(t *testing.T) {
	bus := event.NewBus()
	var got []Message
	_, err := bus.Subscribe("message.*", func(env event.Envelope) error {
		msg, ok := event.PayloadAs[Message](env)
		require.True(t, ok)
		got = append(got, msg)
		return nil
	})
	require.NoError(t, err)

	sink := NewBusSink(bus)
	sink.Error("open: no such command")
	sink.Info("hello")

	assert.Equal(t, []Message{
		{Level: LevelError, Text: "open: no such command"},
		{Level: LevelInfo, Text: "hello"},
	}, got)
}

func TestLogSink(t *testing.T) {
	log := &recordingLogger{}
	sink := NewLogSink(log)
	sink.Error("100% broken")
	sink.Warning("careful")
	sink.Info("fyi")

	assert.Equal(t, []string{"error 100% broken", "warn careful", "info fyi"}, log.lines)
}

func TestTerminalSinkPlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTerminalSink(&buf)
	sink.Error("bad")
	sink.Info("good")

	assert.Equal(t, "bad\ngood\n", buf.String())
}

func TestMulti(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := Multi{a, b}
	m.Error("x")
	m.Warning("y")
	m.Info("z")

	assert.Equal(t, []string{"E:x", "W:y", "I:z"}, a.lines)
	assert.Equal(t, a.lines, b.lines)

	assert.NotPanics(t, func() { Discard.Error("dropped") })
}
