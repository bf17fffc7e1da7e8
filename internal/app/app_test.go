package app

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cmdline/internal/message"
	"github.com/dshills/cmdline/internal/mode"
)

func newTestApp(t *testing.T, opts Options) (*Application, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	opts.Output = &out
	if opts.LogOutput == nil {
		opts.LogOutput = io.Discard
	}
	if opts.Environ == nil {
		opts.Environ = []string{}
	}
	app, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(app.Shutdown)
	return app, &out
}

func TestRunEcho(t *testing.T) {
	app, out := newTestApp(t, Options{})

	ok, err := app.Run("echo hello   world")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello   world\n", out.String())
}

func TestRunUnknownCommand(t *testing.T) {
	app, out := newTestApp(t, Options{})

	ok, err := app.Run("nope x")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "nope: no such command\n", out.String())
}

func TestRunChain(t *testing.T) {
	app, out := newTestApp(t, Options{})

	ok, err := app.Run("echo a ;; nope ;; echo b")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "a\nnope: no such command\nb\n", out.String())
}

func TestQuitViaAlias(t *testing.T) {
	app, _ := newTestApp(t, Options{})

	ok, err := app.Run("q")
	assert.True(t, ok)
	assert.ErrorIs(t, err, ErrQuit)
}

func TestSearchUsesSettings(t *testing.T) {
	app, out := newTestApp(t, Options{})

	_, err := app.Run("search Foo Bar")
	require.NoError(t, err)
	assert.Equal(t, "/Foo Bar [wrap]\n", out.String())

	out.Reset()
	_, err = app.Run("set general ignorecase false ;; set general wrapsearch false ;; search-rev x")
	require.NoError(t, err)
	assert.Equal(t, "/x [case|backward]\n", out.String())

	out.Reset()
	_, err = app.Run("nextsearch")
	require.NoError(t, err)
	assert.Equal(t, "/x [case|backward]\n", out.String())
}

func TestGetSetting(t *testing.T) {
	app, out := newTestApp(t, Options{})

	_, err := app.Run("get general wrapsearch")
	require.NoError(t, err)
	assert.Equal(t, "general.wrapsearch = true\n", out.String())

	out.Reset()
	_, err = app.Run("get nosection x")
	require.NoError(t, err)
	assert.Contains(t, out.String(), `no section "nosection"`)
}

func TestAliasCommand(t *testing.T) {
	app, out := newTestApp(t, Options{})

	_, err := app.Run("alias hi echo hi there")
	require.NoError(t, err)

	ok, err := app.Run("hi ignored words")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hi there\n", out.String())
}

func TestModes(t *testing.T) {
	app, out := newTestApp(t, Options{})
	require.NoError(t, app.Scripts().LoadString(`
cmd.register{name = "follow", modes = {"hint"}, handler = function() cmd.message("followed") end}
`))

	ok, _ := app.Run("follow")
	assert.False(t, ok)
	assert.Contains(t, out.String(), "follow: this command is only allowed in hint mode")

	out.Reset()
	_, err := app.Run("enter-mode hint ;; follow ;; leave-mode")
	require.NoError(t, err)
	assert.Equal(t, "followed\n", out.String())
	assert.Equal(t, mode.Normal, app.Modes().Current())

	out.Reset()
	_, err = app.Run("leave-mode")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "leave-mode: mode: no mode to leave")
}

func TestMessagesHistory(t *testing.T) {
	app, out := newTestApp(t, Options{})

	_, err := app.Run("echo one ;; message-warning two ;; message-error three")
	require.NoError(t, err)

	assert.Equal(t, []message.Message{
		{Level: message.LevelInfo, Text: "one"},
		{Level: message.LevelWarning, Text: "two"},
		{Level: message.LevelError, Text: "three"},
	}, app.Messages())

	out.Reset()
	_, err = app.Run("messages")
	require.NoError(t, err)
	assert.Equal(t, "info: one\nwarning: two\nerror: three\n", out.String())
}

func TestHelp(t *testing.T) {
	app, out := newTestApp(t, Options{})

	_, err := app.Run("help")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "echo")
	assert.Contains(t, out.String(), "search-rev")
	assert.NotContains(t, out.String(), "nextsearch")

	out.Reset()
	_, err = app.Run("help set")
	require.NoError(t, err)
	assert.Equal(t, "set: Set a setting: set <section> <key> <value>.\n", out.String())
}

func TestComplete(t *testing.T) {
	app, _ := newTestApp(t, Options{})

	assert.Equal(t, []string{"search", "search-rev", "set", "source"}, app.Complete("s"))
	assert.Equal(t, []string{"q", "quit"}, app.Complete("q"))
	assert.Nil(t, app.Complete("echo "))

	app.Config().SetAlias("ss", "search foo")
	assert.Equal(t, []string{"ss"}, app.Complete("ss"))
}

func TestConfigAndScripts(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[general]\nwrapsearch = false\nlog-level = \"debug\"\n\n[aliases]\nfs = \"search foo\"\n"), 0o644))
	scriptPath := filepath.Join(dir, "init.lua")
	require.NoError(t, os.WriteFile(scriptPath, []byte(`
cmd.register{name = "twice", min = 1, max = 1, maxsplit = 0, handler = function(args)
  cmd.run("echo " .. args[1] .. " ;; echo " .. args[1])
end}
`), 0o644))

	var logs bytes.Buffer
	app, out := newTestApp(t, Options{
		ConfigPaths: []string{cfgPath},
		ScriptPaths: []string{scriptPath},
		LogOutput:   &logs,
	})

	assert.Equal(t, LogLevelDebug, app.Logger().Level())

	_, err := app.Run("fs")
	require.NoError(t, err)
	assert.Equal(t, "/foo [none]\n", out.String())

	out.Reset()
	_, err = app.Run("twice hey")
	require.NoError(t, err)
	assert.Equal(t, "hey\nhey\n", out.String())
	assert.Contains(t, logs.String(), "[DEBUG] cmdline: run twice")
}

func TestLogLevelOverride(t *testing.T) {
	app, _ := newTestApp(t, Options{LogLevel: "error"})
	assert.Equal(t, LogLevelError, app.Logger().Level())

	app.Config().Set("general", "log-level", "debug")
	assert.Equal(t, LogLevelError, app.Logger().Level())

	plain, _ := newTestApp(t, Options{})
	assert.Equal(t, LogLevelInfo, plain.Logger().Level())
	plain.Config().Set("general", "log-level", "warn")
	assert.Equal(t, LogLevelWarn, plain.Logger().Level())
}

func TestNewErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[general\n"), 0o644))

	_, err := New(Options{ConfigPaths: []string{bad}, Output: io.Discard, LogOutput: io.Discard, Environ: []string{}})
	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "config", initErr.Component)

	script := filepath.Join(dir, "bad.lua")
	require.NoError(t, os.WriteFile(script, []byte("this is not lua"), 0o644))
	_, err = New(Options{ScriptPaths: []string{script}, Output: io.Discard, LogOutput: io.Discard, Environ: []string{}})
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "scripts", initErr.Component)
}

func TestShutdown(t *testing.T) {
	app, err := New(Options{Output: io.Discard, LogOutput: io.Discard, Environ: []string{}, Watch: true})
	require.NoError(t, err)

	app.Shutdown()
	app.Shutdown()

	_, err = app.Run("echo x")
	assert.ErrorIs(t, err, ErrShutdown)
}
