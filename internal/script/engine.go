// Package script lets Lua scripts define and run commands.
package script

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/cmdline/internal/cmdline"
	"github.com/dshills/cmdline/internal/command"
	"github.com/dshills/cmdline/internal/message"
)

// DefaultTimeout bounds a single top-level script execution.
const DefaultTimeout = 5 * time.Second

// ErrEngineClosed is returned when using an engine after Close.
var ErrEngineClosed = errors.New("script: engine closed")

// Registrar is where script commands are registered.
type Registrar interface {
	Register(cmd *command.Command) error
	Unregister(name string) bool
}

// Runner executes command lines for cmd.run.
type Runner interface {
	Run(text string, opts ...cmdline.RunOption) (bool, error)
}

// Engine wraps one Lua state and the commands its scripts registered.
//
// gopher-lua states are not goroutine-safe. An Engine, and every command
// it registered, must be used from a single goroutine.
type Engine struct {
	L *lua.LState

	reg      Registrar
	runner   Runner
	messages message.Sink
	timeout  time.Duration

	handlers *lua.LTable
	commands map[string]bool
	depth    int
	closed   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRunner sets the dispatcher used by cmd.run.
func WithRunner(r Runner) Option {
	return func(e *Engine) {
		e.runner = r
	}
}

// WithMessages sets the sink for cmd.message, cmd.warning and cmd.error.
func WithMessages(s message.Sink) Option {
	return func(e *Engine) {
		if s != nil {
			e.messages = s
		}
	}
}

// WithTimeout bounds each top-level execution. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates an engine registering commands into reg.
func NewEngine(reg Registrar, opts ...Option) *Engine {
	e := &Engine{
		reg:      reg,
		messages: message.Discard,
		timeout:  DefaultTimeout,
		commands: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	e.L = L

	e.handlers = L.NewTable()
	L.SetGlobal("_cmd_handlers", e.handlers)

	mod := L.NewTable()
	L.SetField(mod, "register", L.NewFunction(e.register))
	L.SetField(mod, "unregister", L.NewFunction(e.unregister))
	L.SetField(mod, "run", L.NewFunction(e.run))
	L.SetField(mod, "message", L.NewFunction(e.message(e.messages.Info)))
	L.SetField(mod, "warning", L.NewFunction(e.message(e.messages.Warning)))
	L.SetField(mod, "error", L.NewFunction(e.message(e.messages.Error)))
	L.SetGlobal("cmd", mod)

	return e
}

// openSafeLibraries opens base, table, string and math only.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// base exposes file loading; scripts go through LoadFile instead.
	L.SetGlobal("dofile", lua.LNil)
	L.SetGlobal("loadfile", lua.LNil)
}

// LoadFile executes the Lua file at path.
func (e *Engine) LoadFile(path string) error {
	if e.closed {
		return ErrEngineClosed
	}
	return e.exec(func() error { return e.L.DoFile(path) })
}

// LoadString executes Lua source.
func (e *Engine) LoadString(src string) error {
	if e.closed {
		return ErrEngineClosed
	}
	return e.exec(func() error { return e.L.DoString(src) })
}

// Commands returns the names of commands registered by scripts, sorted.
func (e *Engine) Commands() []string {
	names := make([]string, 0, len(e.commands))
	for name := range e.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close unregisters every script command and releases the Lua state.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	for name := range e.commands {
		e.reg.Unregister(name)
	}
	e.commands = make(map[string]bool)
	e.closed = true
	e.L.Close()
}

// exec runs fn with panic recovery, applying the timeout at the outermost
// level only. Nested calls happen when a Lua handler runs cmd.run.
func (e *Engine) exec(fn func() error) (err error) {
	if e.depth == 0 && e.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		e.L.SetContext(ctx)
		defer func() {
			e.L.RemoveContext()
			cancel()
		}()
	}

	e.depth++
	defer func() {
		e.depth--
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// register(opts)
// opts must include: name, handler
// opts can include: desc, maxsplit, min, max, modes, hide
func (e *Engine) register(L *lua.LState) int {
	opts := L.CheckTable(1)

	name := getTableString(L, opts, "name")
	handler := L.GetField(opts, "handler")
	if name == "" {
		L.ArgError(1, "name is required")
		return 0
	}
	if handler.Type() != lua.LTFunction {
		L.ArgError(1, "handler must be a function")
		return 0
	}

	cmd := &command.Command{
		Name:     name,
		Desc:     getTableString(L, opts, "desc"),
		MaxSplit: getTableInt(L, opts, "maxsplit", command.Unlimited),
		MinArgs:  getTableInt(L, opts, "min", 0),
		MaxArgs:  getTableInt(L, opts, "max", command.Unlimited),
		Modes:    getTableStrings(L, opts, "modes"),
		Hide:     L.GetField(opts, "hide") == lua.LTrue,
		Handler:  e.handler(name),
	}

	if err := e.reg.Register(cmd); err != nil {
		L.RaiseError("register: %v", err)
		return 0
	}

	e.handlers.RawSetString(name, handler)
	e.commands[name] = true
	return 0
}

// unregister(name) -> bool
// Only commands registered by scripts can be removed.
func (e *Engine) unregister(L *lua.LState) int {
	name := L.CheckString(1)
	if !e.commands[name] {
		L.Push(lua.LFalse)
		return 1
	}

	delete(e.commands, name)
	e.handlers.RawSetString(name, lua.LNil)
	L.Push(lua.LBool(e.reg.Unregister(name)))
	return 1
}

// run(text) -> bool
func (e *Engine) run(L *lua.LState) int {
	text := L.CheckString(1)
	if e.runner == nil {
		L.RaiseError("run: no dispatcher available")
		return 0
	}

	ok, _ := e.runner.Run(text)
	L.Push(lua.LBool(ok))
	return 1
}

func (e *Engine) message(emit func(string)) lua.LGFunction {
	return func(L *lua.LState) int {
		emit(L.CheckString(1))
		return 0
	}
}

// handler creates a Go handler calling the Lua function stored for name.
// The Lua function receives (args, count); count is nil when omitted.
func (e *Engine) handler(name string) command.Handler {
	return func(inv command.Invocation) error {
		if e.closed {
			return ErrEngineClosed
		}

		L := e.L
		fn := e.handlers.RawGetString(name)
		if fn.Type() != lua.LTFunction {
			return fmt.Errorf("handler not found for command %s", name)
		}

		args := L.NewTable()
		for i, arg := range inv.Args {
			args.RawSetInt(i+1, lua.LString(arg))
		}
		var count lua.LValue = lua.LNil
		if inv.HasCount {
			count = lua.LNumber(inv.Count)
		}

		return e.exec(func() error {
			L.Push(fn)
			L.Push(args)
			L.Push(count)
			if err := L.PCall(2, 0, nil); err != nil {
				return fmt.Errorf("command %s handler error: %w", name, err)
			}
			return nil
		})
	}
}

func getTableString(L *lua.LState, tbl *lua.LTable, field string) string {
	if str, ok := L.GetField(tbl, field).(lua.LString); ok {
		return string(str)
	}
	return ""
}

func getTableInt(L *lua.LState, tbl *lua.LTable, field string, def int) int {
	if num, ok := L.GetField(tbl, field).(lua.LNumber); ok {
		return int(num)
	}
	return def
}

func getTableStrings(L *lua.LState, tbl *lua.LTable, field string) []string {
	list, ok := L.GetField(tbl, field).(*lua.LTable)
	if !ok {
		return nil
	}
	var out []string
	list.ForEach(func(_, v lua.LValue) {
		if s, ok := v.(lua.LString); ok {
			out = append(out, string(s))
		}
	})
	return out
}
