package app

import (
	"fmt"
	"strings"

	"github.com/dshills/cmdline/internal/command"
)

// registerBuiltins registers the application's own commands.
func (app *Application) registerBuiltins() error {
	builtins := []*command.Command{
		{
			Name:     "echo",
			Desc:     "Show a message.",
			MaxSplit: 0,
			MinArgs:  1,
			MaxArgs:  1,
			Handler: func(inv command.Invocation) error {
				app.messages.Info(inv.Args[0])
				return nil
			},
		},
		{
			Name:     "message-error",
			Desc:     "Show an error message.",
			MaxSplit: 0,
			MinArgs:  1,
			MaxArgs:  1,
			Handler: func(inv command.Invocation) error {
				app.messages.Error(inv.Args[0])
				return nil
			},
		},
		{
			Name:     "message-warning",
			Desc:     "Show a warning message.",
			MaxSplit: 0,
			MinArgs:  1,
			MaxArgs:  1,
			Handler: func(inv command.Invocation) error {
				app.messages.Warning(inv.Args[0])
				return nil
			},
		},
		{
			Name:     "set",
			Desc:     "Set a setting: set <section> <key> <value>.",
			MaxSplit: 2,
			MinArgs:  3,
			MaxArgs:  3,
			Handler: func(inv command.Invocation) error {
				app.store.Set(inv.Args[0], inv.Args[1], inv.Args[2])
				return nil
			},
		},
		{
			Name:     "get",
			Desc:     "Show a setting: get <section> <key>.",
			MaxSplit: command.Unlimited,
			MinArgs:  2,
			MaxArgs:  2,
			Handler: func(inv command.Invocation) error {
				v, err := app.store.Get(inv.Args[0], inv.Args[1])
				if err != nil {
					return err
				}
				app.messages.Info(fmt.Sprintf("%s.%s = %v", inv.Args[0], inv.Args[1], v))
				return nil
			},
		},
		{
			Name:     "alias",
			Desc:     "Define an alias: alias <name> <command>.",
			MaxSplit: 1,
			MinArgs:  2,
			MaxArgs:  2,
			Handler: func(inv command.Invocation) error {
				app.store.SetAlias(inv.Args[0], inv.Args[1])
				return nil
			},
		},
		{
			Name:     "help",
			Desc:     "List commands, or describe one.",
			MaxSplit: command.Unlimited,
			MaxArgs:  1,
			Handler:  app.help,
		},
		{
			Name:     "messages",
			Desc:     "Show recent messages.",
			MaxSplit: command.Unlimited,
			Handler: func(command.Invocation) error {
				for _, msg := range app.Messages() {
					if _, err := fmt.Fprintf(app.out, "%s: %s\n", msg.Level, msg.Text); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Name:     "enter-mode",
			Desc:     "Enter a mode.",
			MaxSplit: command.Unlimited,
			MinArgs:  1,
			MaxArgs:  1,
			Handler: func(inv command.Invocation) error {
				return app.modes.Push(inv.Args[0])
			},
		},
		{
			Name:     "leave-mode",
			Desc:     "Leave the current mode.",
			MaxSplit: command.Unlimited,
			Handler: func(command.Invocation) error {
				return app.modes.Pop()
			},
		},
		{
			Name:     "source",
			Desc:     "Run a Lua script.",
			MaxSplit: 0,
			MinArgs:  1,
			MaxArgs:  1,
			Handler: func(inv command.Invocation) error {
				return app.scripts.LoadFile(inv.Args[0])
			},
		},
		{
			Name:     "reload",
			Desc:     "Reload the configuration files.",
			MaxSplit: command.Unlimited,
			Handler: func(command.Invocation) error {
				return app.store.Reload()
			},
		},
		{
			Name:     "quit",
			Desc:     "Quit.",
			MaxSplit: command.Unlimited,
			Handler: func(command.Invocation) error {
				app.mu.Lock()
				app.quit = true
				app.mu.Unlock()
				return nil
			},
		},
	}

	for _, cmd := range builtins {
		if err := app.registry.Register(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (app *Application) help(inv command.Invocation) error {
	if len(inv.Args) == 1 {
		cmd, ok := app.registry.Lookup(inv.Args[0])
		if !ok {
			return command.NewNoSuchCommand(inv.Args[0])
		}
		app.messages.Info(fmt.Sprintf("%s: %s", cmd.Name, cmd.Desc))
		return nil
	}

	var b strings.Builder
	for i, cmd := range app.registry.Visible() {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%-16s %s", cmd.Name, cmd.Desc)
	}
	_, err := fmt.Fprintln(app.out, b.String())
	return err
}
