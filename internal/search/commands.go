package search

import (
	"github.com/dshills/cmdline/internal/command"
)

// Command names registered by RegisterCommands.
const (
	CommandSearch        = "search"
	CommandSearchReverse = "search-rev"
	CommandNextSearch    = "nextsearch"
)

// RegisterCommands exposes the controller on the command line.
func RegisterCommands(reg *command.Registry, c *Controller) error {
	cmds := []*command.Command{
		{
			Name:     CommandSearch,
			Desc:     "Search for a text on the current page.",
			MaxSplit: 0,
			MinArgs:  1,
			MaxArgs:  1,
			Handler: func(inv command.Invocation) error {
				c.Search(inv.Args[0])
				return nil
			},
		},
		{
			Name:     CommandSearchReverse,
			Desc:     "Search for a text on the current page in reverse direction.",
			MaxSplit: 0,
			MinArgs:  1,
			MaxArgs:  1,
			Handler: func(inv command.Invocation) error {
				c.SearchReverse(inv.Args[0])
				return nil
			},
		},
		{
			Name: CommandNextSearch,
			Desc: "Continue the search to the ([count]th) next term.",
			Hide: true,
			Handler: func(inv command.Invocation) error {
				c.RepeatSearch(inv.CountOr(1))
				return nil
			},
		},
	}

	for _, cmd := range cmds {
		if err := reg.Register(cmd); err != nil {
			return err
		}
	}
	return nil
}
