// Package cmdline implements the command line interpreter: it splits a
// typed line into a command name and arguments, resolves aliases, checks
// arity and mode, and runs the registered command.
//
// # Parsing
//
// The first whitespace-delimited token names the command. If it matches an
// alias, the alias's replacement text is parsed instead, with aliasing
// switched off, so expansion happens at most once and alias cycles are
// impossible. The remaining text is split on whitespace at most
// Command.MaxSplit times, which lets the last argument carry free text:
//
//	open -t  http://example.com     -> [open -t http://example.com]
//	echo hello   world (maxsplit 0) -> [echo "hello   world"]
//
// # Running
//
// Run accepts chains separated by ";;". Every segment is run and the chain
// succeeds only if all of them were dispatched:
//
//	d.Run("set general wrapsearch false ;; search foo")
//
// Errors are reported to the message sink by default; PropagateErrors
// returns them to the caller instead.
package cmdline
