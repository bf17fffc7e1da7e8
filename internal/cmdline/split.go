package cmdline

import (
	"sort"
	"strings"
)

// Parser is anything that can split a command line.
type Parser interface {
	Parse(text string) (Parsed, error)
}

// SplitCmdline splits text into its logical parts for an interactive input
// box. Lines naming a registered command (or alias) are split the way the
// command would receive them; anything else falls back to a plain
// whitespace split. A trailing space yields a trailing empty element so
// the cursor position after the space is preserved.
//
// Parse may record state on the parser; pass a Fork of a live dispatcher.
func SplitCmdline(p Parser, text string) []string {
	var parts []string
	if parsed, err := p.Parse(text); err == nil {
		parts = parsed.Parts()
	} else {
		parts = strings.Fields(text)
	}
	if strings.HasSuffix(text, " ") {
		parts = append(parts, "")
	}
	return parts
}

// Complete returns the command names in names that complete the first
// token of line. The token is taken as typed, so alias names complete to
// themselves rather than to their replacement. Once the first token is
// finished there is nothing to complete.
func Complete(names []string, line string) []string {
	parts := strings.Fields(line)
	if strings.HasSuffix(line, " ") {
		parts = append(parts, "")
	}
	if len(parts) > 1 {
		return nil
	}

	prefix := ""
	if len(parts) == 1 {
		prefix = parts[0]
	}

	var out []string
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
