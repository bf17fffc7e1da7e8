package search

import "strings"

// Flags is the option bitset attached to a search request.
type Flags uint8

const (
	// FlagCaseSensitive matches case exactly.
	FlagCaseSensitive Flags = 1 << iota
	// FlagWrap continues from the other end of the page.
	FlagWrap
	// FlagBackward searches towards the start of the page.
	FlagBackward
)

// Has reports whether every bit of f2 is set in f.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// String returns the set flags joined by "|", or "none".
func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	if f.Has(FlagCaseSensitive) {
		names = append(names, "case")
	}
	if f.Has(FlagWrap) {
		names = append(names, "wrap")
	}
	if f.Has(FlagBackward) {
		names = append(names, "backward")
	}
	return strings.Join(names, "|")
}
