// Package topic names the events the command line publishes.
//
// A topic is a dot-separated path whose first segment names the
// publishing component: "search.request" for search requests,
// "message.info", "message.warning" and "message.error" for status lines.
// Subscribers may use patterns: "message.*" receives every status level,
// "**" receives everything.
package topic

import "strings"

// Topic is a dot-separated event name such as "search.request".
type Topic string

const (
	// WildcardSingle matches exactly one segment: "message.*".
	WildcardSingle = "*"

	// WildcardMulti matches any number of segments, none included: "search.**".
	WildcardMulti = "**"

	// Separator joins segments.
	Separator = "."
)

// Join builds a topic from segments: Join("message", "error").
func Join(segments ...string) Topic {
	return Topic(strings.Join(segments, Separator))
}

func (t Topic) String() string { return string(t) }

// Segments splits t at each separator. The empty topic has no segments.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// Base is the final segment, e.g. the level of "message.warning".
func (t Topic) Base() string {
	s := string(t)
	return s[strings.LastIndex(s, Separator)+1:]
}

// IsWildcard reports whether t is a pattern rather than a concrete topic.
// Events are published on concrete topics only.
func (t Topic) IsWildcard() bool {
	return strings.Contains(string(t), WildcardSingle)
}

// IsValid reports whether t is non-empty with no empty segments.
func (t Topic) IsValid() bool {
	if t == "" {
		return false
	}
	return !strings.HasPrefix(string(t), Separator) &&
		!strings.HasSuffix(string(t), Separator) &&
		!strings.Contains(string(t), Separator+Separator)
}

// Matches reports whether t is selected by pattern. "search.request"
// matches "search.request", "search.*", "*.request" and "**", but not
// "search" or "message.*".
func (t Topic) Matches(pattern Topic) bool {
	return match(t.Segments(), pattern.Segments())
}

// match walks both segment lists, remembering the last "**" so a failed
// match can resume with it absorbing one more topic segment.
func match(name, pattern []string) bool {
	n, p := 0, 0
	starP, starN := -1, 0

	for n < len(name) {
		switch {
		case p < len(pattern) && pattern[p] == WildcardMulti:
			starP, starN = p, n
			p++
		case p < len(pattern) && (pattern[p] == WildcardSingle || pattern[p] == name[n]):
			n++
			p++
		case starP >= 0:
			starN++
			n = starN
			p = starP + 1
		default:
			return false
		}
	}

	for p < len(pattern) && pattern[p] == WildcardMulti {
		p++
	}
	return p == len(pattern)
}
