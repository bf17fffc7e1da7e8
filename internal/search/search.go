// Package search keeps the incremental page search state and turns search
// commands into search requests for the page-search collaborator.
package search

import (
	"github.com/spf13/cast"

	"github.com/dshills/cmdline/internal/event"
	"github.com/dshills/cmdline/internal/event/topic"
)

// TopicRequest is the topic search requests are published on. A request
// with empty text and no flags tells the page to drop its current search.
const TopicRequest topic.Topic = "search.request"

// Settings keys read when a new search starts.
const (
	SettingsSection = "general"
	KeyIgnoreCase   = "ignorecase"
	KeyWrapSearch   = "wrapsearch"
)

// Request is the payload of a search.request event.
type Request struct {
	Text  string
	Flags Flags
}

// IsClear reports whether the request clears the current search.
func (r Request) IsClear() bool {
	return r.Text == "" && r.Flags == 0
}

// Settings reads configuration values.
type Settings interface {
	Get(section, key string) (any, error)
}

// Logger is the subset of the application logger the controller uses.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// Controller holds the last searched text and its flags.
// It is driven from the event loop and is not safe for concurrent use.
type Controller struct {
	settings Settings
	pub      event.Publisher
	log      Logger

	text   string
	flags  Flags
	active bool
}

// NewController creates a controller with no active search.
func NewController(settings Settings, pub event.Publisher, opts ...Option) *Controller {
	c := &Controller{
		settings: settings,
		pub:      pub,
		log:      nopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search starts a forward search for text.
func (c *Controller) Search(text string) {
	c.search(text, false)
}

// SearchReverse starts a backward search for text.
func (c *Controller) SearchReverse(text string) {
	c.search(text, true)
}

func (c *Controller) search(text string, reverse bool) {
	if c.active && c.text != text {
		// The page keeps its own search state; drop the stale query first.
		c.emit(Request{})
	}

	c.text = text
	c.flags = c.computeFlags(reverse)
	c.active = true
	c.emit(Request{Text: c.text, Flags: c.flags})
}

// RepeatSearch re-emits the active search count times with unchanged
// flags. It does nothing when no search is active.
func (c *Controller) RepeatSearch(count int) {
	if !c.active {
		return
	}
	for i := 0; i < count; i++ {
		c.emit(Request{Text: c.text, Flags: c.flags})
	}
}

// State returns the active search text and flags.
func (c *Controller) State() (text string, flags Flags, active bool) {
	return c.text, c.flags, c.active
}

func (c *Controller) computeFlags(reverse bool) Flags {
	var flags Flags
	if !c.setting(KeyIgnoreCase) {
		flags |= FlagCaseSensitive
	}
	if c.setting(KeyWrapSearch) {
		flags |= FlagWrap
	}
	if reverse {
		flags |= FlagBackward
	}
	return flags
}

func (c *Controller) setting(key string) bool {
	v, err := c.settings.Get(SettingsSection, key)
	if err != nil {
		c.log.Warn("search: reading %s.%s: %v", SettingsSection, key, err)
		return false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		c.log.Warn("search: %s.%s is not a boolean: %v", SettingsSection, key, err)
		return false
	}
	return b
}

func (c *Controller) emit(req Request) {
	c.log.Debug("search request %q flags=%s", req.Text, req.Flags)
	if err := c.pub.Publish(event.NewEvent(TopicRequest, req, "search")); err != nil {
		c.log.Warn("search: delivering request: %v", err)
	}
}
