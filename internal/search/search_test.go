package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cmdline/internal/cmdline"
	"github.com/dshills/cmdline/internal/command"
	"github.com/dshills/cmdline/internal/event"
)

type settingsMap map[string]any

func (s settingsMap) Get(section, key string) (any, error) {
	v, ok := s[section+"."+key]
	if !ok {
		return nil, errors.New("missing " + section + "." + key)
	}
	return v, nil
}

func newTestController(t *testing.T, settings settingsMap) (*Controller, *[]Request) {
	t.Helper()
	bus := event.NewBus()
	var got []Request
	_, err := bus.Subscribe(TopicRequest, func(env event.Envelope) error {
		req, ok := event.PayloadAs[Request](env)
		require.True(t, ok)
		got = append(got, req)
		return nil
	})
	require.NoError(t, err)
	return NewController(settings, bus), &got
}

func defaultSettings() settingsMap {
	return settingsMap{"general.ignorecase": true, "general.wrapsearch": true}
}

func TestSearchEmitsRequest(t *testing.T) {
	c, got := newTestController(t, defaultSettings())

	c.Search("abc")
	require.Len(t, *got, 1)
	assert.Equal(t, Request{Text: "abc", Flags: FlagWrap}, (*got)[0])

	text, flags, active := c.State()
	assert.Equal(t, "abc", text)
	assert.Equal(t, FlagWrap, flags)
	assert.True(t, active)
}

func TestSearchNewTextClearsFirst(t *testing.T) {
	c, got := newTestController(t, defaultSettings())

	c.Search("abc")
	c.Search("xyz")

	require.Len(t, *got, 3)
	assert.True(t, (*got)[1].IsClear())
	assert.Equal(t, Request{}, (*got)[1])
	assert.Equal(t, Request{Text: "xyz", Flags: FlagWrap}, (*got)[2])
}

func TestSearchSameTextDoesNotClear(t *testing.T) {
	c, got := newTestController(t, defaultSettings())

	c.Search("abc")
	c.SearchReverse("abc")

	require.Len(t, *got, 2)
	assert.Equal(t, Request{Text: "abc", Flags: FlagWrap | FlagBackward}, (*got)[1])
}

// Case-sensitive matching is requested only when ignorecase is off.
func TestSearchFlagsFromSettings_CaseSensitiveWhenIgnoreCaseOff(t *testing.T) {
	tests := []struct {
		name     string
		settings settingsMap
		reverse  bool
		want     Flags
	}{
		{"defaults ignore case", defaultSettings(), false, FlagWrap},
		{"ignorecase off is case sensitive", settingsMap{"general.ignorecase": false, "general.wrapsearch": true}, false, FlagCaseSensitive | FlagWrap},
		{"ignorecase on no wrap reverse", settingsMap{"general.ignorecase": true, "general.wrapsearch": false}, true, FlagBackward},
		{"string ignorecase false is case sensitive", settingsMap{"general.ignorecase": "false", "general.wrapsearch": "true"}, false, FlagCaseSensitive | FlagWrap},
		{"missing ignorecase is case sensitive", settingsMap{}, false, FlagCaseSensitive},
		{"garbage value", settingsMap{"general.ignorecase": "maybe", "general.wrapsearch": []int{1}}, false, FlagCaseSensitive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, got := newTestController(t, tt.settings)
			if tt.reverse {
				c.SearchReverse("q")
			} else {
				c.Search("q")
			}
			require.Len(t, *got, 1)
			assert.Equal(t, tt.want, (*got)[0].Flags)
		})
	}
}

func TestSearchRecomputesFlags(t *testing.T) {
	settings := defaultSettings()
	c, got := newTestController(t, settings)

	c.SearchReverse("abc")
	settings["general.wrapsearch"] = false
	c.Search("xyz")

	require.Len(t, *got, 3)
	assert.Equal(t, FlagWrap|FlagBackward, (*got)[0].Flags)
	assert.Equal(t, Flags(0), (*got)[2].Flags, "no stale backward or wrap bit")
}

func TestRepeatSearch(t *testing.T) {
	settings := defaultSettings()
	c, got := newTestController(t, settings)

	c.Search("abc")
	settings["general.wrapsearch"] = false
	c.RepeatSearch(3)

	require.Len(t, *got, 4)
	for _, req := range (*got)[1:] {
		assert.Equal(t, Request{Text: "abc", Flags: FlagWrap}, req, "flags are not recomputed")
	}
}

func TestRepeatSearchWithoutSearch(t *testing.T) {
	c, got := newTestController(t, defaultSettings())

	c.RepeatSearch(1)
	c.RepeatSearch(5)
	assert.Empty(t, *got)

	_, _, active := c.State()
	assert.False(t, active)
}

func TestFlagsString(t *testing.T) {
	assert.Equal(t, "none", Flags(0).String())
	assert.Equal(t, "case|wrap|backward", (FlagCaseSensitive | FlagWrap | FlagBackward).String())
	assert.Equal(t, "wrap", FlagWrap.String())
	assert.True(t, (FlagWrap | FlagBackward).Has(FlagBackward))
	assert.False(t, FlagWrap.Has(FlagWrap|FlagBackward))
}

func TestRegisterCommands(t *testing.T) {
	c, got := newTestController(t, defaultSettings())
	reg := command.NewRegistry()
	require.NoError(t, RegisterCommands(reg, c))

	d := cmdline.New(reg)

	ok, err := d.Run("search foo bar", cmdline.PropagateErrors())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Run("nextsearch", cmdline.WithCount(2), cmdline.PropagateErrors())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Run("nextsearch", cmdline.PropagateErrors())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Run("search-rev foo bar", cmdline.PropagateErrors())
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, *got, 5)
	assert.Equal(t, "foo bar", (*got)[0].Text, "search keeps the whole text")
	assert.Equal(t, (*got)[0], (*got)[1])
	assert.Equal(t, (*got)[0], (*got)[3])
	assert.True(t, (*got)[4].Flags.Has(FlagBackward))

	_, err = d.Run("search", cmdline.PropagateErrors())
	assert.ErrorIs(t, err, command.ErrArgumentCount)

	cmd, ok := reg.Lookup(CommandNextSearch)
	require.True(t, ok)
	assert.True(t, cmd.Hide)

	assert.ErrorIs(t, RegisterCommands(reg, c), command.ErrAlreadyRegistered)
}
