package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(Invocation) error { return nil }

func TestCommandCheckArity(t *testing.T) {
	tests := []struct {
		name    string
		min     int
		max     int
		args    []string
		wantErr bool
		detail  string
	}{
		{"exact ok", 1, 1, []string{"a"}, false, ""},
		{"exact missing", 1, 1, nil, true, "expected exactly 1 argument, got 0"},
		{"exact too many", 2, 2, []string{"a", "b", "c"}, true, "expected exactly 2 arguments, got 3"},
		{"unbounded ok", 0, Unlimited, []string{"a", "b", "c"}, false, ""},
		{"at least", 2, Unlimited, []string{"a"}, true, "expected at least 2 arguments, got 1"},
		{"range", 1, 3, []string{}, true, "expected 1 to 3 arguments, got 0"},
		{"range ok", 1, 3, []string{"a", "b"}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &Command{Name: "open", MinArgs: tt.min, MaxArgs: tt.max, Handler: noop}
			err := cmd.Check(tt.args, "")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var argErr *ArgumentCountError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, "open", argErr.Command)
			assert.Equal(t, tt.detail, argErr.Detail)
			assert.ErrorIs(t, err, ErrArgumentCount)
			assert.Contains(t, err.Error(), "open: invalid argument count")
		})
	}
}

func TestCommandCheckMode(t *testing.T) {
	cmd := &Command{Name: "follow", MaxArgs: Unlimited, Modes: []string{"hint"}, Handler: noop}

	assert.NoError(t, cmd.Check(nil, "hint"))
	assert.NoError(t, cmd.Check(nil, ""), "empty mode skips the check")

	err := cmd.Check(nil, "normal")
	var modeErr *InvalidModeError
	require.ErrorAs(t, err, &modeErr)
	assert.Equal(t, "follow", modeErr.Command)
	assert.True(t, errors.Is(err, ErrInvalidMode))
	assert.Equal(t, "follow: this command is only allowed in hint mode", err.Error())
}

func TestCommandRunCount(t *testing.T) {
	var got Invocation
	cmd := &Command{Name: "scroll", MaxArgs: Unlimited, Handler: func(inv Invocation) error {
		got = inv
		return nil
	}}

	require.NoError(t, cmd.Run([]string{"down"}))
	assert.False(t, got.HasCount)
	assert.Equal(t, 1, got.CountOr(1))

	require.NoError(t, cmd.RunWithCount([]string{"down"}, 5))
	assert.True(t, got.HasCount)
	assert.Equal(t, 5, got.CountOr(1))
	assert.Equal(t, []string{"down"}, got.Args)
}

func TestCommandValidate(t *testing.T) {
	assert.ErrorIs(t, (&Command{Handler: noop}).Validate(), ErrInvalidCommand)
	assert.ErrorIs(t, (&Command{Name: "a b", Handler: noop}).Validate(), ErrInvalidCommand)
	assert.ErrorIs(t, (&Command{Name: "a"}).Validate(), ErrInvalidCommand)
	assert.ErrorIs(t, (&Command{Name: "a", MinArgs: 2, MaxArgs: 1, Handler: noop}).Validate(), ErrInvalidCommand)
	assert.ErrorIs(t, (&Command{Name: "a", MaxSplit: -2, Handler: noop}).Validate(), ErrInvalidCommand)
	assert.NoError(t, (&Command{Name: "a", MaxSplit: Unlimited, MaxArgs: Unlimited, Handler: noop}).Validate())
}

func TestIsDispatchError(t *testing.T) {
	assert.True(t, IsDispatchError(NewNoSuchCommand("x")))
	assert.True(t, IsDispatchError(&ArgumentCountError{Command: "x"}))
	assert.True(t, IsDispatchError(&InvalidModeError{Command: "x"}))
	assert.False(t, IsDispatchError(errors.New("boom")))
	assert.Equal(t, "x: no such command", NewNoSuchCommand("x").Error())
}
