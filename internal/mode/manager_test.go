package mode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerStartsInNormal(t *testing.T) {
	m := NewManager()
	assert.Equal(t, Normal, m.Current())
	assert.Contains(t, m.Modes(), Hint)
}

func TestManagerSwitch(t *testing.T) {
	m := NewManager()
	var changes [][2]string
	m.OnChange(func(from, to string) {
		changes = append(changes, [2]string{from, to})
	})

	require.NoError(t, m.Switch(Insert))
	assert.Equal(t, Insert, m.Current())

	require.NoError(t, m.Switch(Insert))
	assert.Len(t, changes, 1, "switching to the same mode does not notify")

	err := m.Switch("visual")
	assert.ErrorIs(t, err, ErrUnknownMode)
	assert.Equal(t, Insert, m.Current())

	m.Register("visual")
	require.NoError(t, m.Switch("visual"))
	assert.Equal(t, [][2]string{{Normal, Insert}, {Insert, "visual"}}, changes)
}

func TestManagerPushPop(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.Push(Command))
	require.NoError(t, m.Push(Hint))
	assert.Equal(t, Hint, m.Current())

	require.NoError(t, m.Pop())
	assert.Equal(t, Command, m.Current())
	require.NoError(t, m.Pop())
	assert.Equal(t, Normal, m.Current())

	assert.ErrorIs(t, m.Pop(), ErrEmptyStack)
	assert.ErrorIs(t, m.Push("nope"), ErrUnknownMode)
}
