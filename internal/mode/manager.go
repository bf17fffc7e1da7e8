// Package mode tracks the browser's key mode. The command dispatcher
// consults it to reject commands that are not valid in the current mode.
package mode

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Builtin mode names.
const (
	Normal      = "normal"
	Command     = "command"
	Insert      = "insert"
	Hint        = "hint"
	Passthrough = "passthrough"
)

var (
	// ErrUnknownMode indicates the mode name is not registered.
	ErrUnknownMode = errors.New("mode: unknown mode")

	// ErrEmptyStack indicates Pop was called with nothing pushed.
	ErrEmptyStack = errors.New("mode: no mode to leave")
)

// ChangeCallback is called when the mode changes.
type ChangeCallback func(from, to string)

// Manager holds the current mode and a stack of modes to return to.
type Manager struct {
	mu sync.RWMutex

	modes     []string
	current   string
	stack     []string
	callbacks []ChangeCallback
}

// NewManager creates a manager knowing the builtin modes, starting in normal.
func NewManager() *Manager {
	return &Manager{
		modes:   []string{Normal, Command, Insert, Hint, Passthrough},
		current: Normal,
	}
}

// Register adds a custom mode name.
func (m *Manager) Register(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.modes, name) {
		m.modes = append(m.modes, name)
	}
}

// Modes returns the known mode names.
func (m *Manager) Modes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.modes)
}

// Current returns the current mode name.
func (m *Manager) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// OnChange registers a callback for mode changes.
func (m *Manager) OnChange(cb ChangeCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, cb)
}

// Switch replaces the current mode.
func (m *Manager) Switch(name string) error {
	m.mu.Lock()
	if !slices.Contains(m.modes, name) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownMode, name)
	}
	from, callbacks := m.switchLocked(name)
	m.mu.Unlock()

	notify(callbacks, from, name)
	return nil
}

// Push saves the current mode and switches to name. Pop returns to it.
func (m *Manager) Push(name string) error {
	m.mu.Lock()
	if !slices.Contains(m.modes, name) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownMode, name)
	}
	m.stack = append(m.stack, m.current)
	from, callbacks := m.switchLocked(name)
	m.mu.Unlock()

	notify(callbacks, from, name)
	return nil
}

// Pop restores the mode saved by the last Push.
func (m *Manager) Pop() error {
	m.mu.Lock()
	if len(m.stack) == 0 {
		m.mu.Unlock()
		return ErrEmptyStack
	}
	to := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	from, callbacks := m.switchLocked(to)
	m.mu.Unlock()

	notify(callbacks, from, to)
	return nil
}

// switchLocked must be called with the lock held. Callbacks are returned
// so they can run after the lock is released.
func (m *Manager) switchLocked(to string) (string, []ChangeCallback) {
	from := m.current
	m.current = to
	return from, slices.Clone(m.callbacks)
}

func notify(callbacks []ChangeCallback, from, to string) {
	if from == to {
		return
	}
	for _, cb := range callbacks {
		cb(from, to)
	}
}
