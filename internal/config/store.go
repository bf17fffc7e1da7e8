package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cast"

	"github.com/dshills/cmdline/internal/config/loader"
)

// ChangeFunc is called after a setting changes. For reloads section and
// key are empty.
type ChangeFunc func(section, key string)

// Store holds settings as section -> key -> value.
// It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sections map[string]map[string]any

	observers []ChangeFunc
	paths     []string

	fs        loader.FileSystem
	envPrefix string
	environ   []string
}

// Option configures a Store.
type Option func(*Store)

// WithFileSystem sets the file system used by Load.
func WithFileSystem(fs loader.FileSystem) Option {
	return func(s *Store) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// WithEnvPrefix sets the environment variable prefix. An empty prefix
// disables environment overrides.
func WithEnvPrefix(prefix string) Option {
	return func(s *Store) {
		s.envPrefix = prefix
	}
}

// WithEnviron uses env instead of the process environment.
func WithEnviron(env []string) Option {
	return func(s *Store) {
		s.environ = env
	}
}

// New creates a store populated with Defaults.
func New(opts ...Option) *Store {
	s := &Store{
		sections:  Defaults(),
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the raw value of section.key.
func (s *Store) Get(section, key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sec, ok := s.sections[section]
	if !ok {
		return nil, &NoSectionError{Section: section}
	}
	v, ok := sec[key]
	if !ok {
		return nil, &NoOptionError{Section: section, Key: key}
	}
	return v, nil
}

// GetBool returns section.key coerced to a bool.
func (s *Store) GetBool(section, key string) (bool, error) {
	v, err := s.Get(section, key)
	if err != nil {
		return false, err
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, fmt.Errorf("%s.%s: %w", section, key, err)
	}
	return b, nil
}

// GetString returns section.key coerced to a string.
func (s *Store) GetString(section, key string) (string, error) {
	v, err := s.Get(section, key)
	if err != nil {
		return "", err
	}
	str, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("%s.%s: %w", section, key, err)
	}
	return str, nil
}

// Set stores value at section.key, creating the section if needed.
func (s *Store) Set(section, key string, value any) {
	s.mu.Lock()
	sec, ok := s.sections[section]
	if !ok {
		sec = make(map[string]any)
		s.sections[section] = sec
	}
	sec[key] = value
	observers := append([]ChangeFunc(nil), s.observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(section, key)
	}
}

// Sections returns the section names in sorted order.
func (s *Store) Sections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.sections))
	for name := range s.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Keys returns the keys of section in sorted order.
func (s *Store) Keys(section string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sec := s.sections[section]
	keys := make([]string, 0, len(sec))
	for k := range sec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Alias returns the expansion of an alias. Missing aliases and values that
// are not strings report false.
func (s *Store) Alias(name string) (string, bool) {
	v, err := s.Get(SectionAliases, name)
	if err != nil {
		return "", false
	}
	text, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return text, true
}

// SetAlias defines or replaces an alias.
func (s *Store) SetAlias(name, text string) {
	s.Set(SectionAliases, name, text)
}

// Aliases returns a copy of all aliases.
func (s *Store) Aliases() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.sections[SectionAliases]))
	for name, v := range s.sections[SectionAliases] {
		if text, err := cast.ToStringE(v); err == nil {
			out[name] = text
		}
	}
	return out
}

// OnChange registers fn to be called after Set and after each reload.
func (s *Store) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Paths returns the files passed to the last Load.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.paths...)
}

// Load rebuilds the store from Defaults, the given files in order and the
// environment. Missing files are skipped. If any file fails to parse the
// store is left unchanged and the errors are returned together.
func (s *Store) Load(paths ...string) error {
	merged := make(map[string]any)
	for section, keys := range Defaults() {
		sec := make(map[string]any, len(keys))
		for k, v := range keys {
			sec[k] = v
		}
		merged[section] = sec
	}

	var result *multierror.Error
	for _, path := range paths {
		l, err := loader.ForPath(s.fs, path)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		data, err := l.LoadFrom(path)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if err := checkSections(path, data); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		loader.DeepMerge(merged, data)
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}

	if s.envPrefix != "" {
		var env *loader.EnvLoader
		if s.environ != nil {
			env = loader.NewEnvLoaderFrom(s.envPrefix, s.environ)
		} else {
			env = loader.NewEnvLoader(s.envPrefix)
		}
		overrides, err := env.Load()
		if err != nil {
			return err
		}
		loader.DeepMerge(merged, overrides)
	}

	sections := make(map[string]map[string]any, len(merged))
	for name, v := range merged {
		sections[name] = v.(map[string]any)
	}

	s.mu.Lock()
	s.sections = sections
	s.paths = append([]string(nil), paths...)
	observers := append([]ChangeFunc(nil), s.observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn("", "")
	}
	return nil
}

// Reload repeats the last Load.
func (s *Store) Reload() error {
	return s.Load(s.Paths()...)
}

// checkSections rejects top-level values that are not tables.
func checkSections(path string, data map[string]any) error {
	for name, v := range data {
		if _, ok := v.(map[string]any); !ok {
			return &loader.ParseError{
				Path:    path,
				Message: fmt.Sprintf("top-level key %q is not a section", name),
			}
		}
	}
	return nil
}
