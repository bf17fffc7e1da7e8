// Package config provides the sectioned settings store.
//
// Settings are addressed by section and key, for example
// general.ignorecase. Values come from built-in defaults, then TOML or
// YAML files in the order given to Load, then CMDLINE_<SECTION>_<KEY>
// environment variables. The aliases section maps alias names to command
// text and backs the dispatcher's alias lookup.
//
// A Watcher can reload the store when its files change on disk.
package config
