// Package main is the entry point for the interactive command line.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/dshills/cmdline/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type cliOptions struct {
	app      app.Options
	commands stringList
	history  string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	application, err := app.New(opts.app)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	// Commands given with -e run in order; the REPL is skipped.
	if len(opts.commands) > 0 {
		return runCommands(application, opts.commands)
	}

	return repl(application, opts.history)
}

// runner executes command lines.
type runner interface {
	Run(text string) (bool, error)
}

// runCommands runs each line in order and reports exit status 1 if any
// of them failed. quit ends the run early with status 0.
func runCommands(r runner, commands []string) int {
	status := 0
	for _, text := range commands {
		ok, err := r.Run(text)
		if errors.Is(err, app.ErrQuit) {
			return status
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if !ok {
			status = 1
		}
	}
	return status
}

func repl(application *app.Application, historyFile string) int {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(application.Complete)

	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
		defer saveHistory(line, historyFile)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM)
	defer signal.Stop(signals)

	return promptLoop(line, application, signals)
}

// prompter reads lines from the user.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type promptResult struct {
	input string
	err   error
}

// promptLoop reads and runs lines until EOF, quit, or a value on stop.
// Prompt runs on its own goroutine so stop is seen while waiting for
// input; commands always run on the calling goroutine.
func promptLoop(p prompter, r runner, stop <-chan os.Signal) int {
	results := make(chan promptResult, 1)
	for {
		go func() {
			input, err := p.Prompt(":")
			results <- promptResult{input: input, err: err}
		}()

		var res promptResult
		select {
		case <-stop:
			fmt.Println()
			return 0
		case res = <-results:
		}

		if res.err != nil {
			if errors.Is(res.err, liner.ErrPromptAborted) || errors.Is(res.err, io.EOF) {
				fmt.Println()
				return 0
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", res.err)
			return 1
		}
		if strings.TrimSpace(res.input) == "" {
			continue
		}
		p.AppendHistory(res.input)

		if _, err := r.Run(res.input); err != nil {
			if errors.Is(err, app.ErrQuit) || errors.Is(err, app.ErrShutdown) {
				return 0
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}

func saveHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = line.WriteHistory(f)
}

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cmdline")
}

func parseFlags() cliOptions {
	var opts cliOptions
	var configs, scripts stringList
	var showVersion bool
	var showHelp bool

	cfgDir := defaultConfigDir()
	defaultHistory := ""
	if cfgDir != "" {
		defaultHistory = filepath.Join(cfgDir, "history")
	}

	flag.Var(&configs, "config", "Configuration file, TOML or YAML (repeatable)")
	flag.Var(&configs, "c", "Configuration file (shorthand)")
	flag.Var(&scripts, "script", "Lua script defining commands (repeatable)")
	flag.Var(&scripts, "s", "Lua script (shorthand)")
	flag.Var(&opts.commands, "e", "Run a command line and exit (repeatable)")
	flag.StringVar(&opts.app.LogLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
	flag.StringVar(&opts.app.LogFile, "log-file", "", "Write logs to a rotated file instead of stderr")
	flag.BoolVar(&opts.app.Watch, "watch", false, "Reload configuration when files change")
	flag.StringVar(&opts.history, "history", defaultHistory, "History file (empty disables history)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "cmdline - browser-style command line\n\n")
		fmt.Fprintf(os.Stderr, "Usage: cmdline [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  cmdline                          Start the prompt\n")
		fmt.Fprintf(os.Stderr, "  cmdline -c config.toml -s init.lua\n")
		fmt.Fprintf(os.Stderr, "  cmdline -e 'search foo ;; nextsearch'\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("cmdline %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.app.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.app.LogLevel)
		os.Exit(1)
	}

	if len(configs) == 0 && cfgDir != "" {
		configs = stringList{filepath.Join(cfgDir, "config.toml"), filepath.Join(cfgDir, "config.yaml")}
	}
	opts.app.ConfigPaths = configs
	opts.app.ScriptPaths = scripts

	return opts
}
