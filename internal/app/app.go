package app

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/dshills/cmdline/internal/cmdline"
	"github.com/dshills/cmdline/internal/command"
	"github.com/dshills/cmdline/internal/config"
	"github.com/dshills/cmdline/internal/event"
	"github.com/dshills/cmdline/internal/message"
	"github.com/dshills/cmdline/internal/mode"
	"github.com/dshills/cmdline/internal/search"
	"github.com/dshills/cmdline/internal/script"
)

// historySize is the number of messages kept for the messages command.
const historySize = 100

// Options configures application creation.
type Options struct {
	// ConfigPaths are TOML or YAML files loaded in order.
	ConfigPaths []string
	// ScriptPaths are Lua files loaded after the builtins are registered.
	ScriptPaths []string
	// LogLevel overrides general.log-level when set.
	LogLevel string
	// LogFile sends logs to a rotated file instead of stderr.
	LogFile string
	// Watch reloads configuration when its files change.
	Watch bool

	// Output receives user messages. Defaults to os.Stdout.
	Output io.Writer
	// LogOutput receives logs when LogFile is empty. Defaults to os.Stderr.
	LogOutput io.Writer
	// Environ replaces the process environment for config overrides.
	Environ []string
}

// Application owns every component of the command line.
type Application struct {
	log      *Logger
	store    *config.Store
	watcher  *config.Watcher
	bus      *event.Bus
	modes    *mode.Manager
	registry *command.Registry
	messages message.Sink
	dispatch *cmdline.Dispatcher
	search   *search.Controller
	scripts  *script.Engine

	out io.Writer

	mu       sync.Mutex
	history  []message.Message
	quit     bool
	shutdown bool
	logLevel string
}

// New creates the application.
func New(opts Options) (*Application, error) {
	app := &Application{
		out:      opts.Output,
		logLevel: opts.LogLevel,
	}
	if app.out == nil {
		app.out = os.Stdout
	}

	logCfg := DefaultLoggerConfig()
	logCfg.File = opts.LogFile
	if opts.LogOutput != nil {
		logCfg.Output = opts.LogOutput
	}
	app.log = NewLogger(logCfg)

	var storeOpts []config.Option
	if opts.Environ != nil {
		storeOpts = append(storeOpts, config.WithEnviron(opts.Environ))
	}
	app.store = config.New(storeOpts...)
	if err := app.store.Load(opts.ConfigPaths...); err != nil {
		app.log.Close()
		return nil, &InitError{Component: "config", Err: err}
	}
	app.applyLogLevel()
	app.store.OnChange(func(section, key string) {
		if section == "" || (section == config.SectionGeneral && key == config.KeyLogLevel) {
			app.applyLogLevel()
		}
	})

	app.bus = event.NewBus()
	app.modes = mode.NewManager()
	app.registry = command.NewRegistry()

	app.messages = message.Multi{
		message.NewTerminalSink(app.out),
		message.NewLogSink(app.log.WithComponent("message")),
		message.NewBusSink(app.bus),
	}

	app.dispatch = cmdline.New(app.registry,
		cmdline.WithAliases(app.store),
		cmdline.WithModes(app.modes),
		cmdline.WithMessages(app.messages),
		cmdline.WithLogger(app.log.WithComponent("cmdline")),
	)

	app.search = search.NewController(app.store, app.bus,
		search.WithLogger(app.log.WithComponent("search")))

	app.scripts = script.NewEngine(app.registry,
		script.WithRunner(app.dispatch),
		script.WithMessages(app.messages),
	)

	if err := app.subscribe(); err != nil {
		app.close()
		return nil, &InitError{Component: "events", Err: err}
	}

	if err := app.registerBuiltins(); err != nil {
		app.close()
		return nil, &InitError{Component: "commands", Err: err}
	}
	if err := search.RegisterCommands(app.registry, app.search); err != nil {
		app.close()
		return nil, &InitError{Component: "commands", Err: err}
	}

	var result *multierror.Error
	for _, path := range opts.ScriptPaths {
		if err := app.scripts.LoadFile(path); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", path, err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		app.close()
		return nil, &InitError{Component: "scripts", Err: err}
	}

	if opts.Watch {
		app.watcher = config.NewWatcher(app.store,
			config.WithWatchLogger(app.log.WithComponent("config")))
		if err := app.watcher.Start(); err != nil {
			app.close()
			return nil, &InitError{Component: "watcher", Err: err}
		}
	}

	app.log.Debug("started with %d commands", app.registry.Count())
	return app, nil
}

// subscribe hooks the application into its own events: search requests
// are echoed to the user, and messages are kept for the messages command.
func (app *Application) subscribe() error {
	_, err := app.bus.Subscribe(search.TopicRequest, func(env event.Envelope) error {
		req, ok := event.PayloadAs[search.Request](env)
		if !ok || req.IsClear() {
			return nil
		}
		_, err := fmt.Fprintf(app.out, "/%s [%s]\n", req.Text, req.Flags)
		return err
	})
	if err != nil {
		return err
	}

	_, err = app.bus.Subscribe("message.*", func(env event.Envelope) error {
		msg, ok := event.PayloadAs[message.Message](env)
		if !ok {
			return nil
		}
		app.mu.Lock()
		defer app.mu.Unlock()
		app.history = append(app.history, msg)
		if len(app.history) > historySize {
			app.history = app.history[len(app.history)-historySize:]
		}
		return nil
	})
	return err
}

func (app *Application) applyLogLevel() {
	level := app.logLevel
	if level == "" {
		level, _ = app.store.GetString(config.SectionGeneral, config.KeyLogLevel)
	}
	app.log.SetLevel(ParseLogLevel(level))
}

// Run dispatches one command line. It returns ErrQuit once the line has
// asked the application to quit.
func (app *Application) Run(line string) (bool, error) {
	app.mu.Lock()
	if app.shutdown {
		app.mu.Unlock()
		return false, ErrShutdown
	}
	app.mu.Unlock()

	ok, _ := app.dispatch.Run(line)

	app.mu.Lock()
	defer app.mu.Unlock()
	if app.quit {
		return ok, ErrQuit
	}
	return ok, nil
}

// Complete returns the command and alias names completing line.
func (app *Application) Complete(line string) []string {
	return cmdline.Complete(app.completionNames(), line)
}

func (app *Application) completionNames() []string {
	names := make([]string, 0, app.registry.Count())
	for _, cmd := range app.registry.Visible() {
		names = append(names, cmd.Name)
	}
	for alias := range app.store.Aliases() {
		names = append(names, alias)
	}
	return names
}

// Messages returns the recent message history, oldest first.
func (app *Application) Messages() []message.Message {
	app.mu.Lock()
	defer app.mu.Unlock()
	return append([]message.Message(nil), app.history...)
}

// Shutdown stops the watcher, closes scripts and the log file.
// It is safe to call more than once.
func (app *Application) Shutdown() {
	app.mu.Lock()
	if app.shutdown {
		app.mu.Unlock()
		return
	}
	app.shutdown = true
	app.mu.Unlock()

	app.log.Debug("shutting down")
	app.close()
}

func (app *Application) close() {
	if app.watcher != nil {
		if err := app.watcher.Stop(); err != nil {
			app.log.Warn("stopping config watcher: %v", err)
		}
	}
	if app.scripts != nil {
		app.scripts.Close()
	}
	_ = app.log.Close()
}

// Logger returns the application logger.
func (app *Application) Logger() *Logger { return app.log }

// Config returns the settings store.
func (app *Application) Config() *config.Store { return app.store }

// EventBus returns the event bus.
func (app *Application) EventBus() *event.Bus { return app.bus }

// Modes returns the mode manager.
func (app *Application) Modes() *mode.Manager { return app.modes }

// Registry returns the command registry.
func (app *Application) Registry() *command.Registry { return app.registry }

// Dispatcher returns the command dispatcher.
func (app *Application) Dispatcher() *cmdline.Dispatcher { return app.dispatch }

// Search returns the search controller.
func (app *Application) Search() *search.Controller { return app.search }

// Scripts returns the Lua engine.
func (app *Application) Scripts() *script.Engine { return app.scripts }
