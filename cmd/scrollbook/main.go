package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/justyntemme/scrollbook/internal/config"
	"github.com/justyntemme/scrollbook/internal/document"
	"github.com/justyntemme/scrollbook/internal/ui"
	"github.com/justyntemme/scrollbook/internal/ui/terminal"
)

// appEnv is shared by all commands through the context
type appEnv struct {
	cfg     *config.Config
	log     *zap.Logger
	release func() error
	start   time.Time
}

type envKey struct{}

func contextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &appEnv{log: zap.NewNop(), start: time.Now()})
}

func envFromContext(ctx context.Context) *appEnv {
	if env, ok := ctx.Value(envKey{}).(*appEnv); ok {
		return env
	}
	return &appEnv{log: zap.NewNop(), start: time.Now()}
}

// initializeAppContext loads the configuration and opens the log after the
// command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error
	env := envFromContext(ctx)

	configFile := cmd.String("config")
	if env.cfg, err = config.Load(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if env.log, env.release, err = env.cfg.Logging.Prepare(cmd.Bool("debug")); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}

	env.log.Debug("Program started", zap.Strings("args", os.Args), zap.String("runtime", runtime.Version()))
	env.log.Info("Using configuration", zap.String("path", env.cfg.Path()))
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)

	env.log.Debug("Program ended", zap.Duration("elapsed", time.Since(env.start)), zap.Strings("parsed args", cmd.Args().Slice()))
	if env.release != nil {
		if er := env.release(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close log: %w", er))
		}
	}
	return
}

// exitErrHandler logs a failing command before the log is closed
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := envFromContext(ctx)
	if env.release != nil {
		env.log.Error("Program ended with error", zap.Error(err))
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:            config.AppName,
		Usage:           "terminal book reader with a chapter-aware progress indicator",
		ArgsUsage:       "[BOOK|DIRECTORY]",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Action:          readBook,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "write a debug log"},
			&cli.BoolFlag{Name: "no-watch", Usage: "do not reload the book when the file changes"},
		},
		Commands: []*cli.Command{
			{
				Name:         "toc",
				Usage:        "Prints chapters and sections with their share of the book",
				ArgsUsage:    "BOOK",
				OnUsageError: usageErrorHandler,
				Action:       printContents,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "width", Value: 80, Usage: "terminal `COLUMNS` to lay the book out for"},
					&cli.IntFlag{Name: "height", Value: 24, Usage: "terminal `ROWS` to lay the book out for"},
				},
			},
			{
				Name:         "dumpconfig",
				Usage:        "Dumps either default or actual configuration (YAML)",
				ArgsUsage:    "DESTINATION",
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default configuration"},
				},
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(contextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deferred functions after that
	defer func() {
		stop()
		if err != nil {
			// the log is a file, errors go to stderr as well
			fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			os.Exit(1)
		}
	}()
	err = newApp().Run(ctx, os.Args)
}

// readBook runs the interactive reader. A directory, or no argument at all,
// starts with the book picker.
func readBook(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("standard output is not a terminal")
	}

	rc := env.cfg.Reader
	graphics := terminal.DetectTerminalMode()
	mouse := terminal.ResolveMouse(rc.Mouse, graphics)
	env.log.Debug("Terminal", zap.Stringer("graphics", graphics), zap.String("mouse", mouse), zap.Bool("touch", rc.Touch))

	app := ui.NewApp(env.cfg, terminal.Environment(mouse, rc.Touch), !cmd.Bool("no-watch"), env.log)
	defer func() {
		err = multierr.Append(err, app.Close())
	}()

	path := cmd.Args().First()
	if path == "" {
		path = "."
	}
	if fi, serr := os.Stat(path); serr == nil && fi.IsDir() {
		app.Browse(path)
	} else {
		book, err := document.Open(path)
		if err != nil {
			return fmt.Errorf("unable to open %s: %w", path, err)
		}
		env.log.Info("Book opened", zap.String("path", path), zap.String("format", book.Format),
			zap.Int("chapters", len(book.Chapters)), zap.Int("sections", book.Sections()))
		app.Open(book)
	}

	opts := append(terminal.ProgramOptions(mouse), tea.WithContext(ctx))
	if _, err := tea.NewProgram(app, opts...).Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	cfg, state := env.cfg, "actual"
	if cmd.Bool("default") {
		cfg, state = config.Default(), "default"
	}
	data, err := cfg.Dump()
	if err != nil {
		return fmt.Errorf("unable to get %s configuration: %w", state, err)
	}

	out := cmd.Root().Writer
	if len(fname) > 0 {
		f, err := os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer f.Close()
		out = f
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("unable to write %s configuration: %w", state, err)
	}
	env.log.Info("Configuration written", zap.String("state", state), zap.String("file", fname))
	return nil
}
