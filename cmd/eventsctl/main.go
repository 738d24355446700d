// Command eventsctl drives the events client core from a terminal: it signs
// in, browses and filters events, keeps saved events in sync and ranks
// events for the signed-in user.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-events-client/internal/app"
	"github.com/jrsteele09/go-events-client/internal/config"
	"github.com/rs/zerolog"
)

const commandTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		displayAppname(stdout, c.GetAppName())
		usage(stdout)
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		usage(stderr)
		return &usageError{fmt.Sprintf("unknown command %q", args[0])}
	}

	logger := newLogger(stderr, c)
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	a, err := app.New(ctx, c, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil && returnError == nil {
			returnError = err
		}
	}()

	if err := a.Start(ctx); err != nil {
		logger.Warn().Err(err).Msg("load saved events")
	}
	return cmd.run(ctx, &env{app: a, out: stdout, log: logger}, args[1:])
}

func newLogger(w io.Writer, c config.EnvConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Str("app", c.GetAppName()).Logger()
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(w, myFigure.String())
}

func usage(w io.Writer) {
	var b strings.Builder
	b.WriteString("Usage:\n  eventsctl <command> [flags] [args]\n\nCommands:\n")
	for _, name := range commandOrder {
		fmt.Fprintf(&b, "  %-10s %s\n", name, commands[name].summary)
	}
	b.WriteString("\nEnvironment: EVENTS_API_BASE_URL, EVENTS_STORE_PATH, EVENTS_STORE_PASSPHRASE, LOG_LEVEL\n")
	fmt.Fprint(w, b.String())
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func exitCode(err error) int {
	var u *usageError
	if errors.As(err, &u) {
		return 2
	}
	return 1
}
