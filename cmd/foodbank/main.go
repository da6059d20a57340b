// foodbank is a command line client for the food bank API. Each invocation boots the
// session from the persisted token when the command needs it, runs one command and
// prints JSON.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/angelmondragon/foodbank-client/pkg/config"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup runs before exit.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logg := logger.New(logger.Options{ServiceName: "foodbank", Output: os.Stderr})
	if err := godotenv.Load(); err != nil {
		logg.Debug(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		return 1
	}
	logg = logger.New(logger.Options{
		ServiceName: "foodbank",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
		Output:      os.Stderr,
	})

	flags := pflag.NewFlagSet("foodbank", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	showMetrics := flags.Bool("metrics", false, "print client request metrics after the command")
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	a, err := newApp(ctx, appParams{Config: cfg, Logger: logg, Out: os.Stdout})
	if err != nil {
		logg.Error(ctx, "failed to start client", err)
		return 1
	}
	defer closeApp(ctx, logg, a)

	runErr := a.dispatch(ctx, flags.Args())
	if *showMetrics {
		if err := a.printMetrics(os.Stderr); err != nil {
			logg.Warn(logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "metrics.gather_failed")
		}
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, pkgerrors.UserMessage(runErr, runErr.Error()))
		return 1
	}
	return 0
}

// closeApp logs a failed close instead of dropping it.
func closeApp(ctx context.Context, logg *logger.Logger, c io.Closer) {
	if err := c.Close(); err != nil {
		logg.Error(ctx, "error closing token store", err)
	}
}
