package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/jrsteele09/estate-client/internal/cli"
	"github.com/jrsteele09/estate-client/internal/config"
)

const configFileVar = "ESTATE_CONFIG"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, cli.Failure(err))
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load(os.Getenv(configFileVar))
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	log := config.NewLogger(c, os.Stderr)

	app, err := cli.NewApp(c, log, os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("cli.NewApp: %w", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
