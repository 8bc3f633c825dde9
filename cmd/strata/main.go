// Package main is the entry point for the strata build tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.strata.build/strata/cmd/strata/commands"
	"go.strata.build/strata/internal/app"
	"go.strata.build/strata/internal/core/domain"
)

func main() {
	os.Exit(run())
}

func run(opts ...func(*app.App)) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cwd, err := os.Getwd()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		return 1
	}

	components, err := app.NewApp(cwd, 0)
	if err != nil {
		// Logger is not available yet if initialization failed; write
		// directly to stderr.
		_, _ = fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		return 1
	}

	for _, opt := range opts {
		opt(components.App)
	}

	cli := commands.New(components.App, cwd)
	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, domain.ErrActionFailed) {
			return 1
		}
		components.Logger.Error(err.Error())
		return 1
	}
	return 0
}
