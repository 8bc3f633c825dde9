// Package commands implements the CLI commands for the strata build tool.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"go.strata.build/strata/internal/app"
	"go.strata.build/strata/internal/build"
	"go.strata.build/strata/internal/core/domain"
)

// Application is the subset of *app.App the commands need, narrowed to an
// interface so tests can substitute a stub.
type Application interface {
	Run(ctx context.Context, cwd string, opts app.RunOptions) error
	Graph(ctx context.Context, cwd string, opts app.RunOptions) (*domain.ActionGraph, error)
}

// CLI represents the command line interface for strata.
type CLI struct {
	app     Application
	cwd     string
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app. cwd is the directory
// the workspace is loaded relative to for every subcommand.
func New(a Application, cwd string) *CLI {
	rootCmd := &cobra.Command{
		Use:           "strata",
		Short:         "A polyglot build and task orchestrator for monorepos",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		cwd:     cwd,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newGraphCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
