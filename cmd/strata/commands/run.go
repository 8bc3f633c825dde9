package commands

import (
	"github.com/spf13/cobra"

	"go.strata.build/strata/internal/app"
	"go.strata.build/strata/internal/engine/graphbuilder"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [targets...]",
		Short: "Run the given targets and their dependencies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Run(cmd.Context(), c.cwd, app.RunOptions{
				Targets: args,
				Graph:   graphbuilder.DefaultOptions(),
			})
		},
	}
	return cmd
}
