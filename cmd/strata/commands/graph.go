package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.strata.build/strata/internal/app"
	"go.strata.build/strata/internal/engine/graphbuilder"
)

func (c *CLI) newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph [targets...]",
		Short: "Print the action graph for the given targets in topological order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ag, err := c.app.Graph(cmd.Context(), c.cwd, app.RunOptions{
				Targets: args,
				Graph:   graphbuilder.DefaultOptions(),
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for idx := range ag.Walk() {
				node := ag.Node(idx)
				fmt.Fprintln(out, node.Label())
			}
			return nil
		},
	}
}
