package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"go.strata.build/strata/internal/adapters/watcher"
	"go.strata.build/strata/internal/app"
	"go.strata.build/strata/internal/engine/graphbuilder"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [targets...]",
		Short: "Rerun the given targets whenever a file in the workspace changes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), cmd, args)
		},
	}
}

// runWatch runs targets once immediately, then again every time the
// workspace's files settle after a change. It relies on the task runner's
// own content-hash cache to skip unaffected work rather than computing
// which targets a change affects, so a rebuild is cheap even though every
// event reruns the full target list.
func (c *CLI) runWatch(ctx context.Context, cmd *cobra.Command, targets []string) error {
	fsWatcher, err := watcher.NewWatcher()
	if err != nil {
		return fmt.Errorf("start file watcher: %w", err)
	}
	defer func() { _ = fsWatcher.Stop() }()

	if err := fsWatcher.Start(ctx, c.cwd); err != nil {
		return fmt.Errorf("watch workspace %s: %w", c.cwd, err)
	}

	out := cmd.OutOrStdout()
	opts := app.RunOptions{Targets: targets, Graph: graphbuilder.DefaultOptions()}

	rebuild := func() {
		fmt.Fprintf(out, "rebuilding %s\n", strings.Join(targets, " "))
		if err := c.app.Run(ctx, c.cwd, opts); err != nil {
			fmt.Fprintf(out, "build failed: %v\n", err)
			return
		}
		fmt.Fprintln(out, "build succeeded, watching for changes...")
	}
	rebuild()

	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func([]string) {
		rebuild()
	})

	for event := range fsWatcher.Events() {
		debouncer.Add(event.Path)
	}
	debouncer.Flush()

	// fsWatcher.Events() only ends via Stop or context cancellation (e.g.
	// Ctrl-C), both of which are a normal way for `watch` to stop.
	return nil
}
