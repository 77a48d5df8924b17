package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/canopyviz/canopy/pkg/config"
	"github.com/canopyviz/canopy/pkg/graph"
	"github.com/canopyviz/canopy/pkg/observability"
	"github.com/canopyviz/canopy/pkg/pipeline"
	"github.com/canopyviz/canopy/pkg/reconcile"
	"github.com/canopyviz/canopy/pkg/source/markdown"
)

// watchCommand creates the watch command: a live sync loop over a workspace.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		noCache bool
		refresh bool
		useTUI  bool
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a workspace and keep the surface converged",
		Long: `Watch monitors the markdown notes under <dir>. In-place edits are applied
as single-node patches; structural changes (new, removed, or renamed notes)
trigger a full re-sync. With --tui the live surface is shown in the
terminal instead of log output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			workspace, err := workspacePath(args[0])
			if err != nil {
				return err
			}
			cfg, err := config.LoadWorkspace(workspace)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}

			watcher, err := markdown.NewWatcher(workspace, c.Logger)
			if err != nil {
				return err
			}
			defer watcher.Close()
			watcher.SetDebounce(cfg.Debounce())

			loop := &watchLoop{
				cli:       c,
				runner:    runner,
				workspace: workspace,
				refresh:   refresh,
				surface:   reconcile.NewMemorySurface(),
			}
			loop.applier = reconcile.NewDeltaApplier(loop.surface)
			loop.applier.OnNodeDeleted = func(id graph.NodeID) {
				c.Logger.Info("node removed", "node", id)
			}

			if useTUI {
				return loop.runTUI(ctx, watcher)
			}
			return loop.run(ctx, watcher)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the position cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-seed every node on the first pass")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "show the live surface in the terminal")

	return cmd
}

// watchLoop owns the surface a watch session converges.
type watchLoop struct {
	cli       *CLI
	runner    *pipeline.Runner
	workspace string
	refresh   bool
	surface   *reconcile.MemorySurface
	applier   *reconcile.DeltaApplier

	// positions remembers the last seeded placement per node for display.
	positions map[graph.NodeID]graph.Position
}

// handle processes one watcher event and reports a short description of what
// happened.
func (l *watchLoop) handle(ctx context.Context, ev markdown.Event) (string, error) {
	if ev.Snapshot != nil {
		result, err := l.runner.Sync(ctx, *ev.Snapshot, l.surface, pipeline.Options{
			Workspace: l.workspace,
			Refresh:   l.refresh,
			Logger:    l.cli.Logger,
		})
		if err != nil {
			return "", err
		}
		// Only the first pass honors --refresh; later snapshots keep the layout.
		l.refresh = false
		l.positions = graph.PositionsOf(result.Graph)

		if result.Plan.Empty() {
			return fmt.Sprintf("snapshot: %d nodes, no changes", result.Stats.NodeCount), nil
		}
		return fmt.Sprintf("snapshot: %d nodes, %d changes", result.Stats.NodeCount, result.Plan.Size()), nil
	}

	l.applier.Apply(ev.Delta)
	switch d := ev.Delta.(type) {
	case reconcile.UpsertNode:
		observability.Sync().OnDeltaApplied(ctx, l.workspace, string(d.Node.ID))
		return fmt.Sprintf("patched %s", d.Node.ID), nil
	case reconcile.DeleteNode:
		observability.Sync().OnDeltaApplied(ctx, l.workspace, string(d.NodeID))
		delete(l.positions, d.NodeID)
		return fmt.Sprintf("removed %s", d.NodeID), nil
	}
	return "", nil
}

// run drives the loop with plain log output.
func (l *watchLoop) run(ctx context.Context, watcher *markdown.Watcher) error {
	errCh := make(chan error, 1)
	go func() { errCh <- watcher.Run(ctx) }()

	printInfo("Watching %s", l.workspace)

	for {
		select {
		case <-ctx.Done():
			return ignoreCanceled(<-errCh)
		case err := <-errCh:
			return ignoreCanceled(err)
		case werr := <-watcher.Errors():
			printWarning("watch error: %v", werr)
		case ev, ok := <-watcher.Events():
			if !ok {
				return ignoreCanceled(<-errCh)
			}
			desc, err := l.handle(ctx, ev)
			if err != nil {
				return err
			}
			printDetail("%s · %d elements", desc, len(l.surface.Elements()))
		}
	}
}

// ignoreCanceled maps a clean cancellation to nil so an interrupted watch
// session exits successfully.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runTUI drives the loop behind a bubbletea view of the surface.
func (l *watchLoop) runTUI(ctx context.Context, watcher *markdown.Watcher) error {
	p := tea.NewProgram(newWatchModel(l.workspace), tea.WithContext(ctx))

	go func() { _ = watcher.Run(ctx) }()
	go func() {
		for ev := range watcher.Events() {
			desc, err := l.handle(ctx, ev)
			if err != nil {
				p.Send(watchErrMsg{err})
				return
			}
			p.Send(watchUpdateMsg{
				rows:  l.rows(),
				event: desc,
			})
		}
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// rows snapshots the surface into display rows.
func (l *watchLoop) rows() []nodeRow {
	var rows []nodeRow
	for _, el := range l.surface.Elements() {
		if !el.IsNode() {
			continue
		}
		row := nodeRow{ID: el.ID}
		if label, ok := el.Data["label"].(string); ok {
			row.Title = label
		}
		if pos, ok := l.positions[graph.NodeID(el.ID)]; ok {
			row.X, row.Y = pos.X, pos.Y
			row.Placed = true
		}
		rows = append(rows, row)
	}
	return rows
}
