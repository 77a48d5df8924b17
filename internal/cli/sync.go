package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canopyviz/canopy/pkg/config"
	"github.com/canopyviz/canopy/pkg/graph"
	"github.com/canopyviz/canopy/pkg/pipeline"
	"github.com/canopyviz/canopy/pkg/reconcile"
	"github.com/canopyviz/canopy/pkg/source/markdown"
)

// syncCommand creates the sync command: one pass over a workspace.
func (c *CLI) syncCommand() *cobra.Command {
	var (
		refresh bool
		noCache bool
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "sync <dir>",
		Short: "Parse a workspace once and converge a surface onto it",
		Long: `Sync parses the markdown notes under <dir> into a graph, seeds positions
for new nodes, and reconciles an in-memory surface against the result.
The reconciliation plan is printed; positions persist across runs through
the cache so repeated syncs keep the layout stable.`,
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

			spinner := newSpinnerWithContext(ctx, "Parsing workspace...")
			spinner.Start()
			g, err := markdown.Parse(workspace)
			if err != nil {
				spinner.StopWithError("Parse failed")
				return err
			}
			spinner.Stop()

			prog := newProgress(c.Logger)
			surface := reconcile.NewMemorySurface()
			result, err := runner.Sync(ctx, g, surface, pipeline.Options{
				Workspace: workspace,
				Refresh:   refresh,
				Logger:    c.Logger,
			})
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Converged %d elements", len(surface.Elements())))

			printSuccess("Synced %s", workspace)
			printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.PositionsHit)
			printPlan(result.Plan)

			if outFile != "" {
				if err := graph.WriteFile(result.Graph, outFile); err != nil {
					return fmt.Errorf("write snapshot: %w", err)
				}
				printFile(outFile)
			}

			printNextStep("Watch for changes", fmt.Sprintf("canopy watch %s", args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore persisted positions and re-seed every node")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the position cache")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write the seeded graph snapshot as JSON")

	return cmd
}

// printPlan summarizes a reconciliation plan on one detail line.
func printPlan(plan reconcile.Plan) {
	if plan.Empty() {
		printDetail("surface already converged")
		return
	}
	printDetail("+%d nodes  -%d nodes  ~%d nodes  +%d edges  -%d edges",
		len(plan.NodesToAdd), len(plan.NodesToRemove), len(plan.NodesToUpdate),
		len(plan.EdgesToAdd), len(plan.EdgesToRemove))
}
