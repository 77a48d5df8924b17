package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/canopyviz/canopy/pkg/config"
	"github.com/canopyviz/canopy/pkg/errors"
	"github.com/canopyviz/canopy/pkg/graph"
	"github.com/canopyviz/canopy/pkg/render"
	"github.com/canopyviz/canopy/pkg/render/dot"
	"github.com/canopyviz/canopy/pkg/seed"
	"github.com/canopyviz/canopy/pkg/source/markdown"
)

// Export formats.
const (
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatPDF  = "pdf"
	formatPNG  = "png"
	formatJSON = "json"
)

// exportCommand creates the export command: render a workspace to a file.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		format   string
		outFile  string
		detailed bool
		noCache  bool
		cached   bool
	)

	cmd := &cobra.Command{
		Use:   "export <dir>",
		Short: "Export a workspace as DOT, SVG, PDF, PNG, or JSON",
		Long: `Export parses the workspace, seeds positions the same way sync does, and
writes a picture of the graph. Positions persisted by earlier runs are
reused, so the export matches what a live surface would show. With
--cached the snapshot left behind by the last sync is rendered as-is,
without reading the notes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := validateFormat(format); err != nil {
				return err
			}

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

			var seeded graph.Graph
			restored := false
			if cached {
				snap, hit, err := runner.RestoreSnapshot(ctx, workspace)
				if err != nil {
					return err
				}
				if !hit {
					return errors.New(errors.ErrCodeNotFound,
						"no cached snapshot for %s (sync the workspace first)", workspace)
				}
				seeded = snap
				restored = true
			} else {
				g, err := markdown.Parse(workspace)
				if err != nil {
					return err
				}

				// Restore the persisted layout, then seed what's still
				// missing, exactly as a sync pass would.
				if positions, hit, err := runner.RestorePositions(ctx, workspace); err == nil && hit {
					g = graph.ApplyPositions(g, positions)
					restored = true
				}
				seeded = seed.SeedPositions(g)
				if err := runner.PersistPositions(ctx, workspace, graph.PositionsOf(seeded)); err != nil {
					c.Logger.Warn("position persist failed", "workspace", workspace, "error", err)
				}
			}

			data, err := renderFormat(seeded, format, detailed)
			if err != nil {
				return err
			}

			if outFile == "" {
				outFile = fmt.Sprintf("canopy.%s", format)
			}
			if err := os.WriteFile(outFile, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", outFile, err)
			}

			printSuccess("Exported %s", workspace)
			printStats(seeded.NodeCount(), seeded.EdgeCount(), restored)
			printFile(outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatSVG, "output format: dot, svg, pdf, png, json")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default canopy.<format>)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include node summaries in labels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the position cache")
	cmd.Flags().BoolVar(&cached, "cached", false, "render the last synced snapshot without reading the notes")

	return cmd
}

// validateFormat checks that a format is supported.
func validateFormat(format string) error {
	switch format {
	case formatDOT, formatSVG, formatPDF, formatPNG, formatJSON:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat,
		"invalid format: %q (must be one of: %s)", format,
		strings.Join([]string{formatDOT, formatSVG, formatPDF, formatPNG, formatJSON}, ", "))
}

// renderFormat produces the export bytes for one format.
func renderFormat(g graph.Graph, format string, detailed bool) ([]byte, error) {
	switch format {
	case formatJSON:
		return graph.Marshal(g)
	case formatDOT:
		return []byte(dot.ToDOT(g, dot.Options{Detailed: detailed})), nil
	}

	svg, err := dot.RenderSVG(dot.ToDOT(g, dot.Options{Detailed: detailed}))
	if err != nil {
		return nil, err
	}
	switch format {
	case formatSVG:
		return svg, nil
	case formatPDF:
		return render.ToPDF(svg)
	case formatPNG:
		return render.ToPNG(svg, 2.0)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
}
