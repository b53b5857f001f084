package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taskflow/pkg/dag/transform"
	"github.com/matzehuels/taskflow/pkg/graph"
	"github.com/matzehuels/taskflow/pkg/layout"
	"github.com/matzehuels/taskflow/pkg/render/nodelink"
)

// dotCommand creates the dot command that exports the graph for Graphviz.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		output     string
		direction  string
		svg        bool
		sections   bool
		detailed   bool
		noCritical bool
	)

	cmd := &cobra.Command{
		Use:   "dot [tasks.json]",
		Short: "Export a task dependency graph as Graphviz DOT or SVG",
		Long: `Export a task dependency graph as Graphviz DOT, or as SVG with --svg.

Critical path tasks and dependencies are highlighted. Dependencies that are
not finish-to-start, or that carry a lag, are labeled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readTasks(args[0], cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("load tasks %s: %w", args[0], err)
			}
			dir, err := layout.ParseDirection(direction)
			if err != nil {
				return err
			}

			g, report := graph.Build(doc.Tasks, doc.Sections)
			for _, e := range transform.BreakCycles(g) {
				c.Logger.Warn("ignoring cyclic dependency", "source", e.From, "target", e.To)
			}
			if !report.Empty() {
				c.Logger.Warn("incomplete task data",
					"missing", len(report.MissingDependencies),
					"skipped", len(report.SkippedDependencies),
					"bad_tasks", len(report.SkippedTasks))
			}

			opts := nodelink.Options{Direction: dir, Sections: sections, Detailed: detailed}
			if !noCritical {
				opts.CriticalPath = transform.CriticalPath(g)
			}
			data := []byte(nodelink.ToDOT(g, opts))

			if svg {
				spinner := newSpinnerWithContext(cmd.Context(), "Rendering SVG...")
				spinner.Start()
				data, err = nodelink.RenderSVG(cmd.Context(), string(data))
				spinner.Stop()
				if err != nil {
					return fmt.Errorf("render svg: %w", err)
				}
			}
			return writeOutput(cmd.OutOrStdout(), output, data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&direction, "direction", "d", "LR", "rankdir: LR, RL, TB, BT")
	cmd.Flags().BoolVar(&svg, "svg", false, "render SVG with the embedded Graphviz")
	cmd.Flags().BoolVar(&sections, "sections", false, "group tasks into one cluster per section")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include scheduling fields in node labels")
	cmd.Flags().BoolVar(&noCritical, "no-critical", false, "do not highlight the critical path")

	return cmd
}

// writeOutput writes data to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	printFile(path)
	return nil
}
