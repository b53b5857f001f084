package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taskflow/pkg/graph"
	"github.com/matzehuels/taskflow/pkg/session"
)

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [tasks.json]",
		Short: "Compute node positions for a task dependency graph",
		Long: `Compute node positions for a task dependency graph.

The layout command reads a task document, builds the dependency graph and
places every task. The leveled strategy puts each task one column after its
latest predecessor; the layered strategy hands ranking and crossing
reduction to Graphviz. The result is written as JSON to <input>.layout.json,
or to stdout with -o -.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], cmd.InOrStdin(), cmd.OutOrStdout(), flags, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

// runLayout loads the tasks, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, in io.Reader, out io.Writer, flags layoutFlags, output string) error {
	doc, err := readTasks(input, in)
	if err != nil {
		return fmt.Errorf("load tasks %s: %w", input, err)
	}

	opts, ch, err := c.sessionOptions(ctx, flags)
	if err != nil {
		return err
	}
	defer ch.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	s, report, err := session.FromTasks(ctx, doc.Tasks, doc.Sections, opts...)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Laid out %d tasks", len(s.Layout().Nodes)))

	data, err := json.MarshalIndent(s.Layout(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	data = append(data, '\n')

	if output == "-" || (output == "" && input == "-") {
		_, err := out.Write(data)
		return err
	}
	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	g := s.Graph()
	printStats(g.NodeCount(), g.EdgeCount(), s.Strategy().Name())
	printReport(report)
	printNewline()
	printNextStep("Export", appName+" dot --svg "+input)

	return nil
}

// printReport warns about task data that did not make it into the graph.
func printReport(r graph.BuildReport) {
	if r.Empty() {
		return
	}
	for _, d := range r.MissingDependencies {
		printWarning("%s depends on unknown task %s", d.ToTaskID, d.FromTaskID)
	}
	for _, d := range r.SkippedDependencies {
		printWarning("skipped dependency %s %s %s", d.FromTaskID, iconArrow, d.ToTaskID)
	}
	for _, id := range r.SkippedTasks {
		printWarning("skipped task %q", id)
	}
}
