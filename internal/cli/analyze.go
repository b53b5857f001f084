package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taskflow/pkg/dag"
	"github.com/matzehuels/taskflow/pkg/dag/transform"
	"github.com/matzehuels/taskflow/pkg/errors"
	"github.com/matzehuels/taskflow/pkg/graph"
)

// criticalCommand creates the critical command that prints the longest
// dependency chain.
func (c *CLI) criticalCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "critical [tasks.json]",
		Short: "Print the critical path of a task dependency graph",
		Long: `Print the critical path: the longest chain of dependent tasks, from a task
with no predecessors to a task with no successors. Length is counted in
dependencies; durations are not taken into account.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readTasks(args[0], cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("load tasks %s: %w", args[0], err)
			}
			g, _ := graph.Build(doc.Tasks, doc.Sections)
			for _, e := range transform.BreakCycles(g) {
				c.Logger.Warn("ignoring cyclic dependency", "source", e.From, "target", e.To)
			}
			return writeCriticalPath(cmd.OutOrStdout(), g, transform.CriticalPath(g), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the path as a JSON array of task IDs")

	return cmd
}

func writeCriticalPath(w io.Writer, g *dag.DAG, path []string, asJSON bool) error {
	if asJSON {
		if path == nil {
			path = []string{}
		}
		return json.NewEncoder(w).Encode(path)
	}
	if len(path) == 0 {
		_, err := fmt.Fprintln(w, StyleDim.Render("no tasks"))
		return err
	}
	labels := make([]string, len(path))
	for i, id := range path {
		labels[i] = StyleHighlight.Render(id)
		if n, ok := g.Node(id); ok {
			if name, _ := n.Meta[graph.MetaName].(string); name != "" && name != id {
				labels[i] += StyleDim.Render(" (" + name + ")")
			}
		}
	}
	sep := " " + StyleDim.Render(iconArrow) + " "
	if _, err := fmt.Fprintln(w, strings.Join(labels, sep)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%d tasks, %d dependencies", len(path), len(path)-1)))
	return err
}

// checkCommand creates the check command that validates task data.
func (c *CLI) checkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [tasks.json] [SOURCE TARGET]",
		Short: "Validate the dependencies of a task document",
		Long: `Validate the dependencies of a task document.

With SOURCE and TARGET, check instead asks whether the dependency
SOURCE → TARGET could be added, and exits with status 1 if it would be
rejected.

Problems (exit status 1):
  - tasks with an empty or repeated ID
  - dependencies on tasks that do not exist
  - dependency cycles

Hints:
  - self and repeated dependencies, which are ignored
  - redundant dependencies already implied by a longer chain`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 && len(args) != 3 {
				return fmt.Errorf("accepts a task file, optionally followed by SOURCE and TARGET; received %d args", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readTasks(args[0], cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("load tasks %s: %w", args[0], err)
			}
			if len(args) == 3 {
				return checkProposal(cmd.OutOrStdout(), doc, args[1], args[2])
			}
			res := checkTasks(doc)
			res.write(cmd.OutOrStdout())
			if n := res.problems(); n > 0 {
				return errors.New(errors.ErrCodeInvalidInput, "%d problem(s) found", n)
			}
			return nil
		},
	}

	return cmd
}

// checkProposal prints the validator's verdict on a proposed dependency.
func checkProposal(w io.Writer, doc graph.Document, source, target string) error {
	g, _ := graph.Build(doc.Tasks, doc.Sections)
	transform.BreakCycles(g)
	for _, id := range []string{source, target} {
		if _, ok := g.Node(id); !ok {
			return errors.New(errors.ErrCodeNodeNotFound, "task %q not found", id)
		}
	}

	v := dag.Validate(source, target, g.Edges())
	if v.Valid {
		fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf("%s %s %s can be added", source, iconArrow, target))
		return nil
	}
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf("%s %s %s rejected: %s", source, iconArrow, target, v.Reason))
	return errors.New(errors.ErrCodeInvalidInput, "dependency rejected: %s", v.Reason)
}

// checkResult collects the findings of checkTasks.
type checkResult struct {
	tasks     int
	report    graph.BuildReport
	cycles    []dag.Edge
	redundant []dag.Edge
}

func checkTasks(doc graph.Document) checkResult {
	g, report := graph.Build(doc.Tasks, doc.Sections)
	res := checkResult{tasks: g.NodeCount(), report: report}
	res.cycles = transform.BreakCycles(g)
	res.redundant = transform.RedundantEdges(g)
	return res
}

func (r checkResult) problems() int {
	return len(r.report.SkippedTasks) + len(r.report.MissingDependencies) + len(r.cycles)
}

func (r checkResult) write(w io.Writer) {
	problem := func(format string, args ...any) {
		fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
	}
	hint := func(format string, args ...any) {
		fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+fmt.Sprintf(format, args...))
	}

	for _, id := range r.report.SkippedTasks {
		if id == "" {
			problem("task with empty ID")
			continue
		}
		problem("task %q is invalid or listed twice", id)
	}
	for _, d := range r.report.MissingDependencies {
		problem("%s depends on unknown task %s", d.ToTaskID, d.FromTaskID)
	}
	for _, e := range r.cycles {
		problem("dependency %s %s %s closes a cycle", e.From, iconArrow, e.To)
	}
	for _, d := range r.report.SkippedDependencies {
		if d.FromTaskID == d.ToTaskID {
			hint("%s depends on itself", d.ToTaskID)
			continue
		}
		hint("%s lists %s more than once", d.ToTaskID, d.FromTaskID)
	}
	for _, e := range r.redundant {
		hint("dependency %s %s %s is implied by a longer chain", e.From, iconArrow, e.To)
	}

	if r.problems() == 0 {
		fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf("%d tasks, no problems", r.tasks))
	}
}
