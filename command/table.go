package command

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/supersonicads/spotcli/config"
	"github.com/supersonicads/spotcli/elastigroup"
	"github.com/supersonicads/spotcli/sdk/helper/ptr"
	"github.com/supersonicads/spotcli/task"
)

// newTable returns a tabwriter around buf with the settings every table
// rendered by the CLI shares.
func newTable(buf *bytes.Buffer) *tabwriter.Writer {
	return tabwriter.NewWriter(buf, 0, 2, 2, ' ', 0)
}

// renderGroups formats the resolved groups as an ID and name table.
func renderGroups(groups []*elastigroup.Group) string {
	var buf bytes.Buffer

	w := newTable(&buf)
	fmt.Fprintln(w, "ID\tName")
	for _, group := range groups {
		fmt.Fprintf(w, "%s\t%s\n", group.ID(), group.Name())
	}
	w.Flush()

	return buf.String()
}

// renderOutcomes formats the per-group results of a run and counts how many
// of them failed.
func renderOutcomes(outcomes []*task.Outcome) (string, int) {
	var failures int
	var buf bytes.Buffer

	w := newTable(&buf)
	fmt.Fprintln(w, "Group\tAction\tResult")
	for _, outcome := range outcomes {
		result := color.GreenString("ok")
		if !outcome.Success() {
			failures++
			result = color.RedString("failed: %v", outcome.Err)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", outcome.GroupName, outcome.Action, result)
	}
	w.Flush()

	return buf.String(), failures
}

// renderStatuses formats the capacity of each group as one table.
func renderStatuses(statuses []*elastigroup.Status) string {
	var buf bytes.Buffer

	w := newTable(&buf)
	fmt.Fprintln(w, "ID\tName\tMin\tTarget\tMax")
	for _, status := range statuses {
		var minCap, targetCap, maxCap int
		if status.Capacity != nil {
			minCap = ptr.PtrToInt(status.Capacity.Minimum)
			targetCap = ptr.PtrToInt(status.Capacity.Target)
			maxCap = ptr.PtrToInt(status.Capacity.Maximum)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
			status.ID, status.Name, minCap, targetCap, maxCap)
	}
	w.Flush()

	return buf.String()
}

// renderProcesses formats the suspension state of every process of one group.
// Processes are listed in the fixed order of elastigroup.Processes.
func renderProcesses(status *elastigroup.Status) string {
	var buf bytes.Buffer

	w := newTable(&buf)
	fmt.Fprintln(w, "Process\tState")
	for _, process := range elastigroup.Processes() {
		state := status.Processes[process]
		if state == "suspended" {
			state = color.YellowString(state)
		}
		fmt.Fprintf(w, "%s\t%s\n", process, state)
	}
	w.Flush()

	return buf.String()
}

// renderAliases formats the configured aliases sorted by name.
func renderAliases(aliases []*config.Alias) string {
	sorted := make([]*config.Alias, len(aliases))
	copy(sorted, aliases)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var buf bytes.Buffer

	w := newTable(&buf)
	fmt.Fprintln(w, "Alias\tTargets")
	for _, alias := range sorted {
		fmt.Fprintf(w, "%s\t%s\n", alias.Name, strings.Join(alias.Targets, ", "))
	}
	w.Flush()

	return buf.String()
}

// renderScenarios formats the configured scenarios sorted by name.
func renderScenarios(scenarios []*config.Scenario) string {
	sorted := make([]*config.Scenario, len(scenarios))
	copy(sorted, scenarios)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var buf bytes.Buffer

	w := newTable(&buf)
	fmt.Fprintln(w, "Scenario\tTasks\tDescription")
	for _, scenario := range sorted {
		fmt.Fprintf(w, "%s\t%d\t%s\n", scenario.Name, len(scenario.Tasks), scenario.Description)
	}
	w.Flush()

	return buf.String()
}

// renderPlan formats the steps of a scenario in their run order.
func renderPlan(tasks []*task.Task) string {
	var buf bytes.Buffer

	w := newTable(&buf)
	fmt.Fprintln(w, "Step\tAction\tTargets")
	for i, t := range tasks {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, describeTask(t), strings.Join(t.Targets, ", "))
	}
	w.Flush()

	return buf.String()
}

// describeTask builds the human readable action of a task, the same string
// the confirmation prompts use.
func describeTask(t *task.Task) string {
	switch t.Kind {
	case task.KindRoll:
		batch := t.Batch
		if batch == "" {
			batch = elastigroup.DefaultRollBatch
		}
		grace := t.Grace
		if grace == "" {
			grace = elastigroup.DefaultRollGrace
		}
		return fmt.Sprintf("roll (batch %s, grace %s)", batch, grace)
	case task.KindUpscale:
		return fmt.Sprintf("scale up by %s", t.Amount)
	case task.KindDownscale:
		return fmt.Sprintf("scale down by %s", t.Amount)
	case task.KindSuspend, task.KindUnsuspend:
		names := make([]string, len(t.Processes))
		for i, process := range t.Processes {
			names[i] = string(process)
		}
		return fmt.Sprintf("%s %s", t.Kind, strings.Join(names, ", "))
	default:
		return string(t.Kind)
	}
}
