package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	metrics "github.com/armon/go-metrics"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/supersonicads/spotcli/elastigroup"
)

// DefaultWorkers is the number of concurrent workers a runner uses when the
// configuration does not specify one.
const DefaultWorkers = 32

// Outcome is the result of one action on one group.
type Outcome struct {
	GroupID   string
	GroupName string
	Action    string
	Err       error
}

// Success reports whether the action completed without error.
func (o *Outcome) Success() bool { return o.Err == nil }

// RunnerConfig holds the dependencies of a Runner.
type RunnerConfig struct {
	Logger    hclog.Logger
	Aliases   Aliases
	Directory *elastigroup.Directory

	// Workers bounds the concurrency of a run. Zero or negative picks
	// DefaultWorkers.
	Workers int
}

// Runner resolves task targets and executes tasks across them.
type Runner struct {
	logger    hclog.Logger
	aliases   Aliases
	directory *elastigroup.Directory
	workers   int
}

// NewRunner returns a Runner ready to execute tasks.
func NewRunner(cfg *RunnerConfig) *Runner {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{
		logger:    cfg.Logger.Named("task"),
		aliases:   cfg.Aliases,
		directory: cfg.Directory,
		workers:   workers,
	}
}

// ResolveTargets expands aliases in the tokens and resolves each resulting
// pattern against the directory. A group matched by several patterns
// appears once per pattern.
func (r *Runner) ResolveTargets(ctx context.Context, tokens []string) ([]*elastigroup.Group, error) {
	patterns, err := r.aliases.Flatten(tokens)
	if err != nil {
		return nil, err
	}

	var groups []*elastigroup.Group
	for _, pattern := range patterns {
		matched, err := r.directory.Find(ctx, []string{pattern})
		if err != nil {
			return nil, err
		}
		groups = append(groups, matched...)
	}
	return groups, nil
}

// Run resolves the targets of the task and executes it.
func (r *Runner) Run(ctx context.Context, task *Task) ([]*Outcome, error) {
	groups, err := r.ResolveTargets(ctx, task.Targets)
	if err != nil {
		return nil, err
	}
	return r.Execute(ctx, task, groups), nil
}

// unit is one group/action pair of a task. Suspend and unsuspend tasks
// produce one unit per group and process, everything else one per group.
type unit struct {
	group   *elastigroup.Group
	process elastigroup.Process
}

// Execute runs the task against the given groups, fanning the work units
// out across the worker pool and waiting for all of them. One outcome is
// returned per unit in stable order; failures are recorded, not fatal.
func (r *Runner) Execute(ctx context.Context, task *Task, groups []*elastigroup.Group) []*Outcome {

	units := buildUnits(task, groups)
	if len(units) == 0 {
		return nil
	}

	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID, "task_kind", task.Kind)
	logger.Debug("executing task", "groups", len(groups), "units", len(units))

	outcomes := make([]*Outcome, len(units))

	workers := r.workers
	if len(units) < workers {
		workers = len(units)
	}

	queue := make(chan int, len(units))

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range queue {
				outcomes[i] = r.runUnit(ctx, logger, task, units[i])
			}
		}()
	}

	for i := range units {
		queue <- i
	}
	close(queue)
	wg.Wait()

	return outcomes
}

func buildUnits(task *Task, groups []*elastigroup.Group) []unit {
	var units []unit

	switch task.Kind {
	case KindSuspend, KindUnsuspend:
		for _, group := range groups {
			for _, process := range task.Processes {
				units = append(units, unit{group: group, process: process})
			}
		}
	default:
		for _, group := range groups {
			units = append(units, unit{group: group})
		}
	}
	return units
}

func (r *Runner) runUnit(ctx context.Context, logger hclog.Logger, task *Task, u unit) *Outcome {

	outcome := &Outcome{
		GroupID:   u.group.ID(),
		GroupName: u.group.Name(),
		Action:    actionName(task.Kind, u.process),
	}

	labels := []metrics.Label{{Name: "kind", Value: string(task.Kind)}}
	defer metrics.MeasureSinceWithLabels([]string{"task", "unit", "duration"}, time.Now(), labels)

	var err error
	switch task.Kind {
	case KindRoll:
		_, err = u.group.Roll(ctx, task.Batch, task.Grace)
	case KindUpscale:
		err = u.group.ScaleUp(ctx, task.Amount)
	case KindDownscale:
		err = u.group.ScaleDown(ctx, task.Amount)
	case KindSuspend:
		err = u.group.Suspend(ctx, u.process)
	case KindUnsuspend:
		err = u.group.Unsuspend(ctx, u.process)
	}

	if err != nil {
		metrics.IncrCounterWithLabels([]string{"task", "unit", "failure"}, 1, labels)
		logger.Error("task unit failed", "group_name", u.group.Name(), "action", outcome.Action, "error", err)
		outcome.Err = err
		return outcome
	}

	metrics.IncrCounterWithLabels([]string{"task", "unit", "success"}, 1, labels)
	logger.Debug("task unit finished", "group_name", u.group.Name(), "action", outcome.Action)
	return outcome
}

func actionName(kind Kind, process elastigroup.Process) string {
	switch kind {
	case KindRoll:
		return "roll"
	case KindUpscale:
		return "scale up"
	case KindDownscale:
		return "scale down"
	case KindSuspend:
		return fmt.Sprintf("suspend %s", process)
	case KindUnsuspend:
		return fmt.Sprintf("unsuspend %s", process)
	}
	return string(kind)
}
