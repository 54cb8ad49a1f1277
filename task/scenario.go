package task

import (
	"context"
	"fmt"
)

// Scenario is a named sequence of tasks run strictly in order.
type Scenario struct {
	Name        string
	Description string
	Tasks       []*Task
}

// RunScenario executes the tasks of the scenario one after another, each
// completing fully before the next starts. Unit failures within a task are
// recorded in the outcomes and do not stop the run; a task that fails to
// resolve its targets does, returning the outcomes gathered so far alongside
// the error.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]*Outcome, error) {
	logger := r.logger.With("scenario", scenario.Name)

	var outcomes []*Outcome
	for i, task := range scenario.Tasks {
		logger.Info("running scenario task", "task", i+1, "of", len(scenario.Tasks), "kind", task.Kind)

		taskOutcomes, err := r.Run(ctx, task)
		outcomes = append(outcomes, taskOutcomes...)
		if err != nil {
			return outcomes, fmt.Errorf("scenario %s task %d: %w", scenario.Name, i+1, err)
		}
	}
	return outcomes, nil
}
