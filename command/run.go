package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/supersonicads/spotcli/config"
	"github.com/supersonicads/spotcli/task"
)

type RunCommand struct {
	Meta
}

func (c *RunCommand) Help() string {
	helpText := `
Usage: spotcli run [options] <scenario>

  Runs a scenario defined in the configuration: a named sequence of
  tasks executed in order, each task completing across all its groups
  before the next one starts.

  The full plan is shown and confirmed before anything is touched,
  unless -auto-approve is given. A failure on a single group does not
  stop the scenario, but a task whose targets cannot be resolved does.

Options:

  -auto-approve
    Skip the interactive confirmation. The default is false.
` + generalOptionsUsage

	return strings.TrimSpace(helpText)
}

func (c *RunCommand) Synopsis() string {
	return "Runs a configured scenario"
}

func (c *RunCommand) Run(args []string) int {
	flags := c.flagSet("run")
	flags.Usage = func() { c.Ui.Output(c.Help()) }
	flags.BoolVar(&c.flagAutoApprove, "auto-approve", false, "")

	if err := flags.Parse(args); err != nil {
		return 1
	}

	args = flags.Args()
	if len(args) != 1 {
		c.Ui.Error("The run command requires exactly one argument: <scenario>.")
		return 1
	}
	name := args[0]

	c.banner()

	cfg, logger, err := c.setup(c.Ctx)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Failed to load configuration: %v", err))
		return 1
	}

	scenarioCfg := lookupScenario(cfg.Scenarios, name)
	if scenarioCfg == nil {
		c.Ui.Error(fmt.Sprintf("Scenario %q not found in the configuration.", name))
		return 1
	}

	tasks := make([]*task.Task, 0, len(scenarioCfg.Tasks))
	for i, taskCfg := range scenarioCfg.Tasks {
		t, err := task.New(taskCfg.Kind, &task.Options{
			Targets:   taskCfg.Targets,
			Processes: taskCfg.Processes,
			Batch:     taskCfg.Batch,
			Grace:     taskCfg.Grace,
			Amount:    taskCfg.Amount,
		})
		if err != nil {
			c.Ui.Error(fmt.Sprintf("Invalid scenario %q: task %d: %v", name, i+1, err))
			return 1
		}
		tasks = append(tasks, t)
	}

	client, err := c.client(cfg, logger)
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}
	runner := c.runner(cfg, client, logger)

	if scenarioCfg.Description != "" {
		c.Ui.Output(scenarioCfg.Description)
		c.Ui.Output("")
	}
	c.Ui.Output(fmt.Sprintf("Scenario %q will run the following tasks:", name))
	c.Ui.Output(renderPlan(tasks))

	if !c.approve() {
		c.Ui.Output("Canceled.")
		return 1
	}

	start := time.Now()

	outcomes, err := runner.RunScenario(c.Ctx, &task.Scenario{
		Name:        name,
		Description: scenarioCfg.Description,
		Tasks:       tasks,
	})
	if err != nil {
		if len(outcomes) > 0 {
			table, _ := renderOutcomes(outcomes)
			c.Ui.Output(table)
		}
		c.Ui.Error(fmt.Sprintf("Scenario failed: %v", err))
		return 1
	}

	return c.finish(outcomes, start)
}

func lookupScenario(scenarios []*config.Scenario, name string) *config.Scenario {
	for _, scenario := range scenarios {
		if scenario.Name == name {
			return scenario
		}
	}
	return nil
}
