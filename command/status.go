package command

import (
	"fmt"
	"strings"

	"github.com/supersonicads/spotcli/elastigroup"
)

type StatusCommand struct {
	Meta

	flagProcesses bool
}

func (c *StatusCommand) Help() string {
	helpText := `
Usage: spotcli status [options] <target>...

  Shows the capacity of every elastigroup matched by the given targets.
  A target is a case-insensitive regular expression matched against
  group names, or the name of a configured alias.

Options:

  -processes
    Also show the suspension state of every group process. The default
    is false.
` + generalOptionsUsage

	return strings.TrimSpace(helpText)
}

func (c *StatusCommand) Synopsis() string {
	return "Shows the state of matched elastigroups"
}

func (c *StatusCommand) Run(args []string) int {
	flags := c.flagSet("status")
	flags.Usage = func() { c.Ui.Output(c.Help()) }
	flags.BoolVar(&c.flagProcesses, "processes", false, "")

	if err := flags.Parse(args); err != nil {
		return 1
	}

	targets := flags.Args()
	if len(targets) == 0 {
		c.Ui.Error("The status command requires at least one target.")
		return 1
	}

	c.banner()

	cfg, logger, err := c.setup(c.Ctx)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Failed to load configuration: %v", err))
		return 1
	}

	client, err := c.client(cfg, logger)
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}
	runner := c.runner(cfg, client, logger)

	groups, err := runner.ResolveTargets(c.Ctx, targets)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Failed to resolve targets: %v", err))
		return 1
	}
	if len(groups) == 0 {
		c.Ui.Warn("No groups matched the given targets.")
		return 0
	}

	exit := 0

	statuses := make([]*elastigroup.Status, 0, len(groups))
	for _, group := range groups {
		status, err := group.Status(c.Ctx)
		if err != nil {
			c.Ui.Error(fmt.Sprintf("Failed to read status of group %s: %v", group.Name(), err))
			exit = 1
			continue
		}
		statuses = append(statuses, status)
	}

	c.Ui.Output(renderStatuses(statuses))

	if c.flagProcesses {
		for _, status := range statuses {
			c.Ui.Output(fmt.Sprintf("Processes of %s:", status.Name))
			c.Ui.Output(renderProcesses(status))
		}
	}

	return exit
}
