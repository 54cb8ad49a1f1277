package command

import (
	"fmt"
	"strings"
)

type ListCommand struct {
	Meta
}

func (c *ListCommand) Help() string {
	helpText := `
Usage: spotcli list <aliases|scenarios> [options]

  Lists the aliases or the scenarios defined across the configuration,
  including everything pulled in from remote sources.

Options:
` + generalOptionsUsage

	return strings.TrimSpace(helpText)
}

func (c *ListCommand) Synopsis() string {
	return "Lists configured aliases or scenarios"
}

func (c *ListCommand) Run(args []string) int {
	flags := c.flagSet("list")
	flags.Usage = func() { c.Ui.Output(c.Help()) }

	if err := flags.Parse(args); err != nil {
		return 1
	}

	args = flags.Args()
	if len(args) != 1 {
		c.Ui.Error("The list command requires exactly one argument: <aliases|scenarios>.")
		return 1
	}

	cfg, _, err := c.setup(c.Ctx)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Failed to load configuration: %v", err))
		return 1
	}

	switch args[0] {
	case "aliases":
		c.Ui.Output(renderAliases(cfg.Aliases))
	case "scenarios":
		c.Ui.Output(renderScenarios(cfg.Scenarios))
	default:
		c.Ui.Error(fmt.Sprintf("Invalid argument %q, expected aliases or scenarios.", args[0]))
		return 1
	}

	return 0
}
