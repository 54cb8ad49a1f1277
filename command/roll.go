package command

import (
	"strings"

	"github.com/supersonicads/spotcli/elastigroup"
	"github.com/supersonicads/spotcli/task"
)

type RollCommand struct {
	Meta

	flagBatch string
	flagGrace string
}

// Help should return long-form help text that includes the command-line
// usage, a brief few sentences explaining the function of the command,
// and the complete list of flags the command accepts.
func (c *RollCommand) Help() string {
	helpText := `
Usage: spotcli roll [options] <target>...

  Rolls every elastigroup matched by the given targets, replacing its
  instances batch by batch. A target is a case-insensitive regular
  expression matched against group names, or the name of a configured
  alias.

  The roll is confirmed against the resolved group list before anything
  is touched, unless -auto-approve is given.

Options:

  -batch=<size>
    The portion of the group to replace per batch, either a percentage
    such as 20% or an absolute number of instances. The default is ` + elastigroup.DefaultRollBatch + `.

  -grace=<period>
    The healing window granted to each batch, either a duration such as
    5m or a number of seconds. The default is ` + elastigroup.DefaultRollGrace + `.

  -auto-approve
    Skip the interactive confirmation. The default is false.
` + generalOptionsUsage

	return strings.TrimSpace(helpText)
}

// Synopsis should return a one-line, short synopsis of the command.
// This should be less than 50 characters ideally.
func (c *RollCommand) Synopsis() string {
	return "Rolls the instances of matched elastigroups"
}

// Run should run the actual command with the given CLI instance and
// command-line arguments. It should return the exit status when it is
// finished.
func (c *RollCommand) Run(args []string) int {
	flags := c.flagSet("roll")
	flags.Usage = func() { c.Ui.Output(c.Help()) }
	flags.StringVar(&c.flagBatch, "batch", elastigroup.DefaultRollBatch, "")
	flags.StringVar(&c.flagGrace, "grace", elastigroup.DefaultRollGrace, "")
	flags.BoolVar(&c.flagAutoApprove, "auto-approve", false, "")

	if err := flags.Parse(args); err != nil {
		return 1
	}

	rollTask, err := task.New("roll", &task.Options{
		Targets: flags.Args(),
		Batch:   c.flagBatch,
		Grace:   c.flagGrace,
	})
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	return c.runTask(rollTask, describeTask(rollTask))
}
