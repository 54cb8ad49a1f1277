package command

import (
	"strings"

	flaghelper "github.com/supersonicads/spotcli/sdk/helper/flag"
	"github.com/supersonicads/spotcli/task"
)

type UnsuspendCommand struct {
	Meta

	flagProcesses []string
}

func (c *UnsuspendCommand) Help() string {
	helpText := `
Usage: spotcli unsuspend [options] <target>...

  Resumes one or more suspended processes on every elastigroup matched
  by the given targets. A target is a case-insensitive regular
  expression matched against group names, or the name of a configured
  alias.

  Valid processes are ` + processList() + `.
  The AUTO_SCALE_UP and AUTO_SCALE_DOWN processes act on the scaling
  policies of the matching direction rather than on the group itself.

Options:

  -process=<name>
    The process to resume. Can be specified multiple times.

  -auto-approve
    Skip the interactive confirmation. The default is false.
` + generalOptionsUsage

	return strings.TrimSpace(helpText)
}

func (c *UnsuspendCommand) Synopsis() string {
	return "Resumes suspended processes of matched elastigroups"
}

func (c *UnsuspendCommand) Run(args []string) int {
	flags := c.flagSet("unsuspend")
	flags.Usage = func() { c.Ui.Output(c.Help()) }
	flags.Var((*flaghelper.StringFlag)(&c.flagProcesses), "process", "")
	flags.BoolVar(&c.flagAutoApprove, "auto-approve", false, "")

	if err := flags.Parse(args); err != nil {
		return 1
	}

	unsuspendTask, err := task.New("unsuspend", &task.Options{
		Targets:   flags.Args(),
		Processes: c.flagProcesses,
	})
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	return c.runTask(unsuspendTask, describeTask(unsuspendTask))
}
