package command

import (
	"strings"

	"github.com/supersonicads/spotcli/elastigroup"
	flaghelper "github.com/supersonicads/spotcli/sdk/helper/flag"
	"github.com/supersonicads/spotcli/task"
)

type SuspendCommand struct {
	Meta

	flagProcesses []string
}

func (c *SuspendCommand) Help() string {
	helpText := `
Usage: spotcli suspend [options] <target>...

  Suspends one or more processes on every elastigroup matched by the
  given targets. A target is a case-insensitive regular expression
  matched against group names, or the name of a configured alias.

  Valid processes are ` + processList() + `.
  The AUTO_SCALE_UP and AUTO_SCALE_DOWN processes act on the scaling
  policies of the matching direction rather than on the group itself.

Options:

  -process=<name>
    The process to suspend. Can be specified multiple times.

  -auto-approve
    Skip the interactive confirmation. The default is false.
` + generalOptionsUsage

	return strings.TrimSpace(helpText)
}

func (c *SuspendCommand) Synopsis() string {
	return "Suspends processes of matched elastigroups"
}

func (c *SuspendCommand) Run(args []string) int {
	flags := c.flagSet("suspend")
	flags.Usage = func() { c.Ui.Output(c.Help()) }
	flags.Var((*flaghelper.StringFlag)(&c.flagProcesses), "process", "")
	flags.BoolVar(&c.flagAutoApprove, "auto-approve", false, "")

	if err := flags.Parse(args); err != nil {
		return 1
	}

	suspendTask, err := task.New("suspend", &task.Options{
		Targets:   flags.Args(),
		Processes: c.flagProcesses,
	})
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	return c.runTask(suspendTask, describeTask(suspendTask))
}

// processList enumerates the known process names for the help texts.
func processList() string {
	processes := elastigroup.Processes()

	names := make([]string, len(processes))
	for i, process := range processes {
		names[i] = string(process)
	}
	return strings.Join(names, ", ")
}
