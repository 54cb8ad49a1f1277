package command

import (
	"fmt"
	"strings"

	"github.com/supersonicads/spotcli/elastigroup"
	"github.com/supersonicads/spotcli/task"
)

// ScaleCommand backs both the "scale up" and the "scale down" verb, with
// Direction set at registration.
type ScaleCommand struct {
	Meta

	Direction string

	flagAmount string
}

func (c *ScaleCommand) Help() string {
	helpText := fmt.Sprintf(`
Usage: spotcli scale %[1]s [options] <target>...

  Scales every elastigroup matched by the given targets %[1]s by the
  requested amount. A target is a case-insensitive regular expression
  matched against group names, or the name of a configured alias.

  The operation is confirmed against the resolved group list before
  anything is touched, unless -auto-approve is given.

Options:

  -amount=<amount>
    How many instances to add or remove, either an absolute number such
    as 3 or a percentage of the group target capacity such as 25%%.
    Percentages truncate towards zero, and a group whose adjustment
    resolves to zero is left untouched. The default is %[2]s.

  -auto-approve
    Skip the interactive confirmation. The default is false.
`, c.Direction, elastigroup.DefaultScaleAmount) + generalOptionsUsage

	return strings.TrimSpace(helpText)
}

func (c *ScaleCommand) Synopsis() string {
	return fmt.Sprintf("Scales matched elastigroups %s", c.Direction)
}

func (c *ScaleCommand) Run(args []string) int {
	flags := c.flagSet("scale " + c.Direction)
	flags.Usage = func() { c.Ui.Output(c.Help()) }
	flags.StringVar(&c.flagAmount, "amount", elastigroup.DefaultScaleAmount, "")
	flags.BoolVar(&c.flagAutoApprove, "auto-approve", false, "")

	if err := flags.Parse(args); err != nil {
		return 1
	}

	kind := "upscale"
	if c.Direction == "down" {
		kind = "downscale"
	}

	scaleTask, err := task.New(kind, &task.Options{
		Targets: flags.Args(),
		Amount:  c.flagAmount,
	})
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	return c.runTask(scaleTask, describeTask(scaleTask))
}
