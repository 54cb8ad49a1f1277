// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"fmt"

	"github.com/supersonicads/spotcli/version"
)

type VersionCommand struct {
	Meta
}

func (c *VersionCommand) Help() string {
	return ""
}

func (c *VersionCommand) Run(_ []string) int {
	c.Ui.Output(fmt.Sprintf("SpotCLI %s", version.GetHumanVersion()))

	if latest, ok := version.CheckForUpdate(); ok {
		c.Ui.Warn(fmt.Sprintf("A new version of SpotCLI is available: %s", latest))
	}
	return 0
}

func (c *VersionCommand) Synopsis() string {
	return "Prints the SpotCLI version"
}
