package command

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
)

const listConfig = `
alias "frontend" {
  targets = ["web", "cdn"]
}

alias "backend" {
  targets = ["worker"]
}

scenario "pre-deploy" {
  description = "Quiesce scaling before a deploy."

  task {
    kind      = "suspend"
    targets   = ["frontend"]
    processes = ["AUTO_SCALE_DOWN"]
  }
}
`

func TestListCommand_aliases(t *testing.T) {
	disableUpdateCheck(t)

	ui := cli.NewMockUi()
	cmd := &ListCommand{Meta: Meta{Ui: ui, Ctx: context.Background()}}

	code := cmd.Run([]string{
		"-config", testConfigFile(t, "https://api.test", listConfig),
		"aliases",
	})
	assert.Equal(t, 0, code, ui.ErrorWriter.String())

	out := ui.OutputWriter.String()
	assert.Regexp(t, regexp.MustCompile(`backend\s+worker`), out)
	assert.Regexp(t, regexp.MustCompile(`frontend\s+web, cdn`), out)

	// Sorted by name, so backend is printed first.
	assert.Less(t, strings.Index(out, "backend"), strings.Index(out, "frontend"))
}

func TestListCommand_scenarios(t *testing.T) {
	disableUpdateCheck(t)

	ui := cli.NewMockUi()
	cmd := &ListCommand{Meta: Meta{Ui: ui, Ctx: context.Background()}}

	code := cmd.Run([]string{
		"-config", testConfigFile(t, "https://api.test", listConfig),
		"scenarios",
	})
	assert.Equal(t, 0, code, ui.ErrorWriter.String())

	out := ui.OutputWriter.String()
	assert.Regexp(t, regexp.MustCompile(`pre-deploy\s+1\s+Quiesce scaling before a deploy.`), out)
}

func TestListCommand_badArgument(t *testing.T) {
	disableUpdateCheck(t)

	testCases := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "no argument",
			args:     nil,
			expected: "requires exactly one argument",
		},
		{
			name:     "unknown argument",
			args:     []string{"tasks"},
			expected: `Invalid argument "tasks"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ui := cli.NewMockUi()
			cmd := &ListCommand{Meta: Meta{Ui: ui, Ctx: context.Background()}}

			args := append([]string{"-config", testConfigFile(t, "https://api.test", "")}, tc.args...)

			code := cmd.Run(args)
			assert.Equal(t, 1, code, tc.name)
			assert.Contains(t, ui.ErrorWriter.String(), tc.expected, tc.name)
		})
	}
}
