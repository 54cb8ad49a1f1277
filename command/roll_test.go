package command

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
)

func TestRollCommand(t *testing.T) {
	disableUpdateCheck(t)

	api := newFakeAPI(t)
	api.handle("GET /aws/ec2/group", listingItems()...)
	api.handle("PUT /aws/ec2/group/sig-11111111/roll",
		map[string]interface{}{"id": "sbgd-11111111", "status": "in_progress"})
	api.handle("PUT /aws/ec2/group/sig-22222222/roll",
		map[string]interface{}{"id": "sbgd-22222222", "status": "in_progress"})

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	ui := cli.NewMockUi()
	cmd := &RollCommand{Meta: Meta{Ui: ui, Ctx: context.Background()}}

	code := cmd.Run([]string{
		"-config", testConfigFile(t, srv.URL, ""),
		"-auto-approve",
		"web",
	})
	assert.Equal(t, 0, code, ui.ErrorWriter.String())

	assert.JSONEq(t, `{"batchSizePercentage":20,"gracePeriod":300}`,
		api.lastBody("PUT /aws/ec2/group/sig-11111111/roll"))
	assert.Equal(t, 1, api.count("PUT /aws/ec2/group/sig-22222222/roll"))

	out := ui.OutputWriter.String()
	assert.Contains(t, out, "web-production")
	assert.Contains(t, out, "web-staging")
	assert.NotContains(t, out, "worker-production")
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "Done in")
}

func TestRollCommand_customBatchAndGrace(t *testing.T) {
	disableUpdateCheck(t)

	api := newFakeAPI(t)
	api.handle("GET /aws/ec2/group", listingItems()...)
	api.handle("PUT /aws/ec2/group/sig-33333333/roll",
		map[string]interface{}{"id": "sbgd-33333333", "status": "in_progress"})

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	ui := cli.NewMockUi()
	cmd := &RollCommand{Meta: Meta{Ui: ui, Ctx: context.Background()}}

	code := cmd.Run([]string{
		"-config", testConfigFile(t, srv.URL, ""),
		"-auto-approve",
		"-batch", "50%",
		"-grace", "90",
		"worker",
	})
	assert.Equal(t, 0, code, ui.ErrorWriter.String())

	assert.JSONEq(t, `{"batchSizePercentage":50,"gracePeriod":90}`,
		api.lastBody("PUT /aws/ec2/group/sig-33333333/roll"))
}

func TestRollCommand_declined(t *testing.T) {
	disableUpdateCheck(t)

	api := newFakeAPI(t)
	api.handle("GET /aws/ec2/group", listingItems()...)

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	ui := cli.NewMockUi()
	ui.InputReader = strings.NewReader("n\n")
	cmd := &RollCommand{Meta: Meta{Ui: ui, Ctx: context.Background()}}

	code := cmd.Run([]string{
		"-config", testConfigFile(t, srv.URL, ""),
		"web",
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, ui.OutputWriter.String(), "Canceled.")
	assert.Equal(t, 0, api.count("PUT /aws/ec2/group/sig-11111111/roll"))
}

func TestRollCommand_noMatches(t *testing.T) {
	disableUpdateCheck(t)

	api := newFakeAPI(t)
	api.handle("GET /aws/ec2/group", listingItems()...)

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	ui := cli.NewMockUi()
	cmd := &RollCommand{Meta: Meta{Ui: ui, Ctx: context.Background()}}

	code := cmd.Run([]string{
		"-config", testConfigFile(t, srv.URL, ""),
		"-auto-approve",
		"database",
	})
	assert.Equal(t, 0, code)
	assert.Contains(t, ui.ErrorWriter.String(), "No groups matched")
}

func TestRollCommand_missingTargets(t *testing.T) {
	ui := cli.NewMockUi()
	cmd := &RollCommand{Meta: Meta{Ui: ui, Ctx: context.Background()}}

	code := cmd.Run([]string{"-auto-approve"})
	assert.Equal(t, 1, code)
	assert.Contains(t, ui.ErrorWriter.String(), "tasks require at least one target")
}

func TestRollCommand_aliasTarget(t *testing.T) {
	disableUpdateCheck(t)

	api := newFakeAPI(t)
	api.handle("GET /aws/ec2/group", listingItems()...)
	api.handle("PUT /aws/ec2/group/sig-11111111/roll",
		map[string]interface{}{"id": "sbgd-11111111", "status": "in_progress"})

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	extra := `
alias "frontend" {
  targets = ["^web-production$"]
}
`
	ui := cli.NewMockUi()
	cmd := &RollCommand{Meta: Meta{Ui: ui, Ctx: context.Background()}}

	code := cmd.Run([]string{
		"-config", testConfigFile(t, srv.URL, extra),
		"-auto-approve",
		"frontend",
	})
	assert.Equal(t, 0, code, ui.ErrorWriter.String())
	assert.Equal(t, 1, api.count("PUT /aws/ec2/group/sig-11111111/roll"))
	assert.Equal(t, 0, api.count("PUT /aws/ec2/group/sig-22222222/roll"))
}
