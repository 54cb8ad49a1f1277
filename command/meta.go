package command

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	metrics "github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/supersonicads/spotcli/config"
	"github.com/supersonicads/spotcli/elastigroup"
	"github.com/supersonicads/spotcli/spot"
	"github.com/supersonicads/spotcli/task"
	"github.com/supersonicads/spotcli/version"
)

const (
	// envAccount and envToken supply Spot credentials when the
	// configuration files do not carry them.
	envAccount = "SPOT_ACCOUNT"
	envToken   = "SPOT_TOKEN"
)

// setupTelemetryOnce guards the global metrics sink, which can only be
// installed once per process.
var setupTelemetryOnce sync.Once

// Meta contains the state shared by all commands: the UI to talk to the
// operator, the process context and the values of the common flags.
type Meta struct {
	Ui  cli.Ui
	Ctx context.Context

	flagConfig      string
	flagLogLevel    string
	flagLogJSON     bool
	flagAutoApprove bool
}

// flagSet returns a flag set carrying the flags common to every command.
// Commands register their own flags on top before parsing.
func (m *Meta) flagSet(name string) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.StringVar(&m.flagConfig, "config", config.DefaultConfigPath, "")
	flags.StringVar(&m.flagLogLevel, "log-level", "", "")
	flags.BoolVar(&m.flagLogJSON, "log-json", false, "")
	return flags
}

// setup loads the layered configuration and builds the logger from it. Flag
// values override whatever the files and sources set.
func (m *Meta) setup(ctx context.Context) (*config.Config, hclog.Logger, error) {
	cfg, err := config.LoadWithSources(ctx, m.flagConfig)
	if err != nil {
		return nil, nil, err
	}

	cfg = cfg.Merge(&config.Config{
		LogLevel: m.flagLogLevel,
		LogJson:  m.flagLogJSON,
	})

	logger := hclog.NewInterceptLogger(&hclog.LoggerOptions{
		Name:       "spotcli",
		Level:      hclog.LevelFromString(cfg.LogLevel),
		JSONFormat: cfg.LogJson,
	})

	if err := setupTelemetry(); err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}

// setupTelemetry initializes the global metrics sink. Metrics aggregate in 10
// second intervals for 1 minute and are dumped over stderr on SIGUSR1.
func setupTelemetry() error {
	var err error

	setupTelemetryOnce.Do(func() {
		inm := metrics.NewInmemSink(10*time.Second, time.Minute)
		metrics.DefaultInmemSignal(inm)

		metricsConf := metrics.DefaultConfig("spotcli")
		metricsConf.EnableHostname = false

		if _, gErr := metrics.NewGlobal(metricsConf, inm); gErr != nil {
			err = fmt.Errorf("failed to setup global metrics sink: %v", gErr)
		}
	})
	return err
}

// client builds the Spot API client, letting the environment supply the
// credentials the configuration did not.
func (m *Meta) client(cfg *config.Config, logger hclog.Logger) (*spot.Client, error) {
	account := cfg.Spot.Account
	if account == "" {
		account = os.Getenv(envAccount)
	}

	token := cfg.Spot.Token
	if token == "" {
		token = os.Getenv(envToken)
	}

	return spot.NewClient(&spot.Config{
		Address:   cfg.Spot.Address,
		Account:   account,
		Token:     token,
		RateLimit: cfg.Spot.RateLimit,
		Logger:    logger,
	})
}

// runner builds the task runner the action commands hand their work to.
func (m *Meta) runner(cfg *config.Config, client *spot.Client, logger hclog.Logger) *task.Runner {
	aliases := make(task.Aliases, len(cfg.Aliases))
	for _, alias := range cfg.Aliases {
		aliases[alias.Name] = alias.Targets
	}

	workers := 0
	if cfg.Runner != nil {
		workers = cfg.Runner.Workers
	}

	return task.NewRunner(&task.RunnerConfig{
		Logger:    logger,
		Aliases:   aliases,
		Directory: elastigroup.NewDirectory(client, logger),
		Workers:   workers,
	})
}

// banner prints the product header and, when a newer release is out, an
// upgrade hint.
func (m *Meta) banner() {
	m.Ui.Output(fmt.Sprintf("SpotCLI %s", version.GetHumanVersion()))

	if latest, ok := version.CheckForUpdate(); ok {
		m.Ui.Warn(fmt.Sprintf("A new version of SpotCLI is available: %s", latest))
	}
	m.Ui.Output("")
}

// confirm shows the operator which groups an action resolved to and asks for
// approval before anything is touched.
func (m *Meta) confirm(groups []*elastigroup.Group, action string) bool {
	m.Ui.Output(fmt.Sprintf("The following groups will be affected by %q:", action))
	m.Ui.Output(renderGroups(groups))
	return m.approve()
}

// approve asks the operator for a yes/no answer unless -auto-approve was
// given. Anything but an explicit yes declines.
func (m *Meta) approve() bool {
	if m.flagAutoApprove {
		return true
	}

	answer, err := m.Ui.Ask("Proceed? [y/N]:")
	if err != nil {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// runTask is the shared body of the action commands: resolve the targets,
// confirm the plan with the operator and execute the task across the matched
// groups.
func (m *Meta) runTask(t *task.Task, action string) int {
	m.banner()

	cfg, logger, err := m.setup(m.Ctx)
	if err != nil {
		m.Ui.Error(fmt.Sprintf("Failed to load configuration: %v", err))
		return 1
	}

	client, err := m.client(cfg, logger)
	if err != nil {
		m.Ui.Error(err.Error())
		return 1
	}
	runner := m.runner(cfg, client, logger)

	groups, err := runner.ResolveTargets(m.Ctx, t.Targets)
	if err != nil {
		m.Ui.Error(fmt.Sprintf("Failed to resolve targets: %v", err))
		return 1
	}
	if len(groups) == 0 {
		m.Ui.Warn("No groups matched the given targets.")
		return 0
	}

	if !m.confirm(groups, action) {
		m.Ui.Output("Canceled.")
		return 1
	}

	start := time.Now()
	outcomes := runner.Execute(m.Ctx, t, groups)
	return m.finish(outcomes, start)
}

// finish renders the outcomes and the closing summary of a run. Individual
// unit failures are reported in the table but do not fail the command.
func (m *Meta) finish(outcomes []*task.Outcome, start time.Time) int {
	table, failures := renderOutcomes(outcomes)
	m.Ui.Output(table)

	if failures > 0 {
		m.Ui.Warn(fmt.Sprintf("%d of %d actions failed.", failures, len(outcomes)))
	}
	m.Ui.Output(fmt.Sprintf("Done in %s.", time.Since(start).Round(time.Millisecond)))
	return 0
}

// generalOptionsUsage documents the flags shared by every command and is
// appended to each command help text.
const generalOptionsUsage = `
  -config=<path>
    The path to a configuration file or a directory of configuration
    files. The default is ~/.spot/config.hcl.

  -log-level=<level>
    Specify the verbosity level of the logs. Valid values include DEBUG,
    INFO, and WARN, in decreasing order of verbosity.

  -log-json
    Output logs in a JSON format. The default is false.
`
