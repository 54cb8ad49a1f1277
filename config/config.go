// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/mitchellh/copystructure"

	"github.com/supersonicads/spotcli/providers"
	"github.com/supersonicads/spotcli/sdk/helper/file"
	"github.com/supersonicads/spotcli/spot"
	"github.com/supersonicads/spotcli/task"
)

const defaultLogLevel = "info"

// Config is the overall configuration of the CLI. It is assembled from
// defaults, the local configuration file, the remote sources that file
// declares and finally the command line flags, each layer merged over the
// previous one.
type Config struct {

	// LogLevel is the level of the logs to emit.
	LogLevel string `hcl:"log_level,optional"`

	// LogJson enables log output in JSON format.
	LogJson bool `hcl:"log_json,optional"`

	// Spot is the configuration used to set up the Spot API client.
	Spot *Spot `hcl:"spot,block"`

	// Runner is the configuration used to set up the task runner.
	Runner *Runner `hcl:"runner,block"`

	Sources   []*Source   `hcl:"source,block"`
	Aliases   []*Alias    `hcl:"alias,block"`
	Scenarios []*Scenario `hcl:"scenario,block"`
}

// Spot holds the user specified configuration for connectivity to the Spot
// API.
type Spot struct {

	// Account is the Spot account to operate on.
	Account string `hcl:"account,optional"`

	// Token is the personal access token used to authenticate.
	Token string `hcl:"token,optional"`

	// Address is the base URL of the Spot API.
	Address string `hcl:"address,optional"`

	// RateLimit caps outbound API requests per second.
	RateLimit int `hcl:"rate_limit,optional"`
}

// Runner holds the user specified configuration of the task runner.
type Runner struct {

	// Workers bounds how many groups are acted on concurrently.
	Workers int `hcl:"workers,optional"`
}

// Source declares a remote location further configuration is loaded from.
type Source struct {
	Name string `hcl:"name,label"`

	// Provider selects the source implementation: file, consul or s3.
	Provider string `hcl:"provider"`

	// Path is the file path, KV key or object key to read.
	Path string `hcl:"path,optional"`

	// Address is the address of the Consul agent to use.
	Address string `hcl:"address,optional"`

	// Token is the Consul ACL token to use.
	Token string `hcl:"token,optional"`

	// Bucket and Region locate the S3 object to read.
	Bucket string `hcl:"bucket,optional"`
	Region string `hcl:"region,optional"`
}

// Alias names a reusable list of target patterns. Targets may refer to other
// aliases.
type Alias struct {
	Name    string   `hcl:"name,label"`
	Targets []string `hcl:"targets"`
}

// Scenario is a named sequence of tasks run in order.
type Scenario struct {
	Name        string  `hcl:"name,label"`
	Description string  `hcl:"description,optional"`
	Tasks       []*Task `hcl:"task,block"`
}

// Task is one step of a scenario.
type Task struct {
	Kind      string   `hcl:"kind"`
	Targets   []string `hcl:"targets"`
	Processes []string `hcl:"processes,optional"`
	Batch     string   `hcl:"batch,optional"`
	Grace     string   `hcl:"grace,optional"`
	Amount    string   `hcl:"amount,optional"`
}

// Default returns the base configuration the other layers merge over.
func Default() *Config {
	return &Config{
		LogLevel: defaultLogLevel,
		Spot: &Spot{
			Address:   spot.DefaultAddress,
			RateLimit: spot.DefaultRateLimit,
		},
		Runner: &Runner{
			Workers: task.DefaultWorkers,
		},
	}
}

// Merge is used to merge two configurations.
func (c *Config) Merge(b *Config) *Config {
	if c == nil {
		return b
	}

	result := *c

	if b.LogLevel != "" {
		result.LogLevel = b.LogLevel
	}
	if b.LogJson {
		result.LogJson = true
	}

	if b.Spot != nil {
		result.Spot = result.Spot.merge(b.Spot)
	}

	if b.Runner != nil {
		result.Runner = result.Runner.merge(b.Runner)
	}

	if len(result.Sources) == 0 && len(b.Sources) != 0 {
		sourceCopy := make([]*Source, len(b.Sources))
		for i, s := range b.Sources {
			sourceCopy[i] = s.copy()
		}
		result.Sources = sourceCopy
	} else if len(b.Sources) != 0 {
		result.Sources = sourceConfigSetMerge(result.Sources, b.Sources)
	}

	if len(result.Aliases) == 0 && len(b.Aliases) != 0 {
		aliasCopy := make([]*Alias, len(b.Aliases))
		for i, a := range b.Aliases {
			aliasCopy[i] = a.copy()
		}
		result.Aliases = aliasCopy
	} else if len(b.Aliases) != 0 {
		result.Aliases = aliasConfigSetMerge(result.Aliases, b.Aliases)
	}

	if len(result.Scenarios) == 0 && len(b.Scenarios) != 0 {
		scenarioCopy := make([]*Scenario, len(b.Scenarios))
		for i, s := range b.Scenarios {
			scenarioCopy[i] = s.copy()
		}
		result.Scenarios = scenarioCopy
	} else if len(b.Scenarios) != 0 {
		result.Scenarios = scenarioConfigSetMerge(result.Scenarios, b.Scenarios)
	}

	return &result
}

// Validate checks the configuration for problems a run would only hit much
// later.
func (c *Config) Validate() error {
	var result *multierror.Error

	for _, s := range c.Sources {
		result = multierror.Append(result, s.validate())
	}
	for _, a := range c.Aliases {
		result = multierror.Append(result, a.validate())
	}
	for _, s := range c.Scenarios {
		result = multierror.Append(result, s.validate())
	}

	return result.ErrorOrNil()
}

func (s *Spot) merge(b *Spot) *Spot {
	if s == nil {
		return b
	}

	result := *s

	if b.Account != "" {
		result.Account = b.Account
	}
	if b.Token != "" {
		result.Token = b.Token
	}
	if b.Address != "" {
		result.Address = b.Address
	}
	if b.RateLimit != 0 {
		result.RateLimit = b.RateLimit
	}

	return &result
}

func (r *Runner) merge(b *Runner) *Runner {
	if r == nil {
		return b
	}

	result := *r

	if b.Workers != 0 {
		result.Workers = b.Workers
	}

	return &result
}

func (s *Source) merge(b *Source) *Source {
	if s == nil {
		return b
	}

	result := *s

	if b.Name != "" {
		result.Name = b.Name
	}
	if b.Provider != "" {
		result.Provider = b.Provider
	}
	if b.Path != "" {
		result.Path = b.Path
	}
	if b.Address != "" {
		result.Address = b.Address
	}
	if b.Token != "" {
		result.Token = b.Token
	}
	if b.Bucket != "" {
		result.Bucket = b.Bucket
	}
	if b.Region != "" {
		result.Region = b.Region
	}

	return &result
}

func (s *Source) copy() *Source {
	if s == nil {
		return nil
	}

	c := *s
	return &c
}

func (s *Source) validate() *multierror.Error {
	var result *multierror.Error
	prefix := fmt.Sprintf("source[%s] ->", s.Name)

	switch s.Provider {
	case providers.ProviderFile, providers.ProviderConsul:
		if s.Path == "" {
			result = multierror.Append(result, fmt.Errorf("%s provider requires a path", s.Provider))
		}
	case providers.ProviderS3:
		if s.Bucket == "" {
			result = multierror.Append(result, errors.New("s3 provider requires a bucket"))
		}
		if s.Path == "" {
			result = multierror.Append(result, errors.New("s3 provider requires a path"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("invalid provider %q", s.Provider))
	}

	// Prefix all errors.
	if result != nil {
		for i, err := range result.Errors {
			result.Errors[i] = multierror.Prefix(err, prefix)
		}
	}
	return result
}

func (a *Alias) merge(b *Alias) *Alias {
	if a == nil {
		return b
	}

	result := *a

	if b.Name != "" {
		result.Name = b.Name
	}
	if len(b.Targets) != 0 {
		result.Targets = b.Targets
	}

	return &result
}

func (a *Alias) copy() *Alias {
	if a == nil {
		return nil
	}

	c := *a
	if i, err := copystructure.Copy(a.Targets); err != nil {
		panic(err.Error())
	} else {
		c.Targets = i.([]string)
	}
	return &c
}

func (a *Alias) validate() *multierror.Error {
	var result *multierror.Error
	prefix := fmt.Sprintf("alias[%s] ->", a.Name)

	if len(a.Targets) == 0 {
		result = multierror.Append(result, errors.New("alias requires at least one target"))
	}

	// Prefix all errors.
	if result != nil {
		for i, err := range result.Errors {
			result.Errors[i] = multierror.Prefix(err, prefix)
		}
	}
	return result
}

func (s *Scenario) merge(b *Scenario) *Scenario {
	if s == nil {
		return b
	}

	result := *s

	if b.Name != "" {
		result.Name = b.Name
	}
	if b.Description != "" {
		result.Description = b.Description
	}
	if len(b.Tasks) != 0 {
		result.Tasks = b.Tasks
	}

	return &result
}

func (s *Scenario) copy() *Scenario {
	if s == nil {
		return nil
	}

	c := *s
	if i, err := copystructure.Copy(s.Tasks); err != nil {
		panic(err.Error())
	} else {
		c.Tasks = i.([]*Task)
	}
	return &c
}

func (s *Scenario) validate() *multierror.Error {
	var result *multierror.Error
	prefix := fmt.Sprintf("scenario[%s] ->", s.Name)

	if len(s.Tasks) == 0 {
		result = multierror.Append(result, errors.New("scenario requires at least one task"))
	}

	// Prefix all errors.
	if result != nil {
		for i, err := range result.Errors {
			result.Errors[i] = multierror.Prefix(err, prefix)
		}
	}
	return result
}

// sourceConfigSetMerge merges two sets of source configs. For sources with
// the same name, the configs are merged.
func sourceConfigSetMerge(first, second []*Source) []*Source {
	findex := make(map[string]*Source, len(first))
	for _, s := range first {
		findex[s.Name] = s
	}

	sindex := make(map[string]*Source, len(second))
	for _, s := range second {
		sindex[s.Name] = s
	}

	var out []*Source

	// Go through the first set and merge any value that exist in both
	for name, original := range findex {
		second, ok := sindex[name]
		if !ok {
			out = append(out, original.copy())
			continue
		}

		out = append(out, original.merge(second))
	}

	// Go through the second set and add any value that didn't exist in both
	for name, source := range sindex {
		_, ok := findex[name]
		if ok {
			continue
		}

		out = append(out, source)
	}

	return out
}

func aliasConfigSetMerge(first, second []*Alias) []*Alias {
	findex := make(map[string]*Alias, len(first))
	for _, a := range first {
		findex[a.Name] = a
	}

	sindex := make(map[string]*Alias, len(second))
	for _, a := range second {
		sindex[a.Name] = a
	}

	var out []*Alias

	// Go through the first set and merge any value that exist in both
	for name, original := range findex {
		second, ok := sindex[name]
		if !ok {
			out = append(out, original.copy())
			continue
		}

		out = append(out, original.merge(second))
	}

	// Go through the second set and add any value that didn't exist in both
	for name, alias := range sindex {
		_, ok := findex[name]
		if ok {
			continue
		}

		out = append(out, alias)
	}

	return out
}

func scenarioConfigSetMerge(first, second []*Scenario) []*Scenario {
	findex := make(map[string]*Scenario, len(first))
	for _, s := range first {
		findex[s.Name] = s
	}

	sindex := make(map[string]*Scenario, len(second))
	for _, s := range second {
		sindex[s.Name] = s
	}

	var out []*Scenario

	// Go through the first set and merge any value that exist in both
	for name, original := range findex {
		second, ok := sindex[name]
		if !ok {
			out = append(out, original.copy())
			continue
		}

		out = append(out, original.merge(second))
	}

	// Go through the second set and add any value that didn't exist in both
	for name, scenario := range sindex {
		_, ok := findex[name]
		if ok {
			continue
		}

		out = append(out, scenario)
	}

	return out
}

func parseFile(file string, cfg *Config) error {
	return hclsimple.DecodeFile(file, nil, cfg)
}

// Load loads the configuration at the given path, regardless if its a file
// or directory.
func Load(path string) (*Config, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if fi.IsDir() {
		return loadDir(path)
	}

	cleaned := filepath.Clean(path)

	cfg := &Config{}
	if err := parseFile(cleaned, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %v", cleaned, err)
	}
	return cfg, nil
}

// loadDir loads all the configurations in the given directory in
// alphabetical order.
func loadDir(dir string) (*Config, error) {

	files, err := file.GetFileListFromDir(dir, ".hcl", ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to load config directory: %v", err)
	}

	// Fast-path if we have no files
	if len(files) == 0 {
		return &Config{}, nil
	}

	sort.Strings(files)

	var result *Config
	for _, f := range files {

		cfg := &Config{}

		if err := parseFile(f, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file %s: %v", f, err)
		}

		if result == nil {
			result = cfg
		} else {
			result = result.Merge(cfg)
		}
	}

	return result, nil
}
