// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/mitchellh/go-homedir"

	"github.com/supersonicads/spotcli/providers"
)

// DefaultConfigPath is where the CLI looks for its configuration when the
// -config flag is not given.
const DefaultConfigPath = "~/.spot/config.hcl"

// LoadWithSources builds the runtime configuration: defaults, then the local
// configuration at path, then every remote source it declares, each layer
// merged over the previous one. Sources declared by a remote configuration
// are not followed.
func LoadWithSources(ctx context.Context, path string) (*Config, error) {
	cfg := Default()

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path %s: %v", path, err)
	}

	local, err := Load(expanded)
	if err != nil {
		// The default path may simply not exist yet; flags and the
		// environment can still carry everything needed.
		if path != DefaultConfigPath || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		local = &Config{}
	}

	if err := local.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %v", path, err)
	}
	cfg = cfg.Merge(local)

	sources := cfg.Sources
	for _, source := range sources {
		remote, err := loadSource(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("failed to load source %s: %v", source.Name, err)
		}
		if err := remote.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration from source %s: %v", source.Name, err)
		}
		cfg = cfg.Merge(remote)
	}

	return cfg, nil
}

func loadSource(ctx context.Context, source *Source) (*Config, error) {
	provider, err := providers.New(ctx, &providers.Config{
		Provider: source.Provider,
		Address:  source.Address,
		Bucket:   source.Bucket,
		Region:   source.Region,
		Token:    source.Token,
	})
	if err != nil {
		return nil, err
	}

	data, err := provider.Get(ctx, source.Path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := hclsimple.Decode(source.Name+".hcl", data, nil, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
