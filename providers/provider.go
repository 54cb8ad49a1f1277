// Package providers fetches remote configuration payloads from the backing
// stores the CLI supports: local files, Consul KV and S3.
package providers

import (
	"context"
	"fmt"
)

const (
	ProviderFile   = "file"
	ProviderConsul = "consul"
	ProviderS3     = "s3"
)

// Config selects and parameterises a provider.
type Config struct {
	Provider string
	Address  string
	Bucket   string
	Region   string
	Token    string
}

// Provider reads and writes configuration payloads in a backing store.
type Provider interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Put(ctx context.Context, path string, data []byte) error
}

// New returns the provider selected by the configuration.
func New(ctx context.Context, cfg *Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderFile:
		return newFileProvider(), nil
	case ProviderConsul:
		return newConsulProvider(cfg)
	case ProviderS3:
		return newS3Provider(ctx, cfg)
	default:
		return nil, fmt.Errorf("invalid provider %q", cfg.Provider)
	}
}
