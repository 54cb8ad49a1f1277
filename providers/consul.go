package providers

import (
	"context"
	"fmt"

	"github.com/hashicorp/consul/api"
)

type consulProvider struct {
	kv *api.KV
}

func newConsulProvider(cfg *Config) (*consulProvider, error) {
	consulConfig := api.DefaultConfig()
	if cfg.Address != "" {
		consulConfig.Address = cfg.Address
	}
	if cfg.Token != "" {
		consulConfig.Token = cfg.Token
	}

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to set up consul client: %v", err)
	}
	return &consulProvider{kv: client.KV()}, nil
}

// Get reads the value of the KV entry at path.
func (c *consulProvider) Get(ctx context.Context, path string) ([]byte, error) {
	pair, _, err := c.kv.Get(path, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if pair == nil {
		return nil, fmt.Errorf("no configuration at consul key %q", path)
	}
	return pair.Value, nil
}

// Put writes the value of the KV entry at path.
func (c *consulProvider) Put(ctx context.Context, path string, data []byte) error {
	pair := &api.KVPair{Key: path, Value: data}
	_, err := c.kv.Put(pair, (&api.WriteOptions{}).WithContext(ctx))
	return err
}
