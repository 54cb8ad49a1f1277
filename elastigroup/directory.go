package elastigroup

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/supersonicads/spotcli/sdk/helper/filter"
	"github.com/supersonicads/spotcli/spot"
)

// Directory resolves target patterns against the elastigroups of a Spot
// account.
type Directory struct {
	client *spot.Client
	logger hclog.Logger

	// mu guards listing, which is fetched at most once and kept for the
	// lifetime of the directory.
	mu      sync.Mutex
	listing map[string]string
}

// NewDirectory returns a Directory backed by the given client.
func NewDirectory(client *spot.Client, logger hclog.Logger) *Directory {
	return &Directory{
		client: client,
		logger: logger.Named("elastigroup"),
	}
}

// Find returns the groups whose name matches any of the patterns. A pattern
// matches on equality, as a substring or as a case insensitive regular
// expression. Results are ordered by group name.
func (d *Directory) Find(ctx context.Context, patterns []string) ([]*Group, error) {
	listing, err := d.groups(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(listing))
	for name := range listing {
		names = append(names, name)
	}
	sort.Strings(names)

	matched, err := filter.Match(names, patterns)
	if err != nil {
		return nil, err
	}

	groups := make([]*Group, 0, len(matched))
	for _, name := range matched {
		groups = append(groups, newGroup(d.client, d.logger, listing[name], name))
	}
	return groups, nil
}

// groups returns the name to ID listing of the account, fetching it on first
// use and caching it only on success.
func (d *Directory) groups(ctx context.Context) (map[string]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.listing != nil {
		return d.listing, nil
	}

	groups, err := d.client.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list elastigroups: %w", err)
	}

	listing := make(map[string]string, len(groups))
	for _, group := range groups {
		listing[group.Name] = group.ID
	}

	d.logger.Debug("cached elastigroup listing", "count", len(listing))
	d.listing = listing
	return listing, nil
}
