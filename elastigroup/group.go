package elastigroup

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	errHelper "github.com/supersonicads/spotcli/sdk/helper/error"
	"github.com/supersonicads/spotcli/sdk/helper/ptr"
	"github.com/supersonicads/spotcli/spot"
)

const (
	// DefaultRollBatch is the portion of the group replaced per batch when
	// the operator does not specify one.
	DefaultRollBatch = "20%"

	// DefaultRollGrace is the healing window granted to each batch when the
	// operator does not specify one.
	DefaultRollGrace = "5m"

	// DefaultScaleAmount is how far a group is scaled when the operator does
	// not specify an amount.
	DefaultScaleAmount = "10%"

	statusActive    = "active"
	statusSuspended = "suspended"
)

// Group is a single elastigroup and the handle all operations go through.
type Group struct {
	client *spot.Client
	logger hclog.Logger

	id   string
	name string

	// mu guards the remote state cached below. Both caches are populated at
	// most once per Group; long batch runs act on the state observed at
	// first use.
	mu          sync.Mutex
	detail      *spot.Group
	suspensions *suspensions
}

type suspensions struct {
	processes []string
	policies  []string
}

func newGroup(client *spot.Client, logger hclog.Logger, id, name string) *Group {
	return &Group{
		client: client,
		logger: logger.With("group_id", id, "group_name", name),
		id:     id,
		name:   name,
	}
}

// ID returns the remote identifier of the group.
func (g *Group) ID() string { return g.id }

// Name returns the human readable name of the group.
func (g *Group) Name() string { return g.name }

// Capacity returns the capacity of the group as first observed.
func (g *Group) Capacity(ctx context.Context) (*spot.Capacity, error) {
	detail, err := g.fetchDetail(ctx)
	if err != nil {
		return nil, err
	}
	return detail.Capacity, nil
}

// SetCapacity pushes new capacity bounds to the group. Fields left nil keep
// their remote value.
func (g *Group) SetCapacity(ctx context.Context, capacity *spot.Capacity) error {
	if err := g.client.UpdateCapacity(ctx, g.id, capacity); err != nil {
		return fmt.Errorf("failed to update capacity of group %s: %w", g.name, err)
	}
	return nil
}

// Roll starts a batched redeployment of the group. The batch size accepts a
// percentage ("25%") or an absolute instance count, the grace period accepts
// plain seconds or a duration string ("5m").
func (g *Group) Roll(ctx context.Context, batch, grace string) (*spot.RollStatus, error) {
	if batch == "" {
		batch = DefaultRollBatch
	}
	if grace == "" {
		grace = DefaultRollGrace
	}

	batchPct, err := g.batchPercentage(ctx, batch)
	if err != nil {
		return nil, err
	}
	graceSecs, err := graceSeconds(grace)
	if err != nil {
		return nil, err
	}

	g.logger.Info("rolling group", "batch_pct", batchPct, "grace_seconds", graceSecs)

	status, err := g.client.Roll(ctx, g.id, &spot.RollSpec{
		BatchSizePercentage: batchPct,
		GracePeriod:         graceSecs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to roll group %s: %w", g.name, err)
	}
	return status, nil
}

// ScaleUp grows the group by amount, either an absolute instance count or a
// percentage of the target capacity. Adjustments that resolve to zero are
// skipped.
func (g *Group) ScaleUp(ctx context.Context, amount string) error {
	adjustment, err := g.resolveAdjustment(ctx, amount)
	if err != nil {
		return err
	}
	if adjustment == 0 {
		g.logger.Debug("scale adjustment resolved to zero, skipping", "amount", amount)
		return nil
	}
	if err := g.client.ScaleUp(ctx, g.id, adjustment); err != nil {
		return fmt.Errorf("failed to scale up group %s: %w", g.name, err)
	}
	return nil
}

// ScaleDown shrinks the group by amount, either an absolute instance count
// or a percentage of the target capacity. Adjustments that resolve to zero
// are skipped.
func (g *Group) ScaleDown(ctx context.Context, amount string) error {
	adjustment, err := g.resolveAdjustment(ctx, amount)
	if err != nil {
		return err
	}
	if adjustment == 0 {
		g.logger.Debug("scale adjustment resolved to zero, skipping", "amount", amount)
		return nil
	}
	if err := g.client.ScaleDown(ctx, g.id, adjustment); err != nil {
		return fmt.Errorf("failed to scale down group %s: %w", g.name, err)
	}
	return nil
}

// Suspend stops the given process on the group. The virtual scaling
// processes suspend the scaling policies of the matching direction instead;
// policies that are already suspended are left alone.
func (g *Group) Suspend(ctx context.Context, process Process) error {
	if !process.Virtual() {
		if err := g.client.SuspendProcesses(ctx, g.id, []string{process.String()}); err != nil {
			return fmt.Errorf("failed to suspend process %s on group %s: %w", process, g.name, err)
		}
		return nil
	}

	policies, err := g.scalingPolicies(ctx, process)
	if err != nil {
		return err
	}
	for _, policy := range policies {
		err := g.client.SuspendScalingPolicy(ctx, g.id, policy)
		if errHelper.APIErrIs(err, 0, "already suspended") {
			g.logger.Debug("scaling policy already suspended", "policy", policy)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to suspend scaling policy %s on group %s: %w", policy, g.name, err)
		}
	}
	return nil
}

// Unsuspend resumes the given process on the group.
func (g *Group) Unsuspend(ctx context.Context, process Process) error {
	if !process.Virtual() {
		if err := g.client.ResumeProcesses(ctx, g.id, []string{process.String()}); err != nil {
			return fmt.Errorf("failed to unsuspend process %s on group %s: %w", process, g.name, err)
		}
		return nil
	}

	policies, err := g.scalingPolicies(ctx, process)
	if err != nil {
		return err
	}
	for _, policy := range policies {
		if err := g.client.ResumeScalingPolicy(ctx, g.id, policy); err != nil {
			return fmt.Errorf("failed to unsuspend scaling policy %s on group %s: %w", policy, g.name, err)
		}
	}
	return nil
}

// Status describes the observed state of a group: its capacity and the
// active or suspended state of each process.
type Status struct {
	ID        string
	Name      string
	Capacity  *spot.Capacity
	Processes map[Process]string
}

// Status reports the capacity of the group and the suspension state of every
// process. A virtual scaling process counts as suspended when any scaling
// policy of its direction is suspended.
func (g *Group) Status(ctx context.Context) (*Status, error) {
	detail, err := g.fetchDetail(ctx)
	if err != nil {
		return nil, err
	}
	susp, err := g.fetchSuspensions(ctx)
	if err != nil {
		return nil, err
	}

	status := &Status{
		ID:        g.id,
		Name:      g.name,
		Capacity:  detail.Capacity,
		Processes: make(map[Process]string, len(Processes())),
	}

	for _, process := range Processes() {
		if !process.Virtual() {
			status.Processes[process] = processState(contains(susp.processes, process.String()))
			continue
		}

		policies, err := g.scalingPolicies(ctx, process)
		if err != nil {
			return nil, err
		}
		suspended := false
		for _, policy := range policies {
			if contains(susp.policies, policy) {
				suspended = true
				break
			}
		}
		status.Processes[process] = processState(suspended)
	}
	return status, nil
}

// fetchDetail returns the configuration of the group, fetching it on first
// use and caching it only on success.
func (g *Group) fetchDetail(ctx context.Context) (*spot.Group, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.detail != nil {
		return g.detail, nil
	}

	detail, err := g.client.GetGroup(ctx, g.id)
	if err != nil {
		return nil, fmt.Errorf("failed to describe group %s: %w", g.name, err)
	}
	g.detail = detail
	return detail, nil
}

// fetchSuspensions returns the suspended processes and scaling policies of
// the group, fetching them on first use and caching them only on success.
func (g *Group) fetchSuspensions(ctx context.Context) (*suspensions, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.suspensions != nil {
		return g.suspensions, nil
	}

	processes, err := g.client.ListSuspendedProcesses(ctx, g.id)
	if err != nil {
		return nil, fmt.Errorf("failed to list suspended processes of group %s: %w", g.name, err)
	}
	policies, err := g.client.ListSuspendedScalingPolicies(ctx, g.id)
	if err != nil {
		return nil, fmt.Errorf("failed to list suspended scaling policies of group %s: %w", g.name, err)
	}

	g.suspensions = &suspensions{processes: processes, policies: policies}
	return g.suspensions, nil
}

// scalingPolicies returns the policy names behind a virtual scaling process.
func (g *Group) scalingPolicies(ctx context.Context, process Process) ([]string, error) {
	detail, err := g.fetchDetail(ctx)
	if err != nil {
		return nil, err
	}
	if detail.Scaling == nil {
		return nil, nil
	}

	var policies []*spot.ScalingPolicy
	switch process {
	case ProcessAutoScaleUp:
		policies = detail.Scaling.Up
	case ProcessAutoScaleDown:
		policies = detail.Scaling.Down
	}

	names := make([]string, 0, len(policies))
	for _, policy := range policies {
		names = append(names, policy.PolicyName)
	}
	return names, nil
}

// batchPercentage converts the operator supplied batch size into the
// percentage form the API expects. Absolute counts are sized against the
// target capacity of the group.
func (g *Group) batchPercentage(ctx context.Context, batch string) (int, error) {
	if strings.HasSuffix(batch, "%") {
		pct, err := strconv.Atoi(strings.TrimSuffix(batch, "%"))
		if err != nil {
			return 0, fmt.Errorf("invalid batch size %q: %v", batch, err)
		}
		return pct, nil
	}

	abs, err := strconv.Atoi(batch)
	if err != nil {
		return 0, fmt.Errorf("invalid batch size %q: %v", batch, err)
	}

	target, err := g.targetCapacity(ctx)
	if err != nil {
		return 0, err
	}
	if target == 0 {
		return 0, fmt.Errorf("group %s has no target capacity to size batch %q against", g.name, batch)
	}
	return abs * 100 / target, nil
}

// resolveAdjustment converts the operator supplied scale amount into an
// absolute instance count. Percentages are sized against the target capacity
// of the group.
func (g *Group) resolveAdjustment(ctx context.Context, amount string) (int, error) {
	if !strings.HasSuffix(amount, "%") {
		adjustment, err := strconv.Atoi(amount)
		if err != nil {
			return 0, fmt.Errorf("invalid scale amount %q: %v", amount, err)
		}
		return adjustment, nil
	}

	pct, err := strconv.Atoi(strings.TrimSuffix(amount, "%"))
	if err != nil {
		return 0, fmt.Errorf("invalid scale amount %q: %v", amount, err)
	}

	target, err := g.targetCapacity(ctx)
	if err != nil {
		return 0, err
	}
	return pct * target / 100, nil
}

func (g *Group) targetCapacity(ctx context.Context) (int, error) {
	detail, err := g.fetchDetail(ctx)
	if err != nil {
		return 0, err
	}
	if detail.Capacity == nil {
		return 0, nil
	}
	return ptr.PtrToInt(detail.Capacity.Target), nil
}

// graceSeconds converts the operator supplied grace period into seconds.
// Plain integers are taken as seconds already.
func graceSeconds(grace string) (int, error) {
	if seconds, err := strconv.Atoi(grace); err == nil {
		return seconds, nil
	}
	d, err := time.ParseDuration(grace)
	if err != nil {
		return 0, fmt.Errorf("invalid grace period %q: %v", grace, err)
	}
	return int(d.Seconds()), nil
}

func processState(suspended bool) string {
	if suspended {
		return statusSuspended
	}
	return statusActive
}

func contains(haystack []string, needle string) bool {
	for _, item := range haystack {
		if item == needle {
			return true
		}
	}
	return false
}
