// Package task turns operator intent into bulk operations on elastigroups.
// A task names an action, the targets it applies to and the parameters of
// the action; the runner resolves the targets against the account and fans
// the work out across a bounded worker pool.
package task

import (
	"errors"
	"fmt"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/supersonicads/spotcli/elastigroup"
	errHelper "github.com/supersonicads/spotcli/sdk/helper/error"
)

// Kind identifies the action a task performs.
type Kind string

const (
	KindRoll      Kind = "roll"
	KindUpscale   Kind = "upscale"
	KindDownscale Kind = "downscale"
	KindSuspend   Kind = "suspend"
	KindUnsuspend Kind = "unsuspend"
)

// Options carries the raw, unvalidated parameters of a task.
type Options struct {

	// Targets are patterns or alias names selecting the groups to act on.
	Targets []string

	// Processes are the process names a suspend or unsuspend task acts on.
	Processes []string

	// Batch and Grace parameterise roll tasks.
	Batch string
	Grace string

	// Amount parameterises scale tasks.
	Amount string
}

// Task is a validated bulk operation ready to run.
type Task struct {
	Kind      Kind
	Targets   []string
	Processes []elastigroup.Process
	Batch     string
	Grace     string
	Amount    string
}

// New validates the options against the requested kind and builds a Task.
// Construction performs no remote calls.
func New(kind string, opts *Options) (*Task, error) {

	switch Kind(kind) {
	case KindRoll, KindUpscale, KindDownscale, KindSuspend, KindUnsuspend:
	default:
		return nil, fmt.Errorf("invalid task kind %q", kind)
	}

	task := &Task{
		Kind:    Kind(kind),
		Targets: opts.Targets,
		Batch:   opts.Batch,
		Grace:   opts.Grace,
		Amount:  opts.Amount,
	}

	var mErr *multierror.Error

	if len(opts.Targets) == 0 {
		mErr = multierror.Append(mErr, errors.New("tasks require at least one target"))
	}

	switch task.Kind {
	case KindUpscale, KindDownscale:
		if opts.Amount == "" {
			mErr = multierror.Append(mErr, errors.New("scale tasks require an amount"))
		}
	case KindSuspend, KindUnsuspend:
		if len(opts.Processes) == 0 {
			mErr = multierror.Append(mErr, fmt.Errorf("%s tasks require at least one process", task.Kind))
		}
	}

	for _, raw := range opts.Processes {
		process, err := elastigroup.ParseProcess(raw)
		if err != nil {
			mErr = multierror.Append(mErr, err)
			continue
		}
		task.Processes = append(task.Processes, process)
	}

	if err := errHelper.FormattedMultiError(mErr); err != nil {
		return nil, fmt.Errorf("invalid %s task: %v", kind, err)
	}
	return task, nil
}
