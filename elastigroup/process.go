// Package elastigroup models Spot elastigroups and the operations performed
// on them: rolls, scaling adjustments, process suspension and status
// reporting.
package elastigroup

import (
	"fmt"
	"strings"
)

// Process is a background activity of an elastigroup that can be suspended
// and resumed independently of the group itself.
type Process string

const (
	// ProcessAutoScale covers every scaling policy of the group at once.
	ProcessAutoScale Process = "AUTO_SCALE"

	// ProcessAutoHealing replaces instances that fail health checks.
	ProcessAutoHealing Process = "AUTO_HEALING"

	// ProcessOutOfStrategy replaces instances that no longer fit the
	// configured spot/on-demand strategy.
	ProcessOutOfStrategy Process = "OUT_OF_STRATEGY"

	// ProcessPreventiveReplacement replaces instances ahead of predicted
	// interruptions.
	ProcessPreventiveReplacement Process = "PREVENTIVE_REPLACEMENT"

	// ProcessRevertPreferred moves workloads back onto preferred instance
	// types when they become available.
	ProcessRevertPreferred Process = "REVERT_PREFERRED"

	// ProcessScheduling runs the scheduled actions of the group.
	ProcessScheduling Process = "SCHEDULING"

	// ProcessAutoScaleDown and ProcessAutoScaleUp do not exist on the remote
	// group. They address the scaling policies of a single direction and are
	// translated into per-policy suspension calls.
	ProcessAutoScaleDown Process = "AUTO_SCALE_DOWN"
	ProcessAutoScaleUp   Process = "AUTO_SCALE_UP"
)

// Processes returns every known process in stable order.
func Processes() []Process {
	return []Process{
		ProcessAutoHealing,
		ProcessAutoScale,
		ProcessOutOfStrategy,
		ProcessPreventiveReplacement,
		ProcessRevertPreferred,
		ProcessScheduling,
		ProcessAutoScaleDown,
		ProcessAutoScaleUp,
	}
}

// ParseProcess normalises the input and validates it against the known
// process names.
func ParseProcess(s string) (Process, error) {
	name := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_")
	for _, known := range Processes() {
		if Process(name) == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("invalid elastigroup process %q", s)
}

// Virtual reports whether the process maps onto scaling policies rather than
// a suspendable process on the remote group.
func (p Process) Virtual() bool {
	return p == ProcessAutoScaleUp || p == ProcessAutoScaleDown
}

func (p Process) String() string { return string(p) }
