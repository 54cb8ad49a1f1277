package spot

// Group is the slice of the remote elastigroup configuration the CLI
// operates on. The API returns far more, anything not modelled here is
// ignored on decode.
type Group struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Capacity *Capacity `json:"capacity,omitempty"`
	Scaling  *Scaling  `json:"scaling,omitempty"`
}

// Capacity holds the sizing of an elastigroup. The fields are pointers so
// partial updates only send what the caller set, the remote keeps its
// current value for anything omitted.
type Capacity struct {
	Minimum *int `json:"minimum,omitempty"`
	Maximum *int `json:"maximum,omitempty"`
	Target  *int `json:"target,omitempty"`
}

// Scaling holds the scaling policies attached to an elastigroup, split by
// direction.
type Scaling struct {
	Up   []*ScalingPolicy `json:"up,omitempty"`
	Down []*ScalingPolicy `json:"down,omitempty"`
}

// ScalingPolicy is a single scaling rule on a group. Policies are addressed
// by name in the suspension endpoints.
type ScalingPolicy struct {
	PolicyName string `json:"policyName"`
}

// RollSpec describes a batched redeployment of the instances in a group.
type RollSpec struct {

	// BatchSizePercentage is the share of the group target capacity replaced
	// per batch.
	BatchSizePercentage int `json:"batchSizePercentage"`

	// GracePeriod is the number of seconds a fresh instance has to become
	// healthy before the roll continues.
	GracePeriod int `json:"gracePeriod"`
}

// RollStatus is the deployment record returned when a roll is started.
type RollStatus struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Progress int    `json:"progress,omitempty"`
}

// processSuspension is the wire form of a suspended process.
type processSuspension struct {
	Name string `json:"name"`
}

// policySuspension is the wire form of a suspended scaling policy.
type policySuspension struct {
	PolicyName string `json:"policyName"`
}
