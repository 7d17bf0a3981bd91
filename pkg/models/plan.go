package models

import "time"

// StageType partitions stages into the three planning waves (spec §4.5).
type StageType string

const (
	StageTypeFetch   StageType = "fetch"
	StageTypeEnrich  StageType = "enrich"
	StageTypeAnalyze StageType = "analyze"
)

// ParallelismPolicy controls whether the executor may run independent
// stages concurrently (spec §3).
type ParallelismPolicy string

const (
	ParallelismDependencyDriven  ParallelismPolicy = "dependency-driven"
	ParallelismStrictlySequential ParallelismPolicy = "strictly-sequential"
)

// RetryPolicy overrides the default retry behavior for a single stage.
type RetryPolicy struct {
	MaxAttempts int           `yaml:"max_attempts,omitempty"`
	BaseBackoff time.Duration `yaml:"base_backoff,omitempty"`
	MaxBackoff  time.Duration `yaml:"max_backoff,omitempty"`
}

// ExecutionStage is one node in the plan's dependency DAG (spec §3).
type ExecutionStage struct {
	ID          string         `json:"id"`
	Type        StageType      `json:"type"`
	Capability  Capability     `json:"capability"`
	Params      map[string]any `json:"params"`
	Dependencies []string      `json:"dependencies"`
	TimeoutOverride time.Duration `json:"timeout_override,omitempty"`
	RetryPolicy     *RetryPolicy  `json:"retry_policy,omitempty"`

	// Optional marks a stage skippable when its parameter-fill is
	// incomplete, instead of failing planning outright (spec §4.5).
	Optional bool `json:"optional,omitempty"`
	// Critical, when true, makes a terminal failure of this stage fail the
	// whole investigation (spec §4.9).
	Critical bool `json:"critical,omitempty"`
	// Independent stages remain eligible even when a dependency fails
	// (spec §4.6) — used for enrichment that doesn't strictly need
	// upstream data.
	Independent bool `json:"independent,omitempty"`
}

// ExecutionPlan is the DAG of stages produced by the planner for one
// investigation (spec §3).
type ExecutionPlan struct {
	PlanID            string            `json:"plan_id"`
	Intent            Intent            `json:"intent"`
	Stages            []ExecutionStage  `json:"stages"`
	EstimatedDuration time.Duration     `json:"estimated_duration"`
	ParallelismPolicy ParallelismPolicy `json:"parallelism_policy"`
}

// StageByID returns the stage with the given id, or false if absent.
func (p ExecutionPlan) StageByID(id string) (ExecutionStage, bool) {
	for _, s := range p.Stages {
		if s.ID == id {
			return s, true
		}
	}
	return ExecutionStage{}, false
}
