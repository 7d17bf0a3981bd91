package models

import "time"

// RawResult is an opaque per-API payload plus provenance (spec §3). The
// federation layer never unifies schemas — that's pkg/graph's job.
type RawResult struct {
	SourceEndpointID string         `json:"source_endpoint_id"`
	FetchedAt        time.Time      `json:"fetched_at"`
	Payload          map[string]any `json:"payload"`
}

// StageStatus is the terminal (or in-flight) status of a stage execution
// (spec §3).
type StageStatus string

const (
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
	StageStatusSkipped   StageStatus = "skipped"
	StageStatusPartial   StageStatus = "partial"
)

// StageResult is the outcome of executing one ExecutionStage (spec §3).
type StageResult struct {
	StageID          string        `json:"stage_id"`
	Status           StageStatus   `json:"status"`
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration"`
	Attempts         int           `json:"attempts"`
	EndpointsInvoked []string      `json:"endpoints_invoked"`
	Records          []RawResult   `json:"records"`
	Errors           []ErrorRecord `json:"errors"`
}

// InvestigationStatus is the lifecycle state of an InvestigationResult
// (spec §3).
type InvestigationStatus string

const (
	InvestigationPending   InvestigationStatus = "Pending"
	InvestigationRunning   InvestigationStatus = "Running"
	InvestigationCompleted InvestigationStatus = "Completed"
	InvestigationFailed    InvestigationStatus = "Failed"
)

// GraphSummary is the serializable projection of the frozen EntityGraph
// attached to an InvestigationResult (spec §6.4).
type GraphSummary struct {
	NodeCount  int            `json:"node_count"`
	EdgeCount  int            `json:"edge_count"`
	ByNodeType map[string]int `json:"by_node_type"`
	ByEdgeType map[string]int `json:"by_edge_type"`
}

// Traceability is the provenance bundle attached to every terminal
// InvestigationResult (spec §3). It MUST NOT carry secrets, auth tokens, or
// internal network identifiers — see pkg/sanitize.
type Traceability struct {
	DataSources       []string         `json:"data_sources"`
	APIsCalledPerStage [][]string      `json:"apis_called_per_stage"`
	StageDetails      []StageDetail    `json:"stage_details"`
	TotalAPICalls     int              `json:"total_api_calls"`
	StartedAt         time.Time        `json:"started_at"`
	DroppedEvents     int              `json:"dropped_events"`
}

// StageDetail is one entry of Traceability.StageDetails (spec §3).
type StageDetail struct {
	StageID   string        `json:"stage_id"`
	Status    StageStatus   `json:"status"`
	Duration  time.Duration `json:"duration"`
	Endpoints []string      `json:"endpoints"`
	Errors    []ErrorRecord `json:"errors"`
}

// InvestigationResult is the top-level, immutable-once-terminal output of
// Orchestrator.Investigate (spec §3/§6.4).
type InvestigationResult struct {
	InvestigationID  string               `json:"investigation_id"`
	Intent           Intent               `json:"intent"`
	Confidence       float64              `json:"confidence"`
	Entities         Entities             `json:"entities"`
	Plan             ExecutionPlan        `json:"plan"`
	StageResults     []StageResult        `json:"stage_results"`
	GraphSummary     GraphSummary         `json:"graph_summary"`
	Anomalies        []Anomaly            `json:"anomalies"`
	TotalDurationSec float64              `json:"total_duration_sec"`
	Status           InvestigationStatus  `json:"status"`
	Traceability     Traceability         `json:"traceability"`
	// Error is set only when the whole investigation is terminal and
	// unrecoverable (spec §7 propagation policy).
	Error *ErrorRecord `json:"error,omitempty"`
}
