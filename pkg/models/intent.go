// Package models holds the shared data-transfer types passed between the
// orchestration engine's components: intents, entities, endpoints, plans,
// stage results, the entity graph summary, anomalies, and the final
// investigation result. Types here carry no behavior beyond simple
// accessors — logic lives in the package that owns the operation.
package models

// Intent is the closed set of investigation intents a query can classify
// into. Every query yields exactly one primary intent.
type Intent string

const (
	IntentContractAnomalyDetection Intent = "ContractAnomalyDetection"
	IntentSupplierInvestigation    Intent = "SupplierInvestigation"
	IntentBudgetAnalysis           Intent = "BudgetAnalysis"
	IntentCorruptionIndicators     Intent = "CorruptionIndicators"
	IntentGeographicAnalysis       Intent = "GeographicAnalysis"
	IntentTemporalAnalysis         Intent = "TemporalAnalysis"
	IntentNetworkAnalysis          Intent = "NetworkAnalysis"
	IntentGeneralInvestigation     Intent = "GeneralInvestigation"
)

// AllIntents lists the closed set in a stable order, used by the classifier
// to iterate deterministically and by the planner to validate templates.
var AllIntents = []Intent{
	IntentContractAnomalyDetection,
	IntentSupplierInvestigation,
	IntentBudgetAnalysis,
	IntentCorruptionIndicators,
	IntentGeographicAnalysis,
	IntentTemporalAnalysis,
	IntentNetworkAnalysis,
	IntentGeneralInvestigation,
}

// IntentAlternative is a non-primary intent with a nonzero score, returned
// alongside the primary classification.
type IntentAlternative struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// IntentClassification is the result of classifying a query.
type IntentClassification struct {
	Primary      Intent               `json:"intent"`
	Confidence   float64              `json:"confidence"`
	Alternatives []IntentAlternative  `json:"alternatives"`
}

// AnalyzableIntents is the set of intents for which the orchestrator runs
// anomaly analyzers after data collection (spec §4.9 step 6).
var AnalyzableIntents = map[Intent]bool{
	IntentContractAnomalyDetection: true,
	IntentCorruptionIndicators:     true,
	IntentSupplierInvestigation:    true,
	IntentNetworkAnalysis:          true,
}
