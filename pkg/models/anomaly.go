package models

// AnomalyKind is the closed set of statistical detectors in pkg/anomaly
// (spec §4.8).
type AnomalyKind string

const (
	AnomalyPriceDeviation     AnomalyKind = "PriceDeviation"
	AnomalyVendorConcentration AnomalyKind = "VendorConcentration"
	AnomalyTemporalSpike      AnomalyKind = "TemporalSpike"
	AnomalyDuplicateContract  AnomalyKind = "DuplicateContract"
	AnomalyPaymentMismatch    AnomalyKind = "PaymentMismatch"
	AnomalyBenfordViolation   AnomalyKind = "BenfordViolation"
	AnomalyCartelClique       AnomalyKind = "CartelClique"
)

// Severity ranks an Anomaly's urgency (spec §3).
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Anomaly is one finding produced by an analyzer in pkg/anomaly (spec §3).
// AffectedNodes references GraphNode.NodeID values; Evidence holds the
// analyzer-specific numbers (e.g. z_score, mad, jaccard_similarity) that
// justify Confidence and Severity.
type Anomaly struct {
	AnomalyID       string         `json:"anomaly_id"`
	Kind            AnomalyKind    `json:"kind"`
	Severity        Severity       `json:"severity"`
	Confidence      float64        `json:"confidence"`
	AffectedNodes   []string       `json:"affected_nodes"`
	Evidence        map[string]any `json:"evidence"`
	Recommendation  string         `json:"recommendation"`
	EstimatedImpact *float64       `json:"estimated_impact,omitempty"`
}
