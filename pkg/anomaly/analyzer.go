package anomaly

import (
	"github.com/google/uuid"

	"github.com/cidadaoai/sentinela/pkg/graph"
	"github.com/cidadaoai/sentinela/pkg/models"
)

// Analyzer is any detector consuming the frozen graph and producing zero or
// more findings (spec §4.8). New analyzers are added by explicit
// registration in Analyzers, never by reflection or self-discovery.
type Analyzer interface {
	Kind() models.AnomalyKind
	Analyze(g *graph.Graph, cfg Config) []models.Anomaly
}

// Analyzers returns the seven built-in detectors in a fixed order, mirrored
// by the orchestrator's bounded-concurrency fan-out (spec §4.9 step 6).
func Analyzers() []Analyzer {
	return []Analyzer{
		priceDeviationAnalyzer{},
		vendorConcentrationAnalyzer{},
		temporalSpikeAnalyzer{},
		duplicateContractAnalyzer{},
		paymentMismatchAnalyzer{},
		benfordViolationAnalyzer{},
		cartelCliqueAnalyzer{},
	}
}

func newAnomaly(kind models.AnomalyKind, severity models.Severity, confidence float64, affected []string, evidence map[string]any, recommendation string) models.Anomaly {
	return models.Anomaly{
		AnomalyID:      uuid.NewString(),
		Kind:           kind,
		Severity:       severity,
		Confidence:     clamp(confidence, 0, 1),
		AffectedNodes:  affected,
		Evidence:       evidence,
		Recommendation: recommendation,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
