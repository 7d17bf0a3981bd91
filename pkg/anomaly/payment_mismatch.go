package anomaly

import (
	"fmt"
	"math"

	"github.com/cidadaoai/sentinela/pkg/graph"
	"github.com/cidadaoai/sentinela/pkg/models"
)

// paymentMismatchAnalyzer flags contracts whose paid value diverges from
// the contracted value beyond the configured fraction (spec §4.8). Paid
// value is sourced from the contract node's own "paid_value" attribute,
// populated by pkg/graph's fetch_payments mapper merge.
type paymentMismatchAnalyzer struct{}

func (paymentMismatchAnalyzer) Kind() models.AnomalyKind { return models.AnomalyPaymentMismatch }

func (a paymentMismatchAnalyzer) Analyze(g *graph.Graph, cfg Config) []models.Anomaly {
	contracts := g.NodesByType(models.NodeTypeContract)

	var findings []models.Anomaly
	for _, c := range contracts {
		contracted := floatAttr(c, "value")
		paid := floatAttr(c, "paid_value")
		if contracted == 0 || paid == 0 {
			continue
		}
		fraction := math.Abs(paid-contracted) / contracted
		if fraction <= cfg.PaymentMismatchFraction {
			continue
		}
		findings = append(findings, newAnomaly(
			models.AnomalyPaymentMismatch,
			paymentMismatchSeverity(fraction),
			clamp(fraction/5, 0, 1),
			[]string{c.NodeID},
			map[string]any{"contracted_value": contracted, "paid_value": paid, "mismatch_fraction": fraction},
			fmt.Sprintf("paid value diverges %.0f%% from contracted value", fraction*100),
		))
	}
	return findings
}

func paymentMismatchSeverity(fraction float64) models.Severity {
	switch {
	case fraction > 5:
		return models.SeverityCritical
	case fraction > 2:
		return models.SeverityHigh
	case fraction > 1:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
