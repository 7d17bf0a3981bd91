package anomaly

import (
	"fmt"

	"github.com/cidadaoai/sentinela/pkg/graph"
	"github.com/cidadaoai/sentinela/pkg/models"
)

// benfordViolationAnalyzer flags organizations whose contract-value leading
// digits deviate from Benford's law, a classic indicator of fabricated
// numbers (spec §4.8). Requires at least BenfordMinRecords values in scope.
type benfordViolationAnalyzer struct{}

func (benfordViolationAnalyzer) Kind() models.AnomalyKind { return models.AnomalyBenfordViolation }

func (a benfordViolationAnalyzer) Analyze(g *graph.Graph, cfg Config) []models.Anomaly {
	contracts := g.NodesByType(models.NodeTypeContract)

	byOrg := map[string][]models.GraphNode{}
	for _, c := range contracts {
		org := stringAttr(c, "organization_code")
		if org == "" {
			continue
		}
		byOrg[org] = append(byOrg[org], c)
	}

	var findings []models.Anomaly
	for org, members := range byOrg {
		if len(members) < cfg.BenfordMinRecords {
			continue
		}
		values := make([]float64, len(members))
		ids := make([]string, len(members))
		for i, c := range members {
			values[i] = floatAttr(c, "value")
			ids[i] = c.NodeID
		}
		chi := benfordChiSquare(values)
		if chi <= cfg.BenfordChiSquare {
			continue
		}
		findings = append(findings, newAnomaly(
			models.AnomalyBenfordViolation,
			benfordSeverity(chi),
			clamp(chi/50, 0, 1),
			ids,
			map[string]any{"organization_code": org, "chi_square": chi, "record_count": len(members)},
			fmt.Sprintf("leading-digit distribution for %s deviates from Benford's law (χ²=%.1f)", org, chi),
		))
	}
	return findings
}

func benfordSeverity(chi float64) models.Severity {
	switch {
	case chi > 30:
		return models.SeverityCritical
	case chi > 20:
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}
