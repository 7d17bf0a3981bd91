package anomaly

import (
	"fmt"
	"math"

	"github.com/cidadaoai/sentinela/pkg/graph"
	"github.com/cidadaoai/sentinela/pkg/models"
)

// priceDeviationAnalyzer flags contracts whose per-unit price deviates
// sharply from the median within their (category, year, UF) cohort (spec
// §4.8).
type priceDeviationAnalyzer struct{}

func (priceDeviationAnalyzer) Kind() models.AnomalyKind { return models.AnomalyPriceDeviation }

func (a priceDeviationAnalyzer) Analyze(g *graph.Graph, cfg Config) []models.Anomaly {
	contracts := g.NodesByType(models.NodeTypeContract)

	cohorts := map[string][]models.GraphNode{}
	for _, c := range contracts {
		key := cohortKey(c)
		cohorts[key] = append(cohorts[key], c)
	}

	var findings []models.Anomaly
	for _, members := range cohorts {
		prices := make([]float64, len(members))
		for i, m := range members {
			prices[i] = floatAttr(m, "price_per_unit")
		}
		m := median(prices)
		deviation := mad(prices)
		if deviation == 0 {
			continue
		}
		for i, c := range members {
			ratio := math.Abs(prices[i]-m) / deviation
			if ratio <= cfg.PriceDeviationMADMultiplier {
				continue
			}
			findings = append(findings, newAnomaly(
				models.AnomalyPriceDeviation,
				priceDeviationSeverity(ratio),
				1-clamp(1/float64(len(members)), 0, 1),
				[]string{c.NodeID},
				map[string]any{"mad_ratio": ratio, "median": m, "cohort_size": len(members)},
				fmt.Sprintf("contract price deviates %.1fx from cohort median; review pricing justification", ratio),
			))
		}
	}
	return findings
}

func priceDeviationSeverity(ratio float64) models.Severity {
	switch {
	case ratio > 5:
		return models.SeverityCritical
	case ratio > 4:
		return models.SeverityHigh
	case ratio > 3:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func cohortKey(n models.GraphNode) string {
	return fmt.Sprintf("%v|%v|%v", n.Attributes["category"], year(n), n.Attributes["uf"])
}

func year(n models.GraphNode) string {
	signedAt, _ := n.Attributes["signed_at"].(string)
	if len(signedAt) >= 4 {
		return signedAt[:4]
	}
	return ""
}

func floatAttr(n models.GraphNode, key string) float64 {
	if v, ok := n.Attributes[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return 0
}

func stringAttr(n models.GraphNode, key string) string {
	if v, ok := n.Attributes[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
