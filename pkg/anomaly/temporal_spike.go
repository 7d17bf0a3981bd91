package anomaly

import (
	"fmt"
	"sort"

	"github.com/cidadaoai/sentinela/pkg/graph"
	"github.com/cidadaoai/sentinela/pkg/models"
)

// temporalSpikeAnalyzer flags months where an organization's contract count
// spikes against its trailing 12-month baseline (spec §4.8).
type temporalSpikeAnalyzer struct{}

func (temporalSpikeAnalyzer) Kind() models.AnomalyKind { return models.AnomalyTemporalSpike }

func (a temporalSpikeAnalyzer) Analyze(g *graph.Graph, cfg Config) []models.Anomaly {
	contracts := g.NodesByType(models.NodeTypeContract)

	type orgMonth struct {
		org   string
		month string
	}
	counts := map[orgMonth]int{}
	nodesByOrgMonth := map[orgMonth][]string{}
	for _, c := range contracts {
		org := stringAttr(c, "organization_code")
		signedAt := stringAttr(c, "signed_at")
		if org == "" || len(signedAt) < 7 {
			continue
		}
		key := orgMonth{org: org, month: signedAt[:7]}
		counts[key]++
		nodesByOrgMonth[key] = append(nodesByOrgMonth[key], c.NodeID)
	}

	byOrg := map[string][]string{}
	for key := range counts {
		byOrg[key.org] = append(byOrg[key.org], key.month)
	}

	var findings []models.Anomaly
	for org, months := range byOrg {
		sort.Strings(months)
		if len(months) < 2 {
			continue
		}
		series := make([]float64, len(months))
		for i, m := range months {
			series[i] = float64(counts[orgMonth{org: org, month: m}])
		}
		for i, m := range months {
			baseline := trailingWindow(series, i, 12)
			if len(baseline) < 2 {
				continue
			}
			z := zScore(series[i], baseline)
			if z <= cfg.TemporalSpikeZScore {
				continue
			}
			findings = append(findings, newAnomaly(
				models.AnomalyTemporalSpike,
				temporalSpikeSeverity(z),
				clamp(z/6, 0, 1),
				nodesByOrgMonth[orgMonth{org: org, month: m}],
				map[string]any{"organization_code": org, "month": m, "z_score": z, "count": series[i]},
				fmt.Sprintf("contract volume for %s in %s is %.1f standard deviations above trailing baseline", org, m, z),
			))
		}
	}
	return findings
}

// trailingWindow returns up to n values preceding index i in series
// (excluding i itself).
func trailingWindow(series []float64, i, n int) []float64 {
	start := i - n
	if start < 0 {
		start = 0
	}
	return series[start:i]
}

func temporalSpikeSeverity(z float64) models.Severity {
	switch {
	case z > 4:
		return models.SeverityCritical
	case z > 3:
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}
