package anomaly

import (
	"fmt"

	"github.com/cidadaoai/sentinela/pkg/graph"
	"github.com/cidadaoai/sentinela/pkg/models"
)

// vendorConcentrationAnalyzer flags organizations whose top supplier
// receives an outsized fraction of total contract value (spec §4.8). The
// "rolling 12-month window" is approximated as the full set of ingested
// contracts for the organization, since the graph holds exactly one
// investigation's worth of data rather than a persisted time series.
type vendorConcentrationAnalyzer struct{}

func (vendorConcentrationAnalyzer) Kind() models.AnomalyKind {
	return models.AnomalyVendorConcentration
}

func (a vendorConcentrationAnalyzer) Analyze(g *graph.Graph, cfg Config) []models.Anomaly {
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
		total := 0.0
		bySupplier := map[string]float64{}
		for _, c := range members {
			v := floatAttr(c, "value")
			total += v
			bySupplier[stringAttr(c, "supplier_cnpj")] += v
		}
		if total == 0 {
			continue
		}
		topSupplier, topValue := "", 0.0
		for supplier, v := range bySupplier {
			if v > topValue {
				topSupplier, topValue = supplier, v
			}
		}
		fraction := topValue / total
		if fraction <= cfg.VendorConcentrationFraction {
			continue
		}
		var affected []string
		for _, c := range members {
			if stringAttr(c, "supplier_cnpj") == topSupplier {
				affected = append(affected, c.NodeID)
			}
		}
		findings = append(findings, newAnomaly(
			models.AnomalyVendorConcentration,
			vendorConcentrationSeverity(fraction),
			clamp(fraction, 0, 1),
			append(affected, orgNodeIDFromCode(org)),
			map[string]any{"organization_code": org, "top_supplier_cnpj": topSupplier, "fraction": fraction, "total_value": total},
			fmt.Sprintf("supplier %s received %.0f%% of this organization's contract value", topSupplier, fraction*100),
		))
	}
	return findings
}

func vendorConcentrationSeverity(fraction float64) models.Severity {
	switch {
	case fraction > 0.90:
		return models.SeverityCritical
	case fraction > 0.80:
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}

func orgNodeIDFromCode(code string) string { return "org:" + code }
