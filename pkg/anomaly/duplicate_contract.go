package anomaly

import (
	"fmt"
	"math"

	"github.com/cidadaoai/sentinela/pkg/graph"
	"github.com/cidadaoai/sentinela/pkg/models"
)

// duplicateContractAnalyzer flags near-identical contracts awarded by the
// same organization in the same year: values within tolerance and
// description token-overlap above the Jaccard threshold (spec §4.8).
type duplicateContractAnalyzer struct{}

func (duplicateContractAnalyzer) Kind() models.AnomalyKind { return models.AnomalyDuplicateContract }

func (a duplicateContractAnalyzer) Analyze(g *graph.Graph, cfg Config) []models.Anomaly {
	contracts := g.NodesByType(models.NodeTypeContract)

	byOrgYear := map[string][]models.GraphNode{}
	for _, c := range contracts {
		key := stringAttr(c, "organization_code") + "|" + year(c)
		byOrgYear[key] = append(byOrgYear[key], c)
	}

	var findings []models.Anomaly
	for _, members := range byOrgYear {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				a, b := members[i], members[j]
				va, vb := floatAttr(a, "value"), floatAttr(b, "value")
				if !withinTolerance(va, vb, cfg.DuplicateContractValueTolerance) {
					continue
				}
				sim := jaccardSimilarity(stringAttr(a, "object"), stringAttr(b, "object"))
				if sim <= cfg.DuplicateContractJaccard {
					continue
				}
				findings = append(findings, newAnomaly(
					models.AnomalyDuplicateContract,
					models.SeverityMedium,
					sim,
					[]string{a.NodeID, b.NodeID},
					map[string]any{"jaccard_similarity": sim, "value_a": va, "value_b": vb},
					fmt.Sprintf("contracts %s and %s are %.0f%% textually similar with near-equal value", a.NodeID, b.NodeID, sim*100),
				))
			}
		}
	}
	return findings
}

func withinTolerance(a, b, tolerance float64) bool {
	if a == 0 && b == 0 {
		return true
	}
	base := math.Max(math.Abs(a), math.Abs(b))
	if base == 0 {
		return true
	}
	return math.Abs(a-b)/base <= tolerance
}
