package anomaly

import (
	"fmt"
	"sort"

	"github.com/cidadaoai/sentinela/pkg/graph"
	"github.com/cidadaoai/sentinela/pkg/models"
)

// cartelCliqueAnalyzer projects PartnerOf (supplier-bids-on-bidding) edges
// onto a co-bidding graph — two suppliers are linked when they jointly bid
// on the same process at least CartelMinSharedBids times — and flags
// densely-connected supplier clusters as possible cartels (spec §4.8).
//
// Simplification: rather than enumerating maximal cliques (NP-hard in
// general and unnecessary at investigation scale), this groups suppliers
// into connected components of the co-bid graph and flags any component of
// size >= CartelMinCliqueSize whose edge density meets
// CartelMinEdgeDensity. A true clique has density 1.0 and always passes;
// a component with a few missing edges but otherwise dense cross-bidding
// still gets flagged, matching the spec's "density >= 0.7" quasi-clique
// wording more literally than a strict clique enumeration would.
type cartelCliqueAnalyzer struct{}

func (cartelCliqueAnalyzer) Kind() models.AnomalyKind { return models.AnomalyCartelClique }

func (a cartelCliqueAnalyzer) Analyze(g *graph.Graph, cfg Config) []models.Anomaly {
	suppliersByBidding := map[string][]string{}
	for _, e := range g.EdgesByRelationship(models.RelationshipPartnerOf) {
		suppliersByBidding[e.To] = append(suppliersByBidding[e.To], e.From)
	}

	coBidCount := map[[2]string]int{}
	for _, suppliers := range suppliersByBidding {
		sort.Strings(suppliers)
		for i := 0; i < len(suppliers); i++ {
			for j := i + 1; j < len(suppliers); j++ {
				coBidCount[[2]string{suppliers[i], suppliers[j]}]++
			}
		}
	}

	adjacency := map[string]map[string]bool{}
	for pair, count := range coBidCount {
		if count < cfg.CartelMinSharedBids {
			continue
		}
		addEdge(adjacency, pair[0], pair[1])
	}

	var findings []models.Anomaly
	for _, component := range connectedComponents(adjacency) {
		if len(component) < cfg.CartelMinCliqueSize {
			continue
		}
		density := componentDensity(component, adjacency)
		if density < cfg.CartelMinEdgeDensity {
			continue
		}
		findings = append(findings, newAnomaly(
			models.AnomalyCartelClique,
			cartelSeverity(density),
			density,
			component,
			map[string]any{"edge_density": density, "member_count": len(component)},
			fmt.Sprintf("%d suppliers co-bid densely enough (density %.2f) to suggest coordinated bidding", len(component), density),
		))
	}
	return findings
}

func addEdge(adj map[string]map[string]bool, a, b string) {
	if adj[a] == nil {
		adj[a] = map[string]bool{}
	}
	if adj[b] == nil {
		adj[b] = map[string]bool{}
	}
	adj[a][b] = true
	adj[b][a] = true
}

func connectedComponents(adj map[string]map[string]bool) [][]string {
	visited := map[string]bool{}
	var nodes []string
	for n := range adj {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	var components [][]string
	for _, n := range nodes {
		if visited[n] {
			continue
		}
		var component []string
		queue := []string{n}
		visited[n] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			component = append(component, cur)
			var neighbors []string
			for nb := range adj[cur] {
				neighbors = append(neighbors, nb)
			}
			sort.Strings(neighbors)
			for _, nb := range neighbors {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		sort.Strings(component)
		components = append(components, component)
	}
	return components
}

func componentDensity(component []string, adj map[string]map[string]bool) float64 {
	n := len(component)
	if n < 2 {
		return 0
	}
	edges := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if adj[component[i]][component[j]] {
				edges++
			}
		}
	}
	maxEdges := n * (n - 1) / 2
	return float64(edges) / float64(maxEdges)
}

func cartelSeverity(density float64) models.Severity {
	switch {
	case density >= 0.9:
		return models.SeverityCritical
	case density >= 0.8:
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}
