// Package graph builds the unified EntityGraph from raw per-endpoint
// results, resolving each payload's shape by capability, assigning
// canonical node identities, merging duplicates on ingest, and freezing
// the result for read-only querying (spec §4.7).
package graph

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cidadaoai/sentinela/pkg/models"
)

// ErrFrozen is returned by any mutating method called after Freeze.
var ErrFrozen = errors.New("graph: already frozen")

// Graph is the mutable builder for an EntityGraph. The zero value is not
// ready to use; call New. Safe for concurrent Ingest calls before Freeze —
// the federation executor ingests stage records as they arrive, possibly
// from multiple in-flight stages.
type Graph struct {
	mu     sync.Mutex
	frozen bool

	nodes    map[string]models.GraphNode
	nodeOrder []string

	edges    map[string]models.GraphEdge // keyed by from|to|relationship
	edgeOrder []string
}

// New builds an empty, mutable Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]models.GraphNode),
		edges: make(map[string]models.GraphEdge),
	}
}

// mapper shapes one RawResult payload into nodes and edges. Keyed by
// capability (spec §4.7 "shape mappers keyed by (endpointId, capability)"
// simplifies to capability alone: every endpoint advertising a capability
// is expected to normalize its payload to that capability's documented
// field names before reaching the graph — see DESIGN.md Open Questions).
type mapper func(result models.RawResult) ([]models.GraphNode, []models.GraphEdge, error)

var mappers = map[models.Capability]mapper{
	models.CapabilitySearchContracts: mapContracts,
	models.CapabilityLookupCNPJ:      mapSupplier,
	models.CapabilityLookupCPF:       mapPerson,
	models.CapabilityFetchBudget:     mapBudget,
	models.CapabilityFetchBiddings:   mapBiddings,
	models.CapabilitySearchSanctions: mapSanctions,
	models.CapabilityFetchPayments:   mapPayments,
	models.CapabilityFetchPopulation: mapPopulation,
}

// Ingest maps one RawResult into nodes/edges using the mapper registered
// for capability and merges them into the graph (spec §4.7). Unknown
// capabilities are a no-op, not an error — a registry extended with a new
// capability shouldn't need a corresponding graph-mapper release lockstep;
// it just contributes no graph structure until one is written.
func (g *Graph) Ingest(capability models.Capability, result models.RawResult) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.frozen {
		return ErrFrozen
	}

	m, ok := mappers[capability]
	if !ok {
		return nil
	}
	nodes, edges, err := m(result)
	if err != nil {
		return fmt.Errorf("graph: mapping %s payload from %s: %w", capability, result.SourceEndpointID, err)
	}

	for _, n := range nodes {
		g.mergeNode(n, result.SourceEndpointID)
	}
	for _, e := range edges {
		g.mergeEdge(e, result.SourceEndpointID)
	}
	return nil
}

// mergeNode implements spec §4.7's dedup/merge-on-ingest rule: attributes
// merge by set-union for slice-valued entries and newest-wins (by arrival
// order) for scalars; provenance always unions.
func (g *Graph) mergeNode(n models.GraphNode, source string) {
	n.Provenance = unionProvenance(n.Provenance, source)
	existing, ok := g.nodes[n.NodeID]
	if !ok {
		g.nodes[n.NodeID] = n
		g.nodeOrder = append(g.nodeOrder, n.NodeID)
		return
	}
	merged := existing
	merged.Attributes = mergeAttributes(existing.Attributes, n.Attributes)
	merged.Provenance = unionProvenance(existing.Provenance, n.Provenance...)
	g.nodes[n.NodeID] = merged
}

// mergeEdge implements spec §4.7's edge-merge rule: a duplicate
// (From, To, Relationship) triple collapses into one edge, incrementing
// Weight and unioning Provenance, instead of producing a parallel edge.
func (g *Graph) mergeEdge(e models.GraphEdge, source string) {
	e.Provenance = unionProvenance(e.Provenance, source)
	key := edgeKey(e.From, e.To, e.Relationship)
	existing, ok := g.edges[key]
	if !ok {
		if e.Weight == 0 {
			e.Weight = 1
		}
		g.edges[key] = e
		g.edgeOrder = append(g.edgeOrder, key)
		return
	}
	merged := existing
	merged.Weight += maxInt(e.Weight, 1)
	merged.Attributes = mergeAttributes(existing.Attributes, e.Attributes)
	merged.Provenance = unionProvenance(existing.Provenance, e.Provenance...)
	g.edges[key] = merged
}

func edgeKey(from, to string, rel models.Relationship) string {
	return from + "|" + to + "|" + string(rel)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func unionProvenance(existing []string, add ...string) []string {
	seen := make(map[string]bool, len(existing))
	out := make([]string, 0, len(existing)+len(add))
	for _, p := range existing {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, p := range add {
		if p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// mergeAttributes unions slice-valued attributes and lets the newer value
// win for everything else (spec §4.7).
func mergeAttributes(existing, incoming map[string]any) map[string]any {
	if len(existing) == 0 {
		return incoming
	}
	if len(incoming) == 0 {
		return existing
	}
	out := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range incoming {
		old, ok := out[k]
		if !ok {
			out[k] = v
			continue
		}
		if oldSlice, ok := old.([]any); ok {
			if newSlice, ok := v.([]any); ok {
				out[k] = unionAny(oldSlice, newSlice)
				continue
			}
		}
		out[k] = v
	}
	return out
}

func unionAny(a, b []any) []any {
	seen := make(map[any]bool, len(a))
	out := make([]any, 0, len(a)+len(b))
	for _, v := range a {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Freeze makes the graph read-only; every subsequent Ingest returns
// ErrFrozen (spec §4.7).
func (g *Graph) Freeze() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frozen = true
}

// Frozen reports whether Freeze has been called.
func (g *Graph) Frozen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frozen
}

// NodesByType returns every node of the given type, in canonical (sorted
// by NodeID) order for deterministic output.
func (g *Graph) NodesByType(t models.NodeType) []models.GraphNode {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []models.GraphNode
	for _, id := range g.sortedNodeIDs() {
		n := g.nodes[id]
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// EdgesByRelationship returns every edge of the given relationship, in
// canonical order.
func (g *Graph) EdgesByRelationship(rel models.Relationship) []models.GraphEdge {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []models.GraphEdge
	for _, key := range g.sortedEdgeKeys() {
		e := g.edges[key]
		if e.Relationship == rel {
			out = append(out, e)
		}
	}
	return out
}

// Neighbors returns the node ids directly reachable from nodeID, optionally
// filtered to a single relationship (pass "" for all relationships).
// Traversal is direction-aware: only outgoing edges (From == nodeID) count.
func (g *Graph) Neighbors(nodeID string, rel models.Relationship) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, key := range g.sortedEdgeKeys() {
		e := g.edges[key]
		if e.From != nodeID {
			continue
		}
		if rel != "" && e.Relationship != rel {
			continue
		}
		out = append(out, e.To)
	}
	return out
}

// ShortestPath returns the node-id path from a to b with the fewest edges,
// exploring at most maxHops, or nil if no such path exists. Ties among
// equal-length paths resolve to the lexicographically smallest next hop,
// for deterministic output.
func (g *Graph) ShortestPath(a, b string, maxHops int) []string {
	g.mu.Lock()
	adjacency := g.adjacency()
	g.mu.Unlock()

	if a == b {
		return []string{a}
	}

	type frame struct {
		node string
		path []string
	}
	visited := map[string]bool{a: true}
	queue := []frame{{node: a, path: []string{a}}}

	for hop := 0; hop < maxHops && len(queue) > 0; hop++ {
		var next []frame
		for _, f := range queue {
			neighbors := append([]string(nil), adjacency[f.node]...)
			sort.Strings(neighbors)
			for _, n := range neighbors {
				if visited[n] {
					continue
				}
				path := append(append([]string(nil), f.path...), n)
				if n == b {
					return path
				}
				visited[n] = true
				next = append(next, frame{node: n, path: path})
			}
		}
		queue = next
	}
	return nil
}

func (g *Graph) adjacency() map[string][]string {
	adj := make(map[string][]string)
	for _, e := range g.edges {
		adj[e.From] = append(adj[e.From], e.To)
	}
	return adj
}

// Summary returns the serializable projection attached to an
// InvestigationResult (spec §6.4).
func (g *Graph) Summary() models.GraphSummary {
	g.mu.Lock()
	defer g.mu.Unlock()
	byNode := map[string]int{}
	for _, n := range g.nodes {
		byNode[string(n.Type)]++
	}
	byEdge := map[string]int{}
	for _, e := range g.edges {
		byEdge[string(e.Relationship)]++
	}
	return models.GraphSummary{
		NodeCount:  len(g.nodes),
		EdgeCount:  len(g.edges),
		ByNodeType: byNode,
		ByEdgeType: byEdge,
	}
}

// Nodes returns every node in canonical order, for serialization.
func (g *Graph) Nodes() []models.GraphNode {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.GraphNode, 0, len(g.nodes))
	for _, id := range g.sortedNodeIDs() {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns every edge in canonical order, for serialization.
func (g *Graph) Edges() []models.GraphEdge {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.GraphEdge, 0, len(g.edges))
	for _, key := range g.sortedEdgeKeys() {
		out = append(out, g.edges[key])
	}
	return out
}

func (g *Graph) sortedNodeIDs() []string {
	ids := append([]string(nil), g.nodeOrder...)
	sort.Strings(ids)
	return ids
}

func (g *Graph) sortedEdgeKeys() []string {
	keys := append([]string(nil), g.edgeOrder...)
	sort.Strings(keys)
	return keys
}
