// Package registry holds the immutable, capability-indexed catalog of
// federal, state, and portal APIs the planner and executor draw from (spec
// §3/§4.1). A Registry is built once at startup via New and validated
// fail-fast; nothing mutates it afterward, so callers never need to
// synchronize reads.
package registry

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/cidadaoai/sentinela/pkg/models"
)

var validate = validator.New()

// Registry is the immutable catalog of API endpoints, indexed by id and by
// capability for O(1)/O(k) lookups (spec §4.1).
type Registry struct {
	byID         map[string]models.APIEndpoint
	byCapability map[models.Capability][]models.APIEndpoint
	ordered      []models.APIEndpoint
}

// categoryPriority orders endpoint categories for deterministic tie-breaking
// in ByCapability (spec §4.1): federal sources are authoritative, state
// sources next, portals and external sources last.
var categoryPriority = map[models.EndpointCategory]int{
	models.CategoryFederal:   0,
	models.CategoryStateTCE:  1,
	models.CategoryStateCKAN: 2,
	models.CategoryPortal:    3,
	models.CategoryExternal:  4,
}

// New validates and indexes endpoints, returning an error that names every
// offending endpoint id if validation fails (spec §4.1 fail-fast
// construction). Validation covers: struct tags (required fields, known
// category), unique ids, and fallback references resolving to ids actually
// present in the set with no cycles.
func New(endpoints []models.APIEndpoint) (*Registry, error) {
	byID := make(map[string]models.APIEndpoint, len(endpoints))
	var errs []string

	for _, ep := range endpoints {
		if err := validate.Struct(ep); err != nil {
			errs = append(errs, fmt.Sprintf("endpoint %q: %v", ep.ID, err))
			continue
		}
		if _, dup := byID[ep.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate endpoint id %q", ep.ID))
			continue
		}
		byID[ep.ID] = ep
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("registry invalid: %v", errs)
	}

	for _, ep := range endpoints {
		for _, fb := range ep.Fallbacks {
			if _, ok := byID[fb]; !ok {
				errs = append(errs, fmt.Sprintf("endpoint %q: unknown fallback %q", ep.ID, fb))
			}
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("registry invalid: %v", errs)
	}

	for _, ep := range endpoints {
		if cycle := findFallbackCycle(ep.ID, byID, map[string]bool{}); cycle != "" {
			errs = append(errs, fmt.Sprintf("fallback cycle detected: %s", cycle))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("registry invalid: %v", errs)
	}

	ordered := make([]models.APIEndpoint, 0, len(endpoints))
	for _, ep := range endpoints {
		ordered = append(ordered, ep)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	byCapability := make(map[models.Capability][]models.APIEndpoint)
	for _, ep := range ordered {
		for _, cap := range ep.Capabilities {
			byCapability[cap] = append(byCapability[cap], ep)
		}
	}
	for cap, eps := range byCapability {
		sortByPriority(eps)
		byCapability[cap] = eps
	}

	return &Registry{byID: byID, byCapability: byCapability, ordered: ordered}, nil
}

func findFallbackCycle(start string, byID map[string]models.APIEndpoint, visited map[string]bool) string {
	if visited[start] {
		return start
	}
	visited[start] = true
	ep, ok := byID[start]
	if !ok {
		return ""
	}
	for _, fb := range ep.Fallbacks {
		if cycle := findFallbackCycle(fb, byID, visited); cycle != "" {
			return start + "->" + cycle
		}
	}
	delete(visited, start)
	return ""
}

// sortByPriority orders endpoints by category priority, then by descending
// rate limit (prefer the endpoint with more headroom), then by id for full
// determinism (spec §4.1).
func sortByPriority(eps []models.APIEndpoint) {
	sort.Slice(eps, func(i, j int) bool {
		pi, pj := categoryPriority[eps[i].Category], categoryPriority[eps[j].Category]
		if pi != pj {
			return pi < pj
		}
		if eps[i].RatePerMinute != eps[j].RatePerMinute {
			return eps[i].RatePerMinute > eps[j].RatePerMinute
		}
		return eps[i].ID < eps[j].ID
	})
}

// Lookup returns the endpoint with the given id.
func (r *Registry) Lookup(id string) (models.APIEndpoint, bool) {
	ep, ok := r.byID[id]
	return ep, ok
}

// ByCapability returns every endpoint advertising cap, ordered
// deterministically by category priority, rate limit, and id.
func (r *Registry) ByCapability(cap models.Capability) []models.APIEndpoint {
	eps := r.byCapability[cap]
	out := make([]models.APIEndpoint, len(eps))
	copy(out, eps)
	return out
}

// FallbacksFor returns the resolved fallback chain for an endpoint id, in
// declared order, skipping any id that no longer exists in the registry.
func (r *Registry) FallbacksFor(id string) []models.APIEndpoint {
	ep, ok := r.byID[id]
	if !ok {
		return nil
	}
	out := make([]models.APIEndpoint, 0, len(ep.Fallbacks))
	for _, fb := range ep.Fallbacks {
		if fbEp, ok := r.byID[fb]; ok {
			out = append(out, fbEp)
		}
	}
	return out
}

// All returns every registered endpoint in stable id order.
func (r *Registry) All() []models.APIEndpoint {
	out := make([]models.APIEndpoint, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len reports the number of registered endpoints.
func (r *Registry) Len() int { return len(r.ordered) }
