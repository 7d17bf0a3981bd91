// Package plan builds an ExecutionPlan from an (Intent, Entities) pair
// using a fixed per-intent stage template (spec §4.5).
package plan

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cidadaoai/sentinela/pkg/models"
	"github.com/cidadaoai/sentinela/pkg/registry"
)

// InsufficientContextError is returned when a non-optional template stage
// cannot have its required parameters filled from the extracted entities
// (spec §4.5).
type InsufficientContextError struct {
	Intent       models.Intent
	MissingStage string
	MissingFields []string
}

func (e *InsufficientContextError) Error() string {
	return fmt.Sprintf("insufficient context for intent %s: stage %s missing fields %v",
		e.Intent, e.MissingStage, e.MissingFields)
}

// stageTemplate is one entry in a per-intent plan template (spec §4.5).
type stageTemplate struct {
	idSuffix     string
	stageType    models.StageType
	capability   models.Capability
	dependsOn    []string
	requires     []string // entity fields that must be non-empty to fill params
	optional     bool
	critical     bool
	independent  bool
	fillParams   func(models.Entities) map[string]any
}

// templates is the closed per-intent plan template set (spec §4.5). Every
// intent in models.AllIntents except GeneralInvestigation has an explicit
// template; GeneralInvestigation uses the fallback template.
var templates = map[models.Intent][]stageTemplate{
	models.IntentContractAnomalyDetection: {
		{
			idSuffix:   "search-contracts",
			stageType:  models.StageTypeFetch,
			capability: models.CapabilitySearchContracts,
			critical:   true,
			fillParams: fillFromDateLocationCategoryMoney,
		},
		{
			idSuffix:    "enrich-cnpj",
			stageType:   models.StageTypeEnrich,
			capability:  models.CapabilityLookupCNPJ,
			dependsOn:   []string{"search-contracts"},
			optional:    true,
			independent: true,
			fillParams:  fillFromCNPJs,
		},
	},
	models.IntentSupplierInvestigation: {
		{
			idSuffix:   "lookup-cnpj",
			stageType:  models.StageTypeFetch,
			capability: models.CapabilityLookupCNPJ,
			requires:   []string{"cnpjs"},
			critical:   true,
			fillParams: fillFromCNPJs,
		},
		{
			idSuffix:   "search-contracts",
			stageType:  models.StageTypeEnrich,
			capability: models.CapabilitySearchContracts,
			dependsOn:  []string{"lookup-cnpj"},
			fillParams: fillFromCNPJs,
		},
	},
	models.IntentBudgetAnalysis: {
		{
			idSuffix:   "fetch-budget",
			stageType:  models.StageTypeFetch,
			capability: models.CapabilityFetchBudget,
			critical:   true,
			fillParams: fillFromDateLocationCategoryMoney,
		},
	},
	models.IntentCorruptionIndicators: {
		{
			idSuffix:   "search-contracts",
			stageType:  models.StageTypeFetch,
			capability: models.CapabilitySearchContracts,
			critical:   true,
			fillParams: fillFromDateLocationCategoryMoney,
		},
		{
			idSuffix:   "search-sanctions",
			stageType:  models.StageTypeEnrich,
			capability: models.CapabilitySearchSanctions,
			dependsOn:  []string{"search-contracts"},
			optional:   true,
			fillParams: fillFromCNPJs,
		},
		{
			idSuffix:   "fetch-biddings",
			stageType:  models.StageTypeEnrich,
			capability: models.CapabilityFetchBiddings,
			dependsOn:  []string{"search-contracts"},
			optional:   true,
			fillParams: fillFromDateLocationCategoryMoney,
		},
	},
	models.IntentGeographicAnalysis: {
		{
			idSuffix:   "fetch-population",
			stageType:  models.StageTypeFetch,
			capability: models.CapabilityFetchPopulation,
			requires:   []string{"locations"},
			critical:   true,
			fillParams: fillFromLocations,
		},
		{
			idSuffix:   "search-contracts",
			stageType:  models.StageTypeEnrich,
			capability: models.CapabilitySearchContracts,
			dependsOn:  []string{"fetch-population"},
			fillParams: fillFromDateLocationCategoryMoney,
		},
	},
	models.IntentTemporalAnalysis: {
		{
			idSuffix:   "search-contracts",
			stageType:  models.StageTypeFetch,
			capability: models.CapabilitySearchContracts,
			requires:   []string{"dateRange"},
			critical:   true,
			fillParams: fillFromDateLocationCategoryMoney,
		},
	},
	models.IntentNetworkAnalysis: {
		{
			idSuffix:   "search-contracts",
			stageType:  models.StageTypeFetch,
			capability: models.CapabilitySearchContracts,
			critical:   true,
			fillParams: fillFromDateLocationCategoryMoney,
		},
		{
			idSuffix:   "fetch-biddings",
			stageType:  models.StageTypeEnrich,
			capability: models.CapabilityFetchBiddings,
			dependsOn:  []string{"search-contracts"},
			fillParams: fillFromDateLocationCategoryMoney,
		},
	},
	models.IntentGeneralInvestigation: {
		{
			idSuffix:   "search-contracts",
			stageType:  models.StageTypeFetch,
			capability: models.CapabilitySearchContracts,
			optional:   true,
			fillParams: fillFromDateLocationCategoryMoney,
		},
	},
}

func fillFromDateLocationCategoryMoney(e models.Entities) map[string]any {
	params := map[string]any{}
	if e.DateRange != nil {
		params["start_date"] = e.DateRange.Start
		params["end_date"] = e.DateRange.End
	}
	if len(e.Locations) > 0 {
		params["locations"] = e.Locations
	}
	if len(e.Categories) > 0 {
		params["categories"] = e.Categories
	}
	if min, ok := e.MoneyMin(); ok {
		params["min_value"] = min
	}
	return params
}

func fillFromCNPJs(e models.Entities) map[string]any {
	if len(e.CNPJs) == 0 {
		return map[string]any{}
	}
	return map[string]any{"cnpjs": e.CNPJs}
}

func fillFromLocations(e models.Entities) map[string]any {
	if len(e.Locations) == 0 {
		return map[string]any{}
	}
	return map[string]any{"locations": e.Locations}
}

// hasField reports whether the named entity field is populated, for
// InsufficientContext checks (spec §4.5 "required parameters").
func hasField(e models.Entities, field string) bool {
	switch field {
	case "cnpjs":
		return len(e.CNPJs) > 0
	case "cpfs":
		return len(e.CPFs) > 0
	case "dateRange":
		return e.DateRange != nil
	case "locations":
		return len(e.Locations) > 0
	case "money":
		return len(e.Money) > 0
	case "categories":
		return len(e.Categories) > 0
	default:
		return false
	}
}

// Planner builds ExecutionPlans from a registry of available endpoints and
// their registry-declared stage-estimate constants.
type Planner struct {
	registry *registry.Registry
}

// New builds a Planner backed by reg.
func New(reg *registry.Registry) *Planner {
	return &Planner{registry: reg}
}

// Plan implements spec §4.5: selects the intent's template, fills
// parameters from entities, marks stages skippable or fails fast with
// InsufficientContextError, and computes EstimatedDuration as the sum over
// waves of the max stage estimate within each wave.
func (p *Planner) Plan(in models.Intent, entities models.Entities) (models.ExecutionPlan, error) {
	tmpl, ok := templates[in]
	if !ok {
		tmpl = templates[models.IntentGeneralInvestigation]
	}

	planID := uuid.NewString()
	stages := make([]models.ExecutionStage, 0, len(tmpl))
	idBySuffix := make(map[string]string, len(tmpl))

	for _, st := range tmpl {
		stageID := planID + "-" + st.idSuffix
		idBySuffix[st.idSuffix] = stageID
	}

	for _, st := range tmpl {
		missing := missingFields(entities, st.requires)
		if len(missing) > 0 {
			if st.optional {
				continue
			}
			return models.ExecutionPlan{}, &InsufficientContextError{
				Intent:        in,
				MissingStage:  st.idSuffix,
				MissingFields: missing,
			}
		}

		deps := make([]string, 0, len(st.dependsOn))
		for _, d := range st.dependsOn {
			if id, ok := idBySuffix[d]; ok {
				deps = append(deps, id)
			}
		}

		stages = append(stages, models.ExecutionStage{
			ID:           idBySuffix[st.idSuffix],
			Type:         st.stageType,
			Capability:   st.capability,
			Params:       st.fillParams(entities),
			Dependencies: deps,
			Optional:     st.optional,
			Critical:     st.critical,
			Independent:  st.independent,
		})
	}

	return models.ExecutionPlan{
		PlanID:            planID,
		Intent:            in,
		Stages:            stages,
		EstimatedDuration: p.estimateDuration(stages),
		ParallelismPolicy: models.ParallelismDependencyDriven,
	}, nil
}

func missingFields(entities models.Entities, requires []string) []string {
	var missing []string
	for _, field := range requires {
		if !hasField(entities, field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// estimateDuration sums, over each wave (fetch, enrich, analyze), the
// maximum registry-declared stage estimate among stages in that wave that
// reference capabilities actually present in the registry (spec §4.5).
func (p *Planner) estimateDuration(stages []models.ExecutionStage) time.Duration {
	waveMax := map[models.StageType]time.Duration{}
	for _, s := range stages {
		estimate := p.stageEstimate(s.Capability)
		if estimate > waveMax[s.Type] {
			waveMax[s.Type] = estimate
		}
	}
	var total time.Duration
	for _, waveType := range []models.StageType{models.StageTypeFetch, models.StageTypeEnrich, models.StageTypeAnalyze} {
		total += waveMax[waveType]
	}
	return total
}

func (p *Planner) stageEstimate(cap models.Capability) time.Duration {
	if p.registry == nil {
		return 0
	}
	var best time.Duration
	for _, ep := range p.registry.ByCapability(cap) {
		if ep.StageEstimate > best {
			best = ep.StageEstimate
		}
	}
	return best
}
