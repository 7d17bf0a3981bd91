package config

import (
	"time"

	"github.com/cidadaoai/sentinela/pkg/models"
)

// BuiltinEndpoints returns the illustrative seed catalog referenced by
// SPEC_FULL.md §3.4: endpoints are modeled on real Brazilian transparency
// data-source categories (federal, state-tce, state-ckan, portal) but name
// no real URL — this is fixture data for the example entrypoint and for
// planner/executor tests, not a claim of production endpoints.
func BuiltinEndpoints() []models.APIEndpoint {
	return []models.APIEndpoint{
		{
			ID:               "federal-contracts",
			Category:         models.CategoryFederal,
			Capabilities:     []models.Capability{models.CapabilitySearchContracts, models.CapabilityFetchBiddings},
			RatePerMinute:    600,
			Timeout:          8 * time.Second,
			CircuitThreshold: 3,
			StageEstimate:    2 * time.Second,
			Fallbacks:        []string{"portal-ckan-contracts"},
		},
		{
			ID:               "federal-payments",
			Category:         models.CategoryFederal,
			Capabilities:     []models.Capability{models.CapabilityFetchPayments},
			RatePerMinute:    600,
			Timeout:          8 * time.Second,
			CircuitThreshold: 3,
			StageEstimate:    2 * time.Second,
		},
		{
			ID:               "federal-budget",
			Category:         models.CategoryFederal,
			Capabilities:     []models.Capability{models.CapabilityFetchBudget},
			RatePerMinute:    300,
			Timeout:          6 * time.Second,
			CircuitThreshold: 3,
			StageEstimate:    1500 * time.Millisecond,
		},
		{
			ID:               "federal-population",
			Category:         models.CategoryFederal,
			Capabilities:     []models.Capability{models.CapabilityFetchPopulation},
			RatePerMinute:    120,
			Timeout:          5 * time.Second,
			CircuitThreshold: 3,
			StageEstimate:    time.Second,
		},
		{
			ID:               "receita-federal-cnpj",
			Category:         models.CategoryFederal,
			Capabilities:     []models.Capability{models.CapabilityLookupCNPJ},
			RatePerMinute:    300,
			Timeout:          4 * time.Second,
			CircuitThreshold: 3,
			StageEstimate:    time.Second,
			Fallbacks:        []string{"receita-federal-cpf"},
		},
		{
			ID:               "receita-federal-cpf",
			Category:         models.CategoryFederal,
			Capabilities:     []models.Capability{models.CapabilityLookupCPF},
			RatePerMinute:    300,
			Timeout:          4 * time.Second,
			CircuitThreshold: 3,
			StageEstimate:    time.Second,
		},
		{
			ID:               "cgu-sanctions",
			Category:         models.CategoryFederal,
			Capabilities:     []models.Capability{models.CapabilitySearchSanctions},
			RatePerMinute:    180,
			Timeout:          6 * time.Second,
			CircuitThreshold: 3,
			StageEstimate:    2 * time.Second,
		},
		{
			ID:               "tce-sp-contracts",
			Category:         models.CategoryStateTCE,
			UF:               "SP",
			Capabilities:     []models.Capability{models.CapabilitySearchContracts, models.CapabilityFetchBiddings},
			RatePerMinute:    120,
			Timeout:          10 * time.Second,
			CircuitThreshold: 3,
			StageEstimate:    3 * time.Second,
		},
		{
			ID:               "tce-mg-contracts",
			Category:         models.CategoryStateTCE,
			UF:               "MG",
			Capabilities:     []models.Capability{models.CapabilitySearchContracts},
			RatePerMinute:    90,
			Timeout:          10 * time.Second,
			CircuitThreshold: 3,
			StageEstimate:    3 * time.Second,
		},
		{
			ID:               "tce-rs-contracts",
			Category:         models.CategoryStateTCE,
			UF:               "RS",
			Capabilities:     []models.Capability{models.CapabilitySearchContracts},
			RatePerMinute:    90,
			Timeout:          10 * time.Second,
			CircuitThreshold: 3,
			StageEstimate:    3 * time.Second,
		},
		{
			ID:               "portal-ckan-contracts",
			Category:         models.CategoryStateCKAN,
			Capabilities:     []models.Capability{models.CapabilitySearchContracts},
			RatePerMinute:    60,
			Timeout:          12 * time.Second,
			CircuitThreshold: 3,
			StageEstimate:    4 * time.Second,
		},
		{
			ID:               "portal-transparencia-municipal",
			Category:         models.CategoryPortal,
			Capabilities:     []models.Capability{models.CapabilitySearchContracts, models.CapabilityFetchPayments},
			RatePerMinute:    60,
			Timeout:          12 * time.Second,
			CircuitThreshold: 3,
			StageEstimate:    4 * time.Second,
			Fallbacks:        []string{"portal-ckan-contracts"},
		},
	}
}
