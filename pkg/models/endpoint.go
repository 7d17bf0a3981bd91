package models

import "time"

// Capability is a uniform operation an endpoint advertises (spec §4.1,
// glossary). Capabilities are plain strings so the registry can be
// extended with new capabilities without a code change.
type Capability string

const (
	CapabilitySearchContracts  Capability = "search_contracts"
	CapabilityLookupCNPJ       Capability = "lookup_cnpj"
	CapabilityLookupCPF        Capability = "lookup_cpf"
	CapabilityFetchPopulation  Capability = "fetch_population"
	CapabilityFetchBudget      Capability = "fetch_budget"
	CapabilityFetchBiddings    Capability = "fetch_biddings"
	CapabilityFetchPayments    Capability = "fetch_payments"
	CapabilitySearchSanctions  Capability = "search_sanctions"
)

// EndpointCategory partitions registry entries by provider class (spec §3).
type EndpointCategory string

const (
	CategoryFederal  EndpointCategory = "federal"
	CategoryStateTCE EndpointCategory = "state-tce"
	CategoryStateCKAN EndpointCategory = "state-ckan"
	CategoryPortal   EndpointCategory = "portal"
	CategoryExternal EndpointCategory = "external"
)

// APIEndpoint is one entry in the APIRegistry (spec §3/§4.1).
type APIEndpoint struct {
	ID               string           `yaml:"id" validate:"required"`
	Category         EndpointCategory `yaml:"category" validate:"required,oneof=federal state-tce state-ckan portal external"`
	Capabilities     []Capability     `yaml:"capabilities" validate:"required,min=1"`
	RatePerMinute    int              `yaml:"rate_per_minute" validate:"required,min=1"`
	Timeout          time.Duration    `yaml:"timeout" validate:"required"`
	CircuitThreshold int              `yaml:"circuit_threshold" validate:"required,min=1"`
	Fallbacks        []string         `yaml:"fallbacks,omitempty"`
	// UF restricts this endpoint to a single state when Category is
	// state-tce or state-ckan; empty means nation-wide.
	UF string `yaml:"uf,omitempty"`
	// StageEstimate is the registry-declared constant used by the planner
	// to compute ExecutionPlan.EstimatedDuration (spec §4.5).
	StageEstimate time.Duration `yaml:"stage_estimate,omitempty"`
}

// HasCapability reports whether the endpoint advertises cap.
func (e APIEndpoint) HasCapability(cap Capability) bool {
	for _, c := range e.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}
