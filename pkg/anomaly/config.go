// Package anomaly implements the seven statistical detectors that run over
// a frozen EntityGraph to surface spending irregularities (spec §4.8).
// Every analyzer is deterministic given the same graph and Config, runs
// independently of the others, and never panics — a detector bug is the
// orchestrator's concern to catch, not this package's.
package anomaly

// Config carries every analyzer's threshold as a tunable field (spec §4.8:
// "All thresholds listed are defaults and MUST be configurable").
type Config struct {
	PriceDeviationMADMultiplier float64 `yaml:"price_deviation_mad_multiplier" validate:"gt=0"`

	VendorConcentrationFraction float64 `yaml:"vendor_concentration_fraction" validate:"gt=0,lt=1"`

	TemporalSpikeZScore float64 `yaml:"temporal_spike_z_score" validate:"gt=0"`

	DuplicateContractValueTolerance float64 `yaml:"duplicate_contract_value_tolerance" validate:"gt=0,lt=1"`
	DuplicateContractJaccard        float64 `yaml:"duplicate_contract_jaccard" validate:"gt=0,lt=1"`

	PaymentMismatchFraction float64 `yaml:"payment_mismatch_fraction" validate:"gt=0"`

	BenfordMinRecords   int     `yaml:"benford_min_records" validate:"gt=0"`
	BenfordChiSquare    float64 `yaml:"benford_chi_square" validate:"gt=0"`

	CartelMinSharedBids  int     `yaml:"cartel_min_shared_bids" validate:"gt=0"`
	CartelMinCliqueSize  int     `yaml:"cartel_min_clique_size" validate:"gt=0"`
	CartelMinEdgeDensity float64 `yaml:"cartel_min_edge_density" validate:"gt=0,lte=1"`
}

// DefaultConfig returns the spec §4.8 default thresholds.
func DefaultConfig() Config {
	return Config{
		PriceDeviationMADMultiplier:     2.5,
		VendorConcentrationFraction:     0.70,
		TemporalSpikeZScore:             2.0,
		DuplicateContractValueTolerance: 0.05,
		DuplicateContractJaccard:        0.85,
		PaymentMismatchFraction:         0.50,
		BenfordMinRecords:               300,
		BenfordChiSquare:                15.5,
		CartelMinSharedBids:             5,
		CartelMinCliqueSize:             3,
		CartelMinEdgeDensity:            0.7,
	}
}
