package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cidadaoai/sentinela/pkg/models"
	"github.com/cidadaoai/sentinela/pkg/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	endpoints := []models.APIEndpoint{
		{
			ID:               "portal-transparencia",
			Category:         models.CategoryFederal,
			Capabilities:     []models.Capability{models.CapabilitySearchContracts, models.CapabilityFetchBudget},
			RatePerMinute:    60,
			Timeout:          5 * time.Second,
			CircuitThreshold: 5,
			StageEstimate:    2 * time.Second,
		},
		{
			ID:               "receita-federal",
			Category:         models.CategoryFederal,
			Capabilities:     []models.Capability{models.CapabilityLookupCNPJ},
			RatePerMinute:    30,
			Timeout:          3 * time.Second,
			CircuitThreshold: 5,
			StageEstimate:    1 * time.Second,
		},
		{
			ID:               "tce-sp",
			Category:         models.CategoryStateTCE,
			Capabilities:     []models.Capability{models.CapabilityFetchBiddings, models.CapabilitySearchSanctions},
			RatePerMinute:    20,
			Timeout:          4 * time.Second,
			CircuitThreshold: 5,
			UF:               "SP",
			StageEstimate:    3 * time.Second,
		},
		{
			ID:               "ibge-populacao",
			Category:         models.CategoryFederal,
			Capabilities:     []models.Capability{models.CapabilityFetchPopulation},
			RatePerMinute:    30,
			Timeout:          3 * time.Second,
			CircuitThreshold: 5,
			StageEstimate:    1 * time.Second,
		},
	}
	reg, err := registry.New(endpoints)
	require.NoError(t, err)
	return reg
}

func TestPlan_ContractAnomalyDetectionWithFullEntities(t *testing.T) {
	p := New(testRegistry(t))
	entities := models.Entities{
		CNPJs:      []string{"11222333000181"},
		DateRange:  &models.DateRange{Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
		Categories: []string{"saúde"},
		Money:      []float64{500_000},
	}

	got, err := p.Plan(models.IntentContractAnomalyDetection, entities)
	require.NoError(t, err)
	require.Len(t, got.Stages, 2)
	assert.Equal(t, models.CapabilitySearchContracts, got.Stages[0].Capability)
	assert.Equal(t, models.CapabilityLookupCNPJ, got.Stages[1].Capability)
	assert.Equal(t, []string{got.Stages[0].ID}, got.Stages[1].Dependencies)
	assert.True(t, got.Stages[1].Optional)
	assert.True(t, got.Stages[1].Independent)
	assert.Equal(t, 500_000.0, got.Stages[0].Params["min_value"])
}

func TestPlan_SupplierInvestigationWithoutCNPJIsInsufficientContext(t *testing.T) {
	p := New(testRegistry(t))
	_, err := p.Plan(models.IntentSupplierInvestigation, models.Entities{})
	require.Error(t, err)
	var icErr *InsufficientContextError
	require.ErrorAs(t, err, &icErr)
	assert.Equal(t, "lookup-cnpj", icErr.MissingStage)
	assert.Contains(t, icErr.MissingFields, "cnpjs")
}

func TestPlan_OptionalStageSkippedWhenContextMissing(t *testing.T) {
	p := New(testRegistry(t))
	got, err := p.Plan(models.IntentGeneralInvestigation, models.Entities{})
	require.NoError(t, err)
	require.Len(t, got.Stages, 0)
}

func TestPlan_GeographicAnalysisRequiresLocations(t *testing.T) {
	p := New(testRegistry(t))
	_, err := p.Plan(models.IntentGeographicAnalysis, models.Entities{})
	require.Error(t, err)
	var icErr *InsufficientContextError
	require.ErrorAs(t, err, &icErr)
	assert.Equal(t, "fetch-population", icErr.MissingStage)
}

func TestPlan_EstimatedDurationSumsWaveMaxima(t *testing.T) {
	p := New(testRegistry(t))
	entities := models.Entities{
		DateRange: &models.DateRange{Start: time.Now(), End: time.Now()},
	}
	got, err := p.Plan(models.IntentCorruptionIndicators, entities)
	require.NoError(t, err)
	// fetch wave: search_contracts=2s; enrich wave: max(search_sanctions=3s, fetch_biddings=3s)=3s.
	assert.Equal(t, 5*time.Second, got.EstimatedDuration)
}

func TestPlan_UnknownCapabilityContributesZeroEstimate(t *testing.T) {
	reg, err := registry.New(nil)
	require.NoError(t, err)
	p := New(reg)
	got, err := p.Plan(models.IntentBudgetAnalysis, models.Entities{})
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), got.EstimatedDuration)
}

func TestPlan_IsDeterministic(t *testing.T) {
	p := New(testRegistry(t))
	entities := models.Entities{
		CNPJs:      []string{"11222333000181"},
		Categories: []string{"saúde"},
	}
	first, err := p.Plan(models.IntentContractAnomalyDetection, entities)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := p.Plan(models.IntentContractAnomalyDetection, entities)
		require.NoError(t, err)
		require.Equal(t, len(first.Stages), len(again.Stages))
		for i := range first.Stages {
			assert.Equal(t, first.Stages[i].Capability, again.Stages[i].Capability)
			assert.Equal(t, first.Stages[i].Params, again.Stages[i].Params)
		}
		assert.Equal(t, first.EstimatedDuration, again.EstimatedDuration)
	}
}

func TestPlan_UnrecognizedIntentFallsBackToGeneral(t *testing.T) {
	p := New(testRegistry(t))
	got, err := p.Plan(models.Intent("not-a-real-intent"), models.Entities{})
	require.NoError(t, err)
	assert.Empty(t, got.Stages)
}
