package anomaly

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cidadaoai/sentinela/pkg/graph"
	"github.com/cidadaoai/sentinela/pkg/models"
)

func contractPayload(number, cnpj, org, category, uf, signedAt string, value, pricePerUnit float64, object string) map[string]any {
	return map[string]any{
		"contract_number":   number,
		"supplier_cnpj":     cnpj,
		"organization_code": org,
		"organization_name": "Secretaria",
		"category":          category,
		"uf":                uf,
		"signed_at":         signedAt,
		"value":             value,
		"price_per_unit":    pricePerUnit,
		"object":            object,
	}
}

func ingestContract(t *testing.T, g *graph.Graph, p map[string]any) {
	t.Helper()
	require.NoError(t, g.Ingest(models.CapabilitySearchContracts, models.RawResult{
		SourceEndpointID: "portal",
		FetchedAt:        time.Now(),
		Payload:          p,
	}))
}

func TestPriceDeviationAnalyzer_FlagsOutlierWithinCohort(t *testing.T) {
	g := graph.New()
	normalPrices := []float64{95, 100, 105, 98, 102}
	for i, price := range normalPrices {
		ingestContract(t, g, contractPayload(itoa(i), "1000000000"+itoa(i), "ORG-1", "saúde", "SP", "2023-05-01", price, price, "insumos"))
	}
	ingestContract(t, g, contractPayload("outlier", "19999999000100", "ORG-1", "saúde", "SP", "2023-05-01", 900, 900, "insumos"))

	findings := priceDeviationAnalyzer{}.Analyze(g, DefaultConfig())
	require.NotEmpty(t, findings)
	assert.Equal(t, models.AnomalyPriceDeviation, findings[0].Kind)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func TestVendorConcentrationAnalyzer_FlagsDominantSupplier(t *testing.T) {
	g := graph.New()
	ingestContract(t, g, contractPayload("c1", "11222333000181", "ORG-1", "saúde", "SP", "2023-01-01", 900, 900, "x"))
	ingestContract(t, g, contractPayload("c2", "22333444000199", "ORG-1", "saúde", "SP", "2023-02-01", 100, 100, "y"))

	findings := vendorConcentrationAnalyzer{}.Analyze(g, DefaultConfig())
	require.Len(t, findings, 1)
	assert.Equal(t, "11222333000181", findings[0].Evidence["top_supplier_cnpj"])
}

func TestVendorConcentrationAnalyzer_NoFindingWhenBalanced(t *testing.T) {
	g := graph.New()
	ingestContract(t, g, contractPayload("c1", "11222333000181", "ORG-1", "saúde", "SP", "2023-01-01", 500, 500, "x"))
	ingestContract(t, g, contractPayload("c2", "22333444000199", "ORG-1", "saúde", "SP", "2023-02-01", 500, 500, "y"))

	findings := vendorConcentrationAnalyzer{}.Analyze(g, DefaultConfig())
	assert.Empty(t, findings)
}

func TestTemporalSpikeAnalyzer_FlagsSpikeMonth(t *testing.T) {
	g := graph.New()
	monthCounts := map[string]int{
		"2022-01": 1, "2022-02": 1, "2022-03": 2,
		"2022-04": 1, "2022-05": 1, "2022-06": 2,
	}
	idx := 0
	for _, m := range []string{"2022-01", "2022-02", "2022-03", "2022-04", "2022-05", "2022-06"} {
		for i := 0; i < monthCounts[m]; i++ {
			ingestContract(t, g, contractPayload("c"+itoa(idx), "1000000000"+itoa(idx), "ORG-1", "saúde", "SP", m+"-01", 100, 100, "x"))
			idx++
		}
	}
	for i := 0; i < 12; i++ {
		ingestContract(t, g, contractPayload("spike"+itoa(i), "2000000000"+itoa(i), "ORG-1", "saúde", "SP", "2022-07-01", 100, 100, "x"))
	}

	findings := temporalSpikeAnalyzer{}.Analyze(g, DefaultConfig())
	require.NotEmpty(t, findings)
	assert.Equal(t, "2022-07", findings[0].Evidence["month"])
}

func TestDuplicateContractAnalyzer_FlagsSimilarContracts(t *testing.T) {
	g := graph.New()
	ingestContract(t, g, contractPayload("c1", "11222333000181", "ORG-1", "saúde", "SP", "2023-01-01", 1000, 1000, "aquisição de seringas descartáveis para postos de saúde"))
	ingestContract(t, g, contractPayload("c2", "22333444000199", "ORG-1", "saúde", "SP", "2023-06-01", 1010, 1010, "aquisição de seringas descartáveis para postos de saúde municipal"))

	findings := duplicateContractAnalyzer{}.Analyze(g, DefaultConfig())
	require.Len(t, findings, 1)
	assert.Equal(t, models.SeverityMedium, findings[0].Severity)
}

func TestDuplicateContractAnalyzer_IgnoresDistinctObjects(t *testing.T) {
	g := graph.New()
	ingestContract(t, g, contractPayload("c1", "11222333000181", "ORG-1", "saúde", "SP", "2023-01-01", 1000, 1000, "reforma de telhado da escola municipal"))
	ingestContract(t, g, contractPayload("c2", "22333444000199", "ORG-1", "saúde", "SP", "2023-06-01", 1000, 1000, "compra de merenda escolar para creches"))

	findings := duplicateContractAnalyzer{}.Analyze(g, DefaultConfig())
	assert.Empty(t, findings)
}

func TestPaymentMismatchAnalyzer_FlagsDivergence(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.Ingest(models.CapabilitySearchContracts, models.RawResult{
		Payload: contractPayload("c1", "11222333000181", "ORG-1", "saúde", "SP", "2023-01-01", 1000, 1000, "x"),
	}))
	require.NoError(t, g.Ingest(models.CapabilityFetchPayments, models.RawResult{
		Payload: map[string]any{
			"supplier_cnpj":     "11222333000181",
			"organization_code": "ORG-1",
			"contract_number":   "c1",
			"paid_value":        1800.0,
		},
	}))

	findings := paymentMismatchAnalyzer{}.Analyze(g, DefaultConfig())
	require.Len(t, findings, 1)
	assert.Equal(t, models.SeverityLow, findings[0].Severity)
}

func TestPaymentMismatchAnalyzer_NoFindingWithinTolerance(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.Ingest(models.CapabilitySearchContracts, models.RawResult{
		Payload: contractPayload("c1", "11222333000181", "ORG-1", "saúde", "SP", "2023-01-01", 1000, 1000, "x"),
	}))
	require.NoError(t, g.Ingest(models.CapabilityFetchPayments, models.RawResult{
		Payload: map[string]any{
			"supplier_cnpj":     "11222333000181",
			"organization_code": "ORG-1",
			"contract_number":   "c1",
			"paid_value":        1050.0,
		},
	}))

	findings := paymentMismatchAnalyzer{}.Analyze(g, DefaultConfig())
	assert.Empty(t, findings)
}

func TestBenfordViolationAnalyzer_RequiresMinimumRecords(t *testing.T) {
	g := graph.New()
	for i := 0; i < 10; i++ {
		ingestContract(t, g, contractPayload("c"+itoa(i), "1000000000"+itoa(i), "ORG-1", "saúde", "SP", "2023-01-01", 900, 900, "x"))
	}
	findings := benfordViolationAnalyzer{}.Analyze(g, DefaultConfig())
	assert.Empty(t, findings, "below BenfordMinRecords, analyzer must not flag")
}

func TestBenfordViolationAnalyzer_FlagsSkewedDistribution(t *testing.T) {
	g := graph.New()
	cfg := DefaultConfig()
	cfg.BenfordMinRecords = 50
	for i := 0; i < 60; i++ {
		require.NoError(t, g.Ingest(models.CapabilitySearchContracts, models.RawResult{
			Payload: map[string]any{
				"contract_number":   itoa(i % 10),
				"supplier_cnpj":     "1000000000" + itoa(i%10),
				"organization_code": "ORG-1",
				"value":             900.0,
			},
		}))
	}
	findings := benfordViolationAnalyzer{}.Analyze(g, cfg)
	require.NotEmpty(t, findings)
	assert.Equal(t, models.AnomalyBenfordViolation, findings[0].Kind)
}

func TestCartelCliqueAnalyzer_FlagsDenseCoBiddingCluster(t *testing.T) {
	g := graph.New()
	cfg := DefaultConfig()
	cfg.CartelMinSharedBids = 2
	suppliers := []string{"11111111000101", "22222222000102", "33333333000103"}
	for p := 0; p < 3; p++ {
		require.NoError(t, g.Ingest(models.CapabilityFetchBiddings, models.RawResult{
			Payload: map[string]any{
				"process_number":    "proc-" + itoa(p),
				"organization_code": "ORG-1",
				"bidder_cnpjs":      []any{suppliers[0], suppliers[1], suppliers[2]},
			},
		}))
	}
	findings := cartelCliqueAnalyzer{}.Analyze(g, cfg)
	require.Len(t, findings, 1)
	assert.Equal(t, 3, findings[0].Evidence["member_count"])
}

func TestCartelCliqueAnalyzer_NoFindingBelowThreshold(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.Ingest(models.CapabilityFetchBiddings, models.RawResult{
		Payload: map[string]any{
			"process_number":    "proc-1",
			"organization_code": "ORG-1",
			"bidder_cnpjs":      []any{"11111111000101", "22222222000102"},
		},
	}))
	findings := cartelCliqueAnalyzer{}.Analyze(g, DefaultConfig())
	assert.Empty(t, findings)
}

func TestAnalyzers_AreIndependentAndDeterministic(t *testing.T) {
	g := graph.New()
	ingestContract(t, g, contractPayload("c1", "11222333000181", "ORG-1", "saúde", "SP", "2023-01-01", 900, 900, "x"))
	ingestContract(t, g, contractPayload("c2", "22333444000199", "ORG-1", "saúde", "SP", "2023-02-01", 100, 100, "y"))
	g.Freeze()

	cfg := DefaultConfig()
	for _, az := range Analyzers() {
		first := az.Analyze(g, cfg)
		second := az.Analyze(g, cfg)
		assert.Equal(t, len(first), len(second), "analyzer %s must be deterministic", az.Kind())
	}
}
