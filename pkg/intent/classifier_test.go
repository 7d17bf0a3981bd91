package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cidadaoai/sentinela/pkg/models"
)

func TestNormalize(t *testing.T) {
	got := Normalize("  Contratos,  SUPERFATURAMENTO!!  com   espaços   ")
	assert.Equal(t, "contratos superfaturamento com espaços", got)
}

func TestClassify_NoKeywordsReturnsGeneral(t *testing.T) {
	c := New()
	result := c.Classify("oi tudo bem", models.Entities{})
	assert.Equal(t, models.IntentGeneralInvestigation, result.Primary)
	assert.Equal(t, 0.5, result.Confidence)
	assert.Empty(t, result.Alternatives)
}

func TestClassify_SingleStrongSignal(t *testing.T) {
	c := New()
	result := c.Classify("quero investigar corrupção e propina em licitações", models.Entities{})
	assert.Equal(t, models.IntentCorruptionIndicators, result.Primary)
	assert.Greater(t, result.Confidence, 0.0)
}

func TestClassify_PrecedenceRuleCNPJPrefersSupplier(t *testing.T) {
	c := New()
	query := "quero ver contratos desse fornecedor"
	withCNPJ := c.Classify(query, models.Entities{CNPJs: []string{"11222333000181"}})
	withoutCNPJ := c.Classify(query, models.Entities{})

	assert.Equal(t, models.IntentSupplierInvestigation, withCNPJ.Primary)
	assert.Equal(t, models.IntentContractAnomalyDetection, withoutCNPJ.Primary)
}

func TestClassify_IsDeterministic(t *testing.T) {
	c := New()
	query := "análise de rede de fornecedores e vínculos suspeitos"
	first := c.Classify(query, models.Entities{})
	for i := 0; i < 10; i++ {
		again := c.Classify(query, models.Entities{})
		require.Equal(t, first, again)
	}
}

func TestClassify_ConfidenceSumsToOneAcrossNonzeroIntents(t *testing.T) {
	c := New()
	result := c.Classify("orçamento e gastos do município de São Paulo", models.Entities{})
	total := result.Confidence
	for _, alt := range result.Alternatives {
		total += alt.Confidence
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}
