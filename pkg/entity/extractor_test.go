package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)

func TestExtract_CNPJWithPunctuation(t *testing.T) {
	e := New()
	entities := e.Extract("verificar contratos do CNPJ 11.222.333/0001-81 agora", fixedNow)
	require.Len(t, entities.CNPJs, 1)
	assert.Equal(t, "11222333000181", entities.CNPJs[0])
}

func TestExtract_InvalidCNPJChecksumRejected(t *testing.T) {
	e := New()
	entities := e.Extract("CNPJ 11.111.111/1111-11 é inválido", fixedNow)
	assert.Empty(t, entities.CNPJs)
}

func TestExtract_CPF(t *testing.T) {
	e := New()
	entities := e.Extract("o CPF 111.444.777-35 aparece no contrato", fixedNow)
	require.Len(t, entities.CPFs, 1)
	assert.Equal(t, "11144477735", entities.CPFs[0])
}

func TestExtract_MoneyForms(t *testing.T) {
	e := New()
	entities := e.Extract("contratos acima de R$ 1.000.000,00 ou 1,5 milhões ou 500 mil", fixedNow)
	require.Len(t, entities.Money, 3)
	assert.Contains(t, entities.Money, 1_000_000.0)
	assert.Contains(t, entities.Money, 1_500_000.0)
	assert.Contains(t, entities.Money, 500_000.0)
}

func TestExtract_ISODateRange(t *testing.T) {
	e := New()
	entities := e.Extract("contratos entre 2023-01-01 e 2023-06-30", fixedNow)
	require.NotNil(t, entities.DateRange)
	assert.Equal(t, 2023, entities.DateRange.Start.Year())
	assert.Equal(t, time.June, entities.DateRange.End.Month())
}

func TestExtract_RelativeDateRange(t *testing.T) {
	e := New()
	entities := e.Extract("gastos dos últimos 6 meses", fixedNow)
	require.NotNil(t, entities.DateRange)
	assert.Equal(t, fixedNow, entities.DateRange.End)
	assert.Equal(t, fixedNow.AddDate(0, -6, 0), entities.DateRange.Start)
}

func TestExtract_Locations(t *testing.T) {
	e := New()
	entities := e.Extract("gastos do município de Campinas e do estado de Minas Gerais", fixedNow)
	require.NotEmpty(t, entities.Locations)
	var ufs []string
	for _, l := range entities.Locations {
		ufs = append(ufs, l.UF)
	}
	assert.Contains(t, ufs, "SP")
	assert.Contains(t, ufs, "MG")
}

func TestExtract_Categories(t *testing.T) {
	e := New()
	entities := e.Extract("gastos em saúde e educação no último ano", fixedNow)
	assert.Contains(t, entities.Categories, "saúde")
	assert.Contains(t, entities.Categories, "educação")
}

func TestExtract_Organizations(t *testing.T) {
	e := New()
	entities := e.Extract("o Ministério da Saúde e a Prefeitura de Campinas firmaram contrato", fixedNow)
	assert.NotEmpty(t, entities.Organizations)
}

func TestExtract_EmptyQueryIsLegal(t *testing.T) {
	e := New()
	entities := e.Extract("olá", fixedNow)
	assert.True(t, entities.IsEmpty())
}

func TestExtract_CNPJAndCPFAreDisjoint(t *testing.T) {
	e := New()
	entities := e.Extract("CNPJ 11.222.333/0001-81 e CPF 111.444.777-35", fixedNow)
	require.Len(t, entities.CNPJs, 1)
	require.Len(t, entities.CPFs, 1)
	assert.NotEqual(t, entities.CNPJs[0], entities.CPFs[0])
}

func TestExtract_IsDeterministic(t *testing.T) {
	e := New()
	query := "contratos do Ministério da Saúde acima de R$ 500 mil no estado de São Paulo entre 2023-01-01 e 2023-12-31"
	first := e.Extract(query, fixedNow)
	for i := 0; i < 5; i++ {
		again := e.Extract(query, fixedNow)
		require.Equal(t, first, again)
	}
}
