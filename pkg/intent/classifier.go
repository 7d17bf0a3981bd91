// Package intent classifies a free-text investigation query into one of
// the closed set of models.Intent values (spec §4.3).
package intent

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/cidadaoai/sentinela/pkg/models"
)

// keywordWeight is one scored term in an intent's keyword set.
type keywordWeight struct {
	term   string
	weight float64
}

// defaultKeywords is the rule-based lexicon scored per intent (spec §4.3
// step 2). Terms are Portuguese, matching the query domain (Brazilian
// public-spending transparency).
var defaultKeywords = map[models.Intent][]keywordWeight{
	models.IntentContractAnomalyDetection: {
		{"contrato", 2}, {"contratos", 2}, {"licitação", 2}, {"licitacao", 2},
		{"superfaturamento", 3}, {"sobrepreço", 3}, {"aditivo", 2}, {"pregão", 1.5}, {"pregao", 1.5},
	},
	models.IntentSupplierInvestigation: {
		{"fornecedor", 2.5}, {"fornecedores", 2.5}, {"empresa", 1.5}, {"cnpj", 2}, {"prestador", 1.5},
	},
	models.IntentBudgetAnalysis: {
		{"orçamento", 2.5}, {"orcamento", 2.5}, {"gasto", 2}, {"gastos", 2}, {"despesa", 2}, {"despesas", 2}, {"verba", 1.5},
	},
	models.IntentCorruptionIndicators: {
		{"corrupção", 3}, {"corrupcao", 3}, {"fraude", 3}, {"propina", 3}, {"desvio", 2}, {"cartel", 2.5}, {"irregularidade", 2},
	},
	models.IntentGeographicAnalysis: {
		{"município", 2}, {"municipio", 2}, {"cidade", 1.5}, {"estado", 1.5}, {"região", 1.5}, {"regiao", 1.5},
	},
	models.IntentTemporalAnalysis: {
		{"evolução", 2}, {"evolucao", 2}, {"histórico", 2}, {"historico", 2}, {"ao longo", 1.5}, {"tendência", 2}, {"tendencia", 2},
	},
	models.IntentNetworkAnalysis: {
		{"rede", 2.5}, {"conexão", 2.5}, {"conexao", 2.5}, {"relação", 2}, {"relacao", 2}, {"vínculo", 2}, {"vinculo", 2},
	},
}

var punctuationPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
var whitespacePattern = regexp.MustCompile(`\s+`)

// Normalize lowercases, strips most punctuation, and collapses whitespace
// (spec §4.3 step 1).
func Normalize(query string) string {
	s := strings.ToLower(query)
	s = punctuationPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Classifier scores and classifies queries against a keyword lexicon. The
// zero value uses defaultKeywords.
type Classifier struct {
	keywords map[models.Intent][]keywordWeight
}

// New builds a Classifier using the built-in Portuguese keyword lexicon.
func New() *Classifier {
	return &Classifier{keywords: defaultKeywords}
}

// Classify implements spec §4.3's five-step algorithm. entities is used
// only for the precedence rule in step 3 (CNPJ presence disambiguates
// Contract vs Supplier intent); Classify never extracts entities itself.
func (c *Classifier) Classify(query string, entities models.Entities) models.IntentClassification {
	normalized := Normalize(query)

	scores := make(map[models.Intent]float64, len(c.keywords))
	for _, in := range models.AllIntents {
		if in == models.IntentGeneralInvestigation {
			continue
		}
		scores[in] = score(normalized, c.keywords[in])
	}

	applyPrecedenceRules(scores, normalized, entities)

	nonzero := make(map[models.Intent]float64)
	for in, s := range scores {
		if s > 0 {
			nonzero[in] = s
		}
	}
	if len(nonzero) == 0 {
		return models.IntentClassification{
			Primary:    models.IntentGeneralInvestigation,
			Confidence: 0.5,
		}
	}

	softmaxed := softmax(nonzero)

	type pair struct {
		intent models.Intent
		conf   float64
	}
	ranked := make([]pair, 0, len(softmaxed))
	for in, conf := range softmaxed {
		ranked = append(ranked, pair{in, conf})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].conf != ranked[j].conf {
			return ranked[i].conf > ranked[j].conf
		}
		return ranked[i].intent < ranked[j].intent
	})

	alternatives := make([]models.IntentAlternative, 0, len(ranked)-1)
	for _, p := range ranked[1:] {
		alternatives = append(alternatives, models.IntentAlternative{Intent: p.intent, Confidence: p.conf})
	}

	return models.IntentClassification{
		Primary:      ranked[0].intent,
		Confidence:   ranked[0].conf,
		Alternatives: alternatives,
	}
}

func score(normalized string, terms []keywordWeight) float64 {
	var total float64
	for _, kw := range terms {
		total += float64(strings.Count(normalized, kw.term)) * kw.weight
	}
	return total
}

// applyPrecedenceRules resolves the overlap named in spec §4.3 step 3:
// when both contract and supplier vocabulary fire, a CNPJ in the extracted
// entities tips the balance to SupplierInvestigation; otherwise
// ContractAnomalyDetection keeps its raw score.
func applyPrecedenceRules(scores map[models.Intent]float64, normalized string, entities models.Entities) {
	contractScore := scores[models.IntentContractAnomalyDetection]
	supplierScore := scores[models.IntentSupplierInvestigation]
	if contractScore > 0 && supplierScore > 0 {
		if len(entities.CNPJs) > 0 {
			scores[models.IntentContractAnomalyDetection] = 0
		} else {
			scores[models.IntentSupplierInvestigation] = 0
		}
	}
}

// softmax normalizes scores to [0,1] over only the nonzero entries (spec
// §4.3 step 4).
func softmax(scores map[models.Intent]float64) map[models.Intent]float64 {
	var max float64
	first := true
	for _, s := range scores {
		if first || s > max {
			max = s
			first = false
		}
	}
	var sum float64
	exp := make(map[models.Intent]float64, len(scores))
	for in, s := range scores {
		e := math.Exp(s - max)
		exp[in] = e
		sum += e
	}
	out := make(map[models.Intent]float64, len(scores))
	for in, e := range exp {
		out[in] = e / sum
	}
	return out
}
