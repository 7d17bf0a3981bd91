// Package entity extracts structured entities (CNPJ, CPF, dates, money,
// locations, categories, organizations) from free-text investigation
// queries (spec §4.4).
package entity

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cidadaoai/sentinela/pkg/models"
)

// Extractor runs all entity extractors against a query. The zero value is
// ready to use.
type Extractor struct{}

// New builds an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract runs every extractor independently and resolves numeric-span
// overlaps (spec §4.4): CNPJ, CPF, money, and date candidates can contend
// for the same digit run, so among those four kinds the longest match wins
// with ties broken by extractor priority (CNPJ, CPF, Dates, Money — the
// order spec §4.4 lists them in). Locations, organizations, and categories
// match disjoint vocabulary and never contend with the numeric kinds or
// each other. now is the reference clock for relative date expressions
// ("últimos 6 meses"); callers pass time.Now() in production and a fixed
// time in tests for determinism.
func (e *Extractor) Extract(query string, now time.Time) models.Entities {
	normalized := normalizeForExtraction(query)

	cnpjs, cnpjMatches := extractCNPJs(normalized)
	cpfs, cpfMatches := extractCPFs(normalized)
	dateRange, dateMatches := extractDateRange(normalized, now)
	money, moneyMatches := extractMoney(normalized)

	cnpjs, cpfs, dateRange, money = resolveNumericOverlaps(
		cnpjs, cnpjMatches, cpfs, cpfMatches, dateRange, dateMatches, money, moneyMatches)

	locations, _ := extractLocations(normalized, query)
	organizations, _ := extractOrganizations(query, normalized)
	categories := extractCategories(normalized)

	return models.Entities{
		CNPJs:         cnpjs,
		CPFs:          cpfs,
		DateRange:     dateRange,
		Money:         money,
		Locations:     locations,
		Organizations: organizations,
		Categories:    categories,
	}
}

// normalizeForExtraction lowercases but — unlike intent.Normalize — keeps
// all punctuation and digit separators, since CNPJ/CPF/date/money patterns
// depend on '.', '/', '-', and ','.
func normalizeForExtraction(s string) string {
	return strings.ToLower(s)
}

// priorityOf ranks extractor kinds per spec §4.4's listed order (CNPJ,
// CPF, Dates, Money) for tie-breaking equal-length overlapping spans.
func priorityOf(kind string) int {
	switch kind {
	case "cnpj":
		return 0
	case "cpf":
		return 1
	case "date":
		return 2
	case "money":
		return 3
	default:
		return 99
	}
}

// resolveNumericOverlaps implements spec §4.4's overlap policy: among
// candidate spans from extractors that can contend for the same digit run,
// the longest match wins; ties break by extractor priority. CNPJ, CPF, and
// Money are removed at occurrence granularity (a defeated occurrence drops
// only that value, not the whole kind). A DateRange is atomic — it is kept
// only if its single longest contributing match survives; any other
// contributing match losing doesn't affect a range that already subsumed
// it into a wider span.
func resolveNumericOverlaps(
	cnpjs []string, cnpjMatches []match,
	cpfs []string, cpfMatches []match,
	dateRange *models.DateRange, dateMatches []match,
	money []float64, moneyMatches []match,
) ([]string, []string, *models.DateRange, []float64) {
	all := make([]match, 0, len(cnpjMatches)+len(cpfMatches)+len(dateMatches)+len(moneyMatches))
	all = append(all, cnpjMatches...)
	all = append(all, cpfMatches...)
	all = append(all, dateMatches...)
	all = append(all, moneyMatches...)
	if len(all) < 2 {
		return cnpjs, cpfs, dateRange, money
	}

	sort.Slice(all, func(i, j int) bool {
		li, lj := all[i].end-all[i].start, all[j].end-all[j].start
		if li != lj {
			return li > lj
		}
		return priorityOf(all[i].kind) < priorityOf(all[j].kind)
	})

	var kept []match
	for _, c := range all {
		overlaps := false
		for _, k := range kept {
			if c.start < k.end && k.start < c.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}

	keptValues := map[string]map[string]bool{"cnpj": {}, "cpf": {}, "money": {}}
	dateSurvived := len(dateMatches) == 0
	for _, k := range kept {
		if k.kind == "date" {
			dateSurvived = true
			continue
		}
		keptValues[k.kind][k.value] = true
	}

	cnpjs = filterSurviving(cnpjs, keptValues["cnpj"])
	cpfs = filterSurviving(cpfs, keptValues["cpf"])
	money = filterSurvivingFloats(money, keptValues["money"])
	if !dateSurvived {
		dateRange = nil
	}
	return cnpjs, cpfs, dateRange, money
}

func filterSurviving(values []string, kept map[string]bool) []string {
	if len(values) == 0 {
		return values
	}
	out := values[:0:0]
	for _, v := range values {
		if kept[v] {
			out = append(out, v)
		}
	}
	return out
}

func filterSurvivingFloats(values []float64, kept map[string]bool) []float64 {
	if len(values) == 0 {
		return values
	}
	out := values[:0:0]
	for _, v := range values {
		if kept[strconv.FormatFloat(v, 'f', -1, 64)] {
			out = append(out, v)
		}
	}
	return out
}
