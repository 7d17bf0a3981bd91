package entity

import (
	"regexp"
	"strconv"
	"strings"
)

// moneyPattern matches "R$ 1.000.000,00", "1,5 milhões", "500 mil", and
// bare "R$ 500" forms (spec §4.4).
var moneyPattern = regexp.MustCompile(`(?i)r?\$?\s*\d{1,3}(?:\.\d{3})*(?:,\d+)?\s*(mil|milh[õo]es|bilh[õo]es)?`)

var scaleMultiplier = map[string]float64{
	"mil":      1_000,
	"milhao":   1_000_000,
	"milhão":   1_000_000,
	"milhoes":  1_000_000,
	"milhões":  1_000_000,
	"bilhao":   1_000_000_000,
	"bilhão":   1_000_000_000,
	"bilhoes":  1_000_000_000,
	"bilhões":  1_000_000_000,
}

// extractMoney finds money expressions and normalizes them to a positive
// BRL decimal (spec §4.4). Candidates with no digit at all are discarded.
func extractMoney(text string) ([]float64, []match) {
	var values []float64
	var matches []match
	for _, loc := range moneyPattern.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		if !hasDigit(raw) {
			continue
		}
		v, ok := parseMoney(raw)
		if !ok {
			continue
		}
		values = append(values, v)
		matches = append(matches, match{start: loc[0], end: loc[1], kind: "money", value: strconv.FormatFloat(v, 'f', -1, 64)})
	}
	return values, matches
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func parseMoney(raw string) (float64, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	lower = strings.TrimPrefix(lower, "r$")
	lower = strings.TrimSpace(strings.TrimPrefix(lower, "$"))

	var scale float64 = 1
	for suffix, mult := range scaleMultiplier {
		if strings.HasSuffix(lower, suffix) {
			scale = mult
			lower = strings.TrimSpace(strings.TrimSuffix(lower, suffix))
			break
		}
	}

	numeric := normalizeBRLNumber(lower)
	if numeric == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(numeric, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n * scale, true
}

// normalizeBRLNumber converts "1.000.000,00" or "1,5" (Brazilian decimal
// comma, dot thousands separator) into a Go-parseable decimal string.
func normalizeBRLNumber(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if idx := strings.LastIndex(s, ","); idx >= 0 {
		intPart := strings.ReplaceAll(s[:idx], ".", "")
		fracPart := s[idx+1:]
		return intPart + "." + fracPart
	}
	return strings.ReplaceAll(s, ".", "")
}
