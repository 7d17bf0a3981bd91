package entity

import (
	"regexp"
	"strings"
)

var cnpjPattern = regexp.MustCompile(`\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\d{2}`)
var cpfPattern = regexp.MustCompile(`\d{3}\.?\d{3}\.?\d{3}-?\d{2}`)

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// validCNPJ reports whether a 14-digit string passes the dual modulo-11
// checksum (spec §4.4).
func validCNPJ(digits string) bool {
	if len(digits) != 14 || allSameDigit(digits) {
		return false
	}
	return cnpjCheckDigit(digits, 12) == digits[12] && cnpjCheckDigit(digits, 13) == digits[13]
}

func cnpjCheckDigit(digits string, pos int) byte {
	weights := cnpjWeights(pos)
	sum := 0
	for i, w := range weights {
		d := int(digits[i] - '0')
		sum += d * w
	}
	rem := sum % 11
	if rem < 2 {
		return '0'
	}
	return byte('0' + (11 - rem))
}

func cnpjWeights(pos int) []int {
	if pos == 12 {
		return []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	}
	return []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
}

// validCPF reports whether an 11-digit string passes the dual modulo-11
// checksum (spec §4.4).
func validCPF(digits string) bool {
	if len(digits) != 11 || allSameDigit(digits) {
		return false
	}
	return cpfCheckDigit(digits, 9) == digits[9] && cpfCheckDigit(digits, 10) == digits[10]
}

func cpfCheckDigit(digits string, count int) byte {
	sum := 0
	weight := count + 1
	for i := 0; i < count; i++ {
		sum += int(digits[i]-'0') * weight
		weight--
	}
	rem := (sum * 10) % 11
	if rem == 10 {
		rem = 0
	}
	return byte('0' + rem)
}

func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

// extractCNPJs finds candidate substrings, validates checksums, and
// returns canonical 14-digit CNPJs in first-seen order, deduplicated.
func extractCNPJs(text string) ([]string, []match) {
	return extractChecksummed(text, cnpjPattern, 14, validCNPJ)
}

func extractCPFs(text string) ([]string, []match) {
	return extractChecksummed(text, cpfPattern, 11, validCPF)
}

// match is one occurrence of a candidate entity span, used to resolve
// overlaps between extractors that can contend for the same digit run
// (CNPJ, CPF, dates, money — spec §4.4). value carries the canonical
// string so resolveNumericOverlaps can drop exactly the losing occurrence
// instead of an extractor's entire result set.
type match struct {
	start, end int
	kind       string
	value      string
}

func extractChecksummed(text string, pattern *regexp.Regexp, wantLen int, valid func(string) bool) ([]string, []match) {
	var values []string
	var matches []match
	seen := make(map[string]bool)
	kind := "cpf"
	if wantLen == 14 {
		kind = "cnpj"
	}
	for _, loc := range pattern.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		digits := onlyDigits(raw)
		if len(digits) != wantLen || !valid(digits) {
			continue
		}
		if !seen[digits] {
			seen[digits] = true
			values = append(values, digits)
		}
		matches = append(matches, match{start: loc[0], end: loc[1], kind: kind, value: digits})
	}
	return values, matches
}
