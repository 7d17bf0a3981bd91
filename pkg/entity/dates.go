package entity

import (
	"regexp"
	"strconv"
	"time"

	"github.com/cidadaoai/sentinela/pkg/models"
)

var isoDatePattern = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
var brDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
var monthNamePattern = regexp.MustCompile(`(?i)\b(janeiro|fevereiro|março|marco|abril|maio|junho|julho|agosto|setembro|outubro|novembro|dezembro)\s+de\s+(\d{4})\b`)
var relativeMonthsPattern = regexp.MustCompile(`(?i)\búltimos?\s+(\d+)\s+mes(?:es)?\b|\bultimos?\s+(\d+)\s+mes(?:es)?\b`)

var monthIndex = map[string]time.Month{
	"janeiro": time.January, "fevereiro": time.February, "março": time.March, "marco": time.March,
	"abril": time.April, "maio": time.May, "junho": time.June, "julho": time.July,
	"agosto": time.August, "setembro": time.September, "outubro": time.October,
	"novembro": time.November, "dezembro": time.December,
}

// extractDateRange applies the extractors in spec §4.4 order (relative
// first since it spans the widest match, then ISO, then BR, then
// month-name) against reference "now" (a clock the caller controls, so
// extraction stays deterministic in tests). It returns at most one
// DateRange: two absolute dates found anywhere in the text collapse into a
// range spanning them; a single absolute date or month-name widens to that
// unit; a relative expression computes trailing N months from now.
func extractDateRange(text string, now time.Time) (*models.DateRange, []match) {
	if loc := relativeMonthsPattern.FindStringSubmatchIndex(text); loc != nil {
		sub := relativeMonthsPattern.FindStringSubmatch(text)
		n := firstNonEmpty(sub[1], sub[2])
		months, err := strconv.Atoi(n)
		if err == nil && months > 0 {
			start := now.AddDate(0, -months, 0)
			return &models.DateRange{Start: start, End: now}, []match{{start: loc[0], end: loc[1], kind: "date"}}
		}
	}

	var found []time.Time
	var matches []match

	for _, loc := range isoDatePattern.FindAllStringSubmatchIndex(text, -1) {
		y, _ := strconv.Atoi(text[loc[2]:loc[3]])
		mo, _ := strconv.Atoi(text[loc[4]:loc[5]])
		d, _ := strconv.Atoi(text[loc[6]:loc[7]])
		if t, ok := safeDate(y, mo, d); ok {
			found = append(found, t)
			matches = append(matches, match{start: loc[0], end: loc[1], kind: "date"})
		}
	}
	for _, loc := range brDatePattern.FindAllStringSubmatchIndex(text, -1) {
		d, _ := strconv.Atoi(text[loc[2]:loc[3]])
		mo, _ := strconv.Atoi(text[loc[4]:loc[5]])
		y, _ := strconv.Atoi(text[loc[6]:loc[7]])
		if t, ok := safeDate(y, mo, d); ok {
			found = append(found, t)
			matches = append(matches, match{start: loc[0], end: loc[1], kind: "date"})
		}
	}
	for _, loc := range monthNamePattern.FindAllStringSubmatchIndex(text, -1) {
		monthName := normalizeFold(text[loc[2]:loc[3]])
		y, _ := strconv.Atoi(text[loc[4]:loc[5]])
		mo, ok := monthIndex[monthName]
		if !ok {
			continue
		}
		found = append(found, time.Date(y, mo, 1, 0, 0, 0, 0, time.UTC))
		matches = append(matches, match{start: loc[0], end: loc[1], kind: "date"})
	}

	if len(found) == 0 {
		return nil, nil
	}
	start, end := found[0], found[0]
	for _, t := range found[1:] {
		if t.Before(start) {
			start = t
		}
		if t.After(end) {
			end = t
		}
	}
	return &models.DateRange{Start: start, End: end}, matches
}

func safeDate(y, mo, d int) (time.Time, bool) {
	if mo < 1 || mo > 12 || d < 1 || d > 31 || y < 1900 || y > 2200 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	return t, true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
