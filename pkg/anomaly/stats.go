package anomaly

import (
	"math"
	"sort"
	"strings"
)

// median returns the middle value of a sorted copy of values.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// mad returns the median absolute deviation of values around their median.
func mad(values []float64) float64 {
	m := median(values)
	deviations := make([]float64, len(values))
	for i, v := range values {
		deviations[i] = math.Abs(v - m)
	}
	return median(deviations)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

func zScore(x float64, population []float64) float64 {
	sd := stddev(population)
	if sd == 0 {
		return 0
	}
	return (x - mean(population)) / sd
}

// jaccardSimilarity computes set similarity over lowercased whitespace
// tokens of two description strings (spec §4.8 DuplicateContractAnalyzer).
func jaccardSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	tokens := strings.Fields(strings.ToLower(s))
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

// benfordExpected is the textbook first-digit probability distribution.
var benfordExpected = [9]float64{0.301, 0.176, 0.125, 0.097, 0.079, 0.067, 0.058, 0.051, 0.046}

// leadingDigit returns the first significant digit (1-9) of v, or 0 if v
// has none (zero or negative).
func leadingDigit(v float64) int {
	v = math.Abs(v)
	if v == 0 {
		return 0
	}
	for v < 1 {
		v *= 10
	}
	for v >= 10 {
		v /= 10
	}
	return int(v)
}

// benfordChiSquare computes the chi-square statistic (df=8) comparing the
// observed leading-digit distribution of values against Benford's law
// (spec §4.8 BenfordViolationAnalyzer).
func benfordChiSquare(values []float64) float64 {
	var counts [10]int
	total := 0
	for _, v := range values {
		d := leadingDigit(v)
		if d == 0 {
			continue
		}
		counts[d]++
		total++
	}
	if total == 0 {
		return 0
	}
	var chi float64
	for d := 1; d <= 9; d++ {
		expected := benfordExpected[d-1] * float64(total)
		if expected == 0 {
			continue
		}
		diff := float64(counts[d]) - expected
		chi += diff * diff / expected
	}
	return chi
}
