package models

import (
	"time"
)

// Location is a Brazilian administrative location: a state (UF) with an
// optional municipality.
type Location struct {
	UF           string `json:"uf"`
	Municipality string `json:"municipality,omitempty"`
}

// DateRange is an inclusive date interval. Invariant: Start is not after
// End when both are set.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Entities is the heterogeneous bag of structured data extracted from a
// free-text query (spec §3). All string-valued sets are normalized:
// trimmed, diacritics preserved, case preserved for display, with a folded
// copy kept internally for matching (see pkg/entity).
type Entities struct {
	CNPJs         []string    `json:"cnpjs,omitempty"`
	CPFs          []string    `json:"cpfs,omitempty"`
	DateRange     *DateRange  `json:"date_range,omitempty"`
	Money         []float64   `json:"money,omitempty"` // ordered sequence of positive decimals, BRL
	Locations     []Location  `json:"locations,omitempty"`
	Organizations []string    `json:"organizations,omitempty"`
	Categories    []string    `json:"categories,omitempty"`
}

// IsEmpty reports whether no entity of any kind was extracted.
func (e Entities) IsEmpty() bool {
	return len(e.CNPJs) == 0 && len(e.CPFs) == 0 && e.DateRange == nil &&
		len(e.Money) == 0 && len(e.Locations) == 0 &&
		len(e.Organizations) == 0 && len(e.Categories) == 0
}

// MoneyMin returns the smallest value in Money, and false if Money is empty.
func (e Entities) MoneyMin() (float64, bool) {
	if len(e.Money) == 0 {
		return 0, false
	}
	min := e.Money[0]
	for _, v := range e.Money[1:] {
		if v < min {
			min = v
		}
	}
	return min, true
}
