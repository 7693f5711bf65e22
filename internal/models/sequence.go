package models

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Sequence is a horizontal wager spanning a contiguous run of races.
// Legs hold the qualifying program numbers per race in span order; the
// trimming algorithm mutates legs and unit before the sequence is finalized.
type Sequence struct {
	Name      string
	StartRace int
	EndRace   int
	Unit      decimal.Decimal
	Combos    int
	Cost      decimal.Decimal
	Legs      [][]int
	Notes     []string
}

// LegsString renders the legs in slash/comma notation, e.g. "1,3 / 2 / 4,5".
func (s Sequence) LegsString() string {
	legs := make([]string, 0, len(s.Legs))
	for _, leg := range s.Legs {
		parts := make([]string, 0, len(leg))
		for _, p := range leg {
			parts = append(parts, strconv.Itoa(p))
		}
		legs = append(legs, strings.Join(parts, ","))
	}
	return strings.Join(legs, " / ")
}

// NotesString joins the structural notes for tabular output.
func (s Sequence) NotesString() string {
	return strings.Join(s.Notes, "; ")
}
