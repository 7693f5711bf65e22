package models

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// BetType identifies a vertical exotic wager.
type BetType string

const (
	BetExacta   BetType = "EXACTA"
	BetTrifecta BetType = "TRIFECTA"
	BetSuper    BetType = "SUPER"
)

// Positions returns how many finishing positions the bet type covers.
func (b BetType) Positions() int {
	switch b {
	case BetExacta:
		return 2
	case BetTrifecta:
		return 3
	case BetSuper:
		return 4
	}
	return 0
}

// Ticket is a single vertical wager: an ordered tuple of distinct program
// numbers for one race. Generated once, never mutated.
type Ticket struct {
	Race     int
	Type     BetType
	Programs []int
	Cost     decimal.Decimal
}

// String renders the ticket in slash notation, e.g. "3/7/1".
func (t Ticket) String() string {
	parts := make([]string, 0, len(t.Programs))
	for _, p := range t.Programs {
		parts = append(parts, strconv.Itoa(p))
	}
	return strings.Join(parts, "/")
}
