// Package tickets builds vertical (single-race) exotic tickets from blended
// rating/probability pools.
package tickets

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pace146/new-apex/internal/config"
	"github.com/pace146/new-apex/internal/models"
)

// Builder enumerates exacta, trifecta and superfecta tickets per race.
type Builder struct {
	cfg    config.VerticalConfig
	logger *logrus.Logger
}

// NewBuilder creates a vertical ticket builder.
func NewBuilder(cfg config.VerticalConfig, logger *logrus.Logger) *Builder {
	return &Builder{cfg: cfg, logger: logger}
}

// BuildCard builds all vertical tickets for every non-empty race.
func (b *Builder) BuildCard(card *models.Card) []models.Ticket {
	var out []models.Ticket
	for i := range card.Races {
		race := &card.Races[i]
		if race.IsEmpty() {
			continue
		}
		out = append(out, b.BuildRace(race)...)
	}
	return out
}

// BuildRace builds exacta, trifecta and superfecta tickets for one race.
func (b *Builder) BuildRace(race *models.Race) []models.Ticket {
	var out []models.Ticket
	out = append(out, b.buildType(race, models.BetExacta, b.cfg.Exacta)...)
	out = append(out, b.buildType(race, models.BetTrifecta, b.cfg.Trifecta)...)
	out = append(out, b.buildType(race, models.BetSuper, b.cfg.Super)...)
	return out
}

// buildType ranks the field by the bet type's composite score, carves the
// anchor and inclusion pools and enumerates ordered tuples anchor-first.
// Truncation keeps the first tickets in nested-loop enumeration order.
func (b *Builder) buildType(race *models.Race, betType models.BetType, bet config.VerticalBetConfig) []models.Ticket {
	programs := compositeOrder(race, bet.RatingWeight, bet.ProbWeight)

	anchor := poolOf(programs, bet.AnchorSize)
	inclusion := poolOf(programs, bet.InclusionSize)

	combos := enumerate(anchor, inclusion, betType.Positions(), bet.MaxTickets)
	if len(combos) == 0 {
		return nil
	}

	unit := decimal.NewFromFloat(bet.Unit)
	out := make([]models.Ticket, 0, len(combos))
	for _, tuple := range combos {
		out = append(out, models.Ticket{
			Race:     race.Number,
			Type:     betType,
			Programs: tuple,
			Cost:     unit,
		})
	}

	b.logger.WithFields(logrus.Fields{
		"race":    race.Number,
		"type":    betType,
		"tickets": len(out),
	}).Debug("Vertical tickets built")
	return out
}

// compositeOrder returns program numbers ordered by the blended score
// wr*rating + wp*(100*probability) descending. The stable sort keeps input
// order among exact ties, matching min-rank pooling with first-occurrence
// tie-breaks.
func compositeOrder(race *models.Race, ratingWeight, probWeight float64) []int {
	order := make([]int, len(race.Starters))
	scores := make([]float64, len(race.Starters))
	for i, st := range race.Starters {
		order[i] = i
		scores[i] = ratingWeight*st.Rating + probWeight*(100*st.WinProb)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	programs := make([]int, len(order))
	for i, idx := range order {
		programs[i] = race.Starters[idx].Program
	}
	return programs
}

func poolOf(programs []int, size int) []int {
	if size > len(programs) {
		size = len(programs)
	}
	return programs[:size]
}

// enumerate yields ordered tuples with the first position from anchor and
// the rest from pool, excluding repeated programs, stopping at max tickets.
func enumerate(anchor, pool []int, positions, max int) [][]int {
	if positions < 1 {
		return nil
	}
	out := make([][]int, 0)
	combo := make([]int, positions)

	var extend func(depth int) bool
	extend = func(depth int) bool {
		if depth == positions {
			out = append(out, append([]int(nil), combo...))
			return len(out) < max
		}
		for _, p := range pool {
			if containsInt(combo[:depth], p) {
				continue
			}
			combo[depth] = p
			if !extend(depth + 1) {
				return false
			}
		}
		return true
	}

	for _, a := range anchor {
		combo[0] = a
		if !extend(1) {
			break
		}
	}
	return out
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
