// Package sequence builds horizontal (multi-race) wager sequences under
// bankroll allocation and hard dollar caps.
package sequence

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pace146/new-apex/internal/config"
	"github.com/pace146/new-apex/internal/metrics"
	"github.com/pace146/new-apex/internal/models"
)

const hybridEpsilon = 1e-9

// Builder assembles Daily Double through Pick 6 sequences for a card.
type Builder struct {
	cfg    config.HorizontalConfig
	logger *logrus.Logger
}

// NewBuilder creates a horizontal sequence builder.
func NewBuilder(cfg config.HorizontalConfig, logger *logrus.Logger) *Builder {
	return &Builder{cfg: cfg, logger: logger}
}

// BuildCard builds every configured sequence type whose span fits the card.
// states carries the per-race chaos/single verdicts from classification.
func (b *Builder) BuildCard(card *models.Card, states map[int]models.ChaosState) []models.Sequence {
	if len(card.Races) == 0 {
		return nil
	}

	bankroll := b.effectiveBankroll(card)
	numbers := card.RaceNumbers()
	present := make(map[int]*models.Race, len(numbers))
	for i := range card.Races {
		present[card.Races[i].Number] = &card.Races[i]
	}
	start := numbers[0]

	var out []models.Sequence
	for _, bet := range b.cfg.Bets {
		seq, err := b.build(bet, start, present, states, bankroll)
		if errors.Is(err, models.ErrSequenceUnavailable) {
			metrics.SequencesSkippedTotal.Inc()
			continue
		}
		metrics.SequencesBuiltTotal.WithLabelValues(bet.Name).Inc()
		out = append(out, seq)
	}
	return out
}

// effectiveBankroll scales the base stake by the card confidence multiplier:
// three or more strong legs x1.5, at least one x1.0, none x0.6.
func (b *Builder) effectiveBankroll(card *models.Card) float64 {
	strong := 0
	for i := range card.Races {
		if card.Races[i].TopWinProb() >= b.cfg.StrongLegProbMin {
			strong++
		}
	}
	mult := 0.6
	switch {
	case strong >= 3:
		mult = 1.5
	case strong >= 1:
		mult = 1.0
	}
	b.logger.WithFields(logrus.Fields{
		"strong_legs": strong,
		"multiplier":  mult,
	}).Debug("Card bankroll multiplier")
	return b.cfg.BaseBankroll * mult
}

// build forms one sequence: contiguous span from the card's first race,
// legs from tiers/singles, then trim to the cost cap.
func (b *Builder) build(bet config.HorizontalBetConfig, start int, present map[int]*models.Race, states map[int]models.ChaosState, bankroll float64) (models.Sequence, error) {
	end := start + bet.Legs - 1
	legs := make([][]int, 0, bet.Legs)
	anyChaos, anySingle := false, false

	for r := start; r <= end; r++ {
		race, ok := present[r]
		if !ok {
			b.logger.WithFields(logrus.Fields{"sequence": bet.Name, "race": r}).
				Info("Span exceeds card, skipping sequence")
			return models.Sequence{}, models.ErrSequenceUnavailable
		}
		state := states[r]
		leg := b.legForRace(race, state)
		if len(leg) == 0 {
			b.logger.WithFields(logrus.Fields{"sequence": bet.Name, "race": r}).
				Warn("Empty leg, abandoning sequence")
			return models.Sequence{}, models.ErrSequenceUnavailable
		}
		legs = append(legs, leg)
		anyChaos = anyChaos || state.Chaos
		anySingle = anySingle || state.SingleFavorite != nil
	}

	unit := decimal.NewFromFloat(bet.MinUnit)
	rawCost := unit.Mul(decimal.NewFromInt(int64(combos(legs))))

	allocCap := decimal.NewFromFloat(bankroll).Mul(decimal.NewFromFloat(bet.Allocation))
	hardCap := decimal.NewFromFloat(bet.HardCap)
	costCap := decimal.Min(allocCap, hardCap)

	finalLegs, finalUnit := trimToCap(legs, unit, costCap, unit, bet.MinPerLeg)
	finalCombos := combos(finalLegs)
	cost := finalUnit.Mul(decimal.NewFromInt(int64(finalCombos))).Round(2)

	var notes []string
	if anyChaos {
		notes = append(notes, "Chaos legs spread")
	}
	if anySingle {
		notes = append(notes, "Anchor single")
	}
	if cost.LessThan(rawCost) {
		notes = append(notes, "Trimmed to cap")
		metrics.SequencesTrimmedTotal.Inc()
	}
	if len(notes) == 0 {
		notes = []string{"Standard structure"}
	}

	if cost.GreaterThan(costCap) {
		// Leg floors beat the cap: the cap is advisory from here on and the
		// over-cap sequence is still emitted.
		metrics.SequencesOverCapTotal.Inc()
		b.logger.WithFields(logrus.Fields{
			"sequence": bet.Name,
			"cost":     cost.StringFixed(2),
			"cap":      costCap.StringFixed(2),
		}).Warn("Sequence over cap after reaching leg floors")
	}

	return models.Sequence{
		Name:      bet.Name,
		StartRace: start,
		EndRace:   end,
		Unit:      finalUnit.Round(2),
		Combos:    finalCombos,
		Cost:      cost,
		Legs:      finalLegs,
		Notes:     notes,
	}, nil
}

// legForRace picks the qualifying programs: the single favorite alone when
// detected, otherwise tier A+B (A+B+C under chaos) ordered tier-first then
// hybrid score descending, capped at the leg length limit.
func (b *Builder) legForRace(race *models.Race, state models.ChaosState) []int {
	if state.SingleFavorite != nil {
		return []int{state.SingleFavorite.Program}
	}

	keep := make([]int, 0, len(race.Starters))
	for i, st := range race.Starters {
		if st.Tier == models.TierA || st.Tier == models.TierB || (state.Chaos && st.Tier == models.TierC) {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil
	}

	// Hybrid score normalizes rating over the kept candidates only.
	minRating := race.Starters[keep[0]].Rating
	maxRating := minRating
	for _, i := range keep[1:] {
		r := race.Starters[i].Rating
		if r < minRating {
			minRating = r
		}
		if r > maxRating {
			maxRating = r
		}
	}
	span := maxRating - minRating + hybridEpsilon

	scores := make(map[int]float64, len(keep))
	for _, i := range keep {
		st := race.Starters[i]
		scores[i] = 0.7*st.WinProb + 0.3*(st.Rating-minRating)/span
	}

	sort.SliceStable(keep, func(a, b int) bool {
		ta := tierOrder(race.Starters[keep[a]].Tier)
		tb := tierOrder(race.Starters[keep[b]].Tier)
		if ta != tb {
			return ta < tb
		}
		return scores[keep[a]] > scores[keep[b]]
	})

	max := b.cfg.MaxPerLeg
	if state.Chaos {
		max = b.cfg.MaxPerLegChaos
	}
	if len(keep) > max {
		keep = keep[:max]
	}

	leg := make([]int, len(keep))
	for i, idx := range keep {
		leg[i] = race.Starters[idx].Program
	}
	return leg
}

// trimToCap reduces a sequence until combos*unit fits the cap. It first
// rescales the unit down to max(minUnit, round2(cap/combos)); if still over,
// it repeatedly drops the last-ranked candidate from the longest leg above
// its floor. Once every leg sits at its floor the loop stops and the
// sequence stays over cap.
func trimToCap(legs [][]int, unit, costCap, minUnit decimal.Decimal, minPerLeg int) ([][]int, decimal.Decimal) {
	trimmed := make([][]int, len(legs))
	for i, leg := range legs {
		trimmed[i] = append([]int(nil), leg...)
	}

	cost := func(u decimal.Decimal) decimal.Decimal {
		return u.Mul(decimal.NewFromInt(int64(combos(trimmed))))
	}

	if !cost(unit).GreaterThan(costCap) {
		return trimmed, unit
	}

	scaled := decimal.Max(minUnit, costCap.Div(decimal.NewFromInt(int64(combos(trimmed)))).Round(2))
	if !cost(scaled).GreaterThan(costCap) {
		return trimmed, scaled
	}

	for cost(scaled).GreaterThan(costCap) {
		longest := -1
		for i, leg := range trimmed {
			if len(leg) <= minPerLeg {
				continue
			}
			if longest < 0 || len(leg) > len(trimmed[longest]) {
				longest = i
			}
		}
		if longest < 0 {
			break
		}
		trimmed[longest] = trimmed[longest][:len(trimmed[longest])-1]
	}

	return trimmed, scaled
}

// combos is the combinatorial size: the product of leg lengths.
func combos(legs [][]int) int {
	total := 1
	for _, leg := range legs {
		if len(leg) > 1 {
			total *= len(leg)
		}
	}
	return total
}

func tierOrder(t models.Tier) int {
	switch t {
	case models.TierA:
		return 0
	case models.TierB:
		return 1
	default:
		return 2
	}
}
