package sequence

import (
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pace146/new-apex/internal/config"
	"github.com/pace146/new-apex/internal/models"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func defaultBuilder() *Builder {
	return NewBuilder(config.Default().Horizontal, testLogger())
}

// tieredRace builds a race whose starters already carry tiers, the state the
// builder sees after classification.
func tieredRace(number int, tiers []models.Tier, probs []float64) models.Race {
	starters := make([]models.Starter, len(tiers))
	for i := range tiers {
		starters[i] = models.Starter{
			Program: i + 1,
			Rating:  float64(100 - i),
			WinProb: probs[i],
			Tier:    tiers[i],
		}
	}
	return models.Race{Number: number, Starters: starters}
}

func standardCard(races int) (*models.Card, map[int]models.ChaosState) {
	card := &models.Card{}
	states := make(map[int]models.ChaosState)
	for r := 1; r <= races; r++ {
		race := tieredRace(r,
			[]models.Tier{models.TierA, models.TierA, models.TierB, models.TierC},
			[]float64{0.35, 0.25, 0.20, 0.20},
		)
		card.Races = append(card.Races, race)
		states[r] = models.ChaosState{}
	}
	return card, states
}

func TestBuildCardSpans(t *testing.T) {
	card, states := standardCard(6)
	sequences := defaultBuilder().BuildCard(card, states)

	require.Len(t, sequences, 5)
	names := make([]string, len(sequences))
	for i, s := range sequences {
		names[i] = s.Name
		assert.Equal(t, 1, s.StartRace)
	}
	assert.Equal(t, []string{"Daily Double", "Pick 3", "Pick 4", "Pick 5", "Pick 6"}, names)
	assert.Equal(t, 2, sequences[0].EndRace)
	assert.Equal(t, 6, sequences[4].EndRace)
}

func TestBuildCardShortCardSkipsLongSpans(t *testing.T) {
	card, states := standardCard(3)
	sequences := defaultBuilder().BuildCard(card, states)

	require.Len(t, sequences, 2)
	assert.Equal(t, "Daily Double", sequences[0].Name)
	assert.Equal(t, "Pick 3", sequences[1].Name)
}

func TestLegForRaceTierFilter(t *testing.T) {
	b := defaultBuilder()
	race := tieredRace(1,
		[]models.Tier{models.TierA, models.TierB, models.TierC, models.TierC},
		[]float64{0.30, 0.25, 0.25, 0.20},
	)

	leg := b.legForRace(&race, models.ChaosState{})
	assert.Equal(t, []int{1, 2}, leg, "tier C excluded outside chaos")

	leg = b.legForRace(&race, models.ChaosState{Chaos: true})
	assert.Equal(t, []int{1, 2, 3, 4}, leg, "chaos admits tier C")
}

func TestLegForRaceSingleOverride(t *testing.T) {
	b := defaultBuilder()
	race := tieredRace(1,
		[]models.Tier{models.TierA, models.TierA, models.TierB, models.TierC},
		[]float64{0.40, 0.25, 0.20, 0.15},
	)

	leg := b.legForRace(&race, models.ChaosState{
		Chaos:          true,
		SingleFavorite: &race.Starters[0],
	})
	assert.Equal(t, []int{1}, leg, "single favorite collapses the leg")
}

func TestLegForRaceOrderingAndCap(t *testing.T) {
	b := defaultBuilder()
	// Program 5 has the best hybrid score among tier B; tier A still leads.
	race := models.Race{Number: 1, Starters: []models.Starter{
		{Program: 1, Rating: 80, WinProb: 0.10, Tier: models.TierB},
		{Program: 2, Rating: 95, WinProb: 0.25, Tier: models.TierA},
		{Program: 3, Rating: 82, WinProb: 0.12, Tier: models.TierB},
		{Program: 4, Rating: 93, WinProb: 0.22, Tier: models.TierA},
		{Program: 5, Rating: 88, WinProb: 0.20, Tier: models.TierB},
	}}

	leg := b.legForRace(&race, models.ChaosState{})

	require.Len(t, leg, 4, "leg capped at four outside chaos")
	assert.Equal(t, []int{2, 4, 5, 3}, leg)
}

func TestEffectiveBankrollMultiplier(t *testing.T) {
	b := defaultBuilder()

	strong := func(n int) *models.Card {
		card := &models.Card{}
		for r := 1; r <= 4; r++ {
			prob := 0.20
			if r <= n {
				prob = 0.40
			}
			card.Races = append(card.Races, tieredRace(r,
				[]models.Tier{models.TierA, models.TierB},
				[]float64{prob, 0.10},
			))
		}
		return card
	}

	assert.InDelta(t, 750.0, b.effectiveBankroll(strong(3)), 1e-9)
	assert.InDelta(t, 500.0, b.effectiveBankroll(strong(1)), 1e-9)
	assert.InDelta(t, 300.0, b.effectiveBankroll(strong(0)), 1e-9)
}

func TestTrimToCapUnitRescale(t *testing.T) {
	legs := [][]int{{1, 2, 3, 4}, {1, 2, 3, 4}, {1, 2, 3, 4}}
	unit := decimal.NewFromFloat(0.50)
	cap := decimal.NewFromFloat(20.0)
	minUnit := decimal.NewFromFloat(0.20)

	trimmed, finalUnit := trimToCap(legs, unit, cap, minUnit, 1)

	// 64 combos at 0.50 is 32.00; round2(20/64) = 0.31 fits at 19.84.
	assert.Equal(t, legs, trimmed)
	assert.Equal(t, "0.31", finalUnit.StringFixed(2))
}

func TestTrimToCapDropsFromLongestLeg(t *testing.T) {
	legs := [][]int{{1, 2, 3, 4}, {1, 2, 3, 4}, {1, 2, 3, 4}}
	unit := decimal.NewFromFloat(0.20)
	cap := decimal.NewFromFloat(10.0)
	minUnit := decimal.NewFromFloat(0.10)

	trimmed, finalUnit := trimToCap(legs, unit, cap, minUnit, 1)

	// round2(10/64) = 0.16 still costs 10.24, so the first leg loses its
	// tail candidate: 48 combos at 0.16 is 7.68.
	assert.Equal(t, "0.16", finalUnit.StringFixed(2))
	assert.Equal(t, [][]int{{1, 2, 3}, {1, 2, 3, 4}, {1, 2, 3, 4}}, trimmed)
}

func TestTrimToCapDoesNotMutateInput(t *testing.T) {
	legs := [][]int{{1, 2, 3, 4}, {1, 2, 3, 4}}
	unit := decimal.NewFromFloat(2.00)
	cap := decimal.NewFromFloat(10.0)

	trimToCap(legs, unit, cap, decimal.NewFromFloat(2.00), 2)

	assert.Equal(t, [][]int{{1, 2, 3, 4}, {1, 2, 3, 4}}, legs)
}

func TestTrimToCapStopsAtFloors(t *testing.T) {
	legs := [][]int{{1, 2}, {3, 4}}
	unit := decimal.NewFromFloat(2.00)
	cap := decimal.NewFromFloat(5.0)

	trimmed, finalUnit := trimToCap(legs, unit, cap, decimal.NewFromFloat(2.00), 2)

	// Both legs sit at the Daily Double floor: the sequence stays over cap.
	assert.Equal(t, legs, trimmed)
	cost := finalUnit.Mul(decimal.NewFromInt(int64(combos(trimmed))))
	assert.True(t, cost.GreaterThan(cap))
}

func TestBuildCardNotes(t *testing.T) {
	card, states := standardCard(2)
	states[1] = models.ChaosState{Chaos: true}
	card.Races[0].Starters[3].Tier = models.TierC

	sequences := defaultBuilder().BuildCard(card, states)

	require.NotEmpty(t, sequences)
	dd := sequences[0]
	assert.Contains(t, dd.Notes, "Chaos legs spread")
	assert.NotContains(t, dd.Notes, "Standard structure")
}

func TestBuildCardStandardStructureNote(t *testing.T) {
	card, states := standardCard(2)
	sequences := defaultBuilder().BuildCard(card, states)

	require.NotEmpty(t, sequences)
	assert.Equal(t, []string{"Standard structure"}, sequences[0].Notes)
}

func TestBuildCardEmptyLegAbandonsSequence(t *testing.T) {
	card, states := standardCard(2)
	// Demote every starter in race 2 below the leg tiers.
	for i := range card.Races[1].Starters {
		card.Races[1].Starters[i].Tier = models.TierC
	}

	sequences := defaultBuilder().BuildCard(card, states)
	assert.Empty(t, sequences)
}

func TestBuildCardCostMatchesCombos(t *testing.T) {
	card, states := standardCard(6)
	for _, s := range defaultBuilder().BuildCard(card, states) {
		expected := s.Unit.Mul(decimal.NewFromInt(int64(s.Combos))).Round(2)
		assert.True(t, expected.Equal(s.Cost), "sequence %s cost mismatch", s.Name)
	}
}
