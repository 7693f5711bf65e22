package tickets

import (
	"io"
	"testing"

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

func testRace(ratings []float64, probs []float64) models.Race {
	starters := make([]models.Starter, len(ratings))
	for i := range ratings {
		starters[i] = models.Starter{Program: i + 1, Rating: ratings[i], WinProb: probs[i]}
	}
	return models.Race{Number: 1, Starters: starters}
}

func defaultBuilder() *Builder {
	return NewBuilder(config.Default().Vertical, testLogger())
}

func ticketsOfType(all []models.Ticket, bt models.BetType) []models.Ticket {
	var out []models.Ticket
	for _, t := range all {
		if t.Type == bt {
			out = append(out, t)
		}
	}
	return out
}

func TestBuildRaceCountsAndLimits(t *testing.T) {
	race := testRace(
		[]float64{95, 90, 85, 80, 75, 70, 65, 60},
		[]float64{0.25, 0.20, 0.15, 0.12, 0.10, 0.08, 0.06, 0.04},
	)

	all := defaultBuilder().BuildRace(&race)

	// Two anchors over a five-horse inclusion pool: 2*4 = 8 exactas.
	assert.Len(t, ticketsOfType(all, models.BetExacta), 8)
	// 2*5*4 = 40 trifectas, truncated to 24.
	assert.Len(t, ticketsOfType(all, models.BetTrifecta), 24)
	// 2*6*5*4 = 240 superfectas, truncated to 60.
	assert.Len(t, ticketsOfType(all, models.BetSuper), 60)
}

func TestBuildRaceNoRepeatedPrograms(t *testing.T) {
	race := testRace(
		[]float64{95, 90, 85, 80, 75, 70, 65},
		[]float64{0.25, 0.20, 0.15, 0.12, 0.10, 0.10, 0.08},
	)

	for _, ticket := range defaultBuilder().BuildRace(&race) {
		seen := make(map[int]bool)
		for _, p := range ticket.Programs {
			assert.False(t, seen[p], "ticket %s repeats program %d", ticket, p)
			seen[p] = true
		}
		assert.Len(t, ticket.Programs, ticket.Type.Positions())
	}
}

func TestBuildRaceEnumerationOrder(t *testing.T) {
	// Composite order equals program order here, so the first exacta is the
	// top pick over the second and truncation keeps the earliest tuples.
	race := testRace(
		[]float64{95, 90, 85, 80, 75},
		[]float64{0.30, 0.25, 0.20, 0.15, 0.10},
	)

	exactas := ticketsOfType(defaultBuilder().BuildRace(&race), models.BetExacta)

	require.NotEmpty(t, exactas)
	assert.Equal(t, []int{1, 2}, exactas[0].Programs)
	assert.Equal(t, []int{1, 3}, exactas[1].Programs)
	// Second anchor starts after the first anchor's block.
	assert.Equal(t, []int{2, 1}, exactas[4].Programs)
}

func TestCompositeBlendCanReorder(t *testing.T) {
	// Program 2 trails on rating but its probability wins the exacta blend:
	// 0.70*90 + 0.30*35 = 73.5 versus 0.70*92 + 0.30*10 = 67.4.
	race := testRace(
		[]float64{92, 90, 70},
		[]float64{0.10, 0.35, 0.05},
	)

	exactas := ticketsOfType(defaultBuilder().BuildRace(&race), models.BetExacta)

	require.NotEmpty(t, exactas)
	assert.Equal(t, []int{2, 1}, exactas[0].Programs)
}

func TestBuildRaceShortField(t *testing.T) {
	race := testRace(
		[]float64{90, 85, 80},
		[]float64{0.40, 0.35, 0.25},
	)

	all := defaultBuilder().BuildRace(&race)

	// Three starters: 2*2 = 4 exactas, 2*2*1 = 4 trifectas, no superfectas.
	assert.Len(t, ticketsOfType(all, models.BetExacta), 4)
	assert.Len(t, ticketsOfType(all, models.BetTrifecta), 4)
	assert.Empty(t, ticketsOfType(all, models.BetSuper))
}

func TestBuildRaceUnits(t *testing.T) {
	race := testRace(
		[]float64{95, 90, 85, 80, 75, 70, 65},
		[]float64{0.25, 0.20, 0.15, 0.12, 0.10, 0.10, 0.08},
	)

	all := defaultBuilder().BuildRace(&race)

	for _, ticket := range all {
		switch ticket.Type {
		case models.BetSuper:
			assert.Equal(t, "0.20", ticket.Cost.StringFixed(2))
		default:
			assert.Equal(t, "2.00", ticket.Cost.StringFixed(2))
		}
	}
}

func TestBuildCardSkipsEmptyRaces(t *testing.T) {
	card := models.Card{Races: []models.Race{
		{Number: 1},
		testRace([]float64{90, 85, 80, 75}, []float64{0.30, 0.25, 0.25, 0.20}),
	}}
	card.Races[1].Number = 2

	all := defaultBuilder().BuildCard(&card)

	require.NotEmpty(t, all)
	for _, ticket := range all {
		assert.Equal(t, 2, ticket.Race)
	}
}
