package pipeline

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
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

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Simulation.Trials = 500
	cfg.Simulation.Seed = 42
	return cfg
}

func testCard(races int) *models.Card {
	card := &models.Card{Schema: models.ResolvedSchema{RatingColumn: "CPR_Total"}}
	for r := 1; r <= races; r++ {
		card.Races = append(card.Races, models.Race{
			Number: r,
			Starters: []models.Starter{
				{Program: 1, Rating: 92},
				{Program: 2, Rating: 86},
				{Program: 3, Rating: 84},
				{Program: 4, Rating: 78},
				{Program: 5, Rating: 70},
			},
		})
	}
	return card
}

func TestRunFullPipeline(t *testing.T) {
	card := testCard(6)
	result, err := New(testConfig(), testLogger()).Run(context.Background(), card)
	require.NoError(t, err)

	assert.True(t, result.Simulated, "probabilities absent from the snapshot")
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", result.RunID.String())
	assert.Len(t, result.States, 6)

	// Every starter got a probability and a tier.
	for _, race := range card.Races {
		total := 0.0
		for _, st := range race.Starters {
			total += st.WinProb
			assert.NotEmpty(t, st.Tier)
		}
		assert.InDelta(t, 1.0, total, 1e-9)
	}

	assert.NotEmpty(t, result.Tickets)
	assert.NotEmpty(t, result.Sequences)
}

func TestRunReproducibleWithSeed(t *testing.T) {
	p := New(testConfig(), testLogger())

	a, err := p.Run(context.Background(), testCard(3))
	require.NoError(t, err)
	b, err := p.Run(context.Background(), testCard(3))
	require.NoError(t, err)

	require.Equal(t, len(a.Tickets), len(b.Tickets))
	for i := range a.Tickets {
		assert.Equal(t, a.Tickets[i].Programs, b.Tickets[i].Programs)
	}
}

func TestRunSkipsSimulationWhenProbabilitiesPresent(t *testing.T) {
	card := testCard(2)
	card.Schema.ProbabilityColumn = "MC_WinProb"
	probs := []float64{0.35, 0.25, 0.20, 0.12, 0.08}
	for i := range card.Races {
		for j := range card.Races[i].Starters {
			card.Races[i].Starters[j].WinProb = probs[j]
		}
	}

	result, err := New(testConfig(), testLogger()).Run(context.Background(), card)
	require.NoError(t, err)

	assert.False(t, result.Simulated)
	assert.Equal(t, 0.35, card.Races[0].Starters[0].WinProb, "input probabilities untouched")
}

func TestRunEmptyCard(t *testing.T) {
	_, err := New(testConfig(), testLogger()).Run(context.Background(), &models.Card{})
	assert.ErrorIs(t, err, models.ErrEmptyCard)
}

func TestRunEmptyRaceDoesNotAbortCard(t *testing.T) {
	card := testCard(3)
	card.Races[1].Starters = nil

	result, err := New(testConfig(), testLogger()).Run(context.Background(), card)
	require.NoError(t, err)

	assert.NotContains(t, result.States, 2)
	for _, ticket := range result.Tickets {
		assert.NotEqual(t, 2, ticket.Race)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig(), testLogger()).Run(ctx, testCard(2))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunAuditTrailInRaceOrder(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)
	hook := test.NewLocal(logger)

	_, err := New(testConfig(), logger).Run(context.Background(), testCard(5))
	require.NoError(t, err)

	var audited []int
	for _, entry := range hook.AllEntries() {
		if entry.Message != "Race state recorded" {
			continue
		}
		race, ok := entry.Data["race"].(int)
		require.True(t, ok)
		audited = append(audited, race)
	}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, audited,
		"audit trail replays in race order on every run")
}
