// Package pipeline wires the simulator, classifier and ticket builders into
// a single card-level batch run. One race's computation never aborts the
// rest of the card; only schema resolution is card-wide.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pace146/new-apex/internal/config"
	applog "github.com/pace146/new-apex/internal/logger"
	"github.com/pace146/new-apex/internal/metrics"
	"github.com/pace146/new-apex/internal/models"
	"github.com/pace146/new-apex/internal/sequence"
	"github.com/pace146/new-apex/internal/simulate"
	"github.com/pace146/new-apex/internal/tickets"
	"github.com/pace146/new-apex/internal/tier"
)

// Result holds everything one pipeline run produced for a card.
type Result struct {
	RunID     uuid.UUID
	Card      *models.Card
	States    map[int]models.ChaosState
	Tickets   []models.Ticket
	Sequences []models.Sequence

	// Simulated reports whether win probabilities came from this run's
	// Monte Carlo pass rather than the input snapshot.
	Simulated bool
}

// Pipeline runs the full wagering decision flow over a loaded card.
type Pipeline struct {
	cfg         *config.Config
	logger      *logrus.Logger
	audit       *applog.AuditLogger
	simulator   *simulate.Simulator
	classifier  *tier.Classifier
	verticals   *tickets.Builder
	horizontals *sequence.Builder
}

// New builds a pipeline with all components constructed from cfg.
func New(cfg *config.Config, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		logger:      logger,
		audit:       applog.NewAuditLogger(logger),
		simulator:   simulate.New(cfg.Simulation, logger),
		classifier:  tier.New(cfg.Tiers, cfg.Chaos, cfg.Single, logger),
		verticals:   tickets.NewBuilder(cfg.Vertical, logger),
		horizontals: sequence.NewBuilder(cfg.Horizontal, logger),
	}
}

// Run executes simulate (when needed), tier classification, vertical ticket
// enumeration and horizontal sequencing for one card.
func (p *Pipeline) Run(ctx context.Context, card *models.Card) (*Result, error) {
	if len(card.Races) == 0 {
		return nil, models.ErrEmptyCard
	}
	started := time.Now()

	result := &Result{
		RunID:  uuid.New(),
		Card:   card,
		States: make(map[int]models.ChaosState, len(card.Races)),
	}

	if !card.HasProbabilities() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline cancelled: %w", err)
		}
		simStart := time.Now()
		p.simulator.SimulateCard(card)
		metrics.SimulationDuration.Observe(time.Since(simStart).Seconds())
		result.Simulated = true
	}

	hasAdversity := card.HasAdversityData()
	for i := range card.Races {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline cancelled: %w", err)
		}
		race := &card.Races[i]
		if race.IsEmpty() {
			metrics.EmptyRacesSkippedTotal.Inc()
			p.logger.WithField("race", race.Number).Warn("Race has no starters, skipping")
			continue
		}
		metrics.RacesSimulatedTotal.Inc()
		result.States[race.Number] = p.classifier.Classify(race, hasAdversity)
		result.Tickets = append(result.Tickets, p.verticals.BuildRace(race)...)
	}

	runID := result.RunID.String()
	for i := range card.Races {
		state, ok := result.States[card.Races[i].Number]
		if !ok {
			continue
		}
		single := 0
		if state.SingleFavorite != nil {
			single = state.SingleFavorite.Program
		}
		p.audit.LogRaceState(runID, card.Races[i].Number, state.Chaos, single)
	}
	for _, t := range result.Tickets {
		metrics.TicketsBuiltTotal.WithLabelValues(string(t.Type)).Inc()
		p.audit.LogTicket(runID, t.Race, string(t.Type), t.String(), t.Cost.StringFixed(2))
	}

	result.Sequences = p.horizontals.BuildCard(card, result.States)
	for _, s := range result.Sequences {
		p.audit.LogSequence(runID, s.Name, s.StartRace, s.EndRace,
			s.Unit.StringFixed(2), s.Combos, s.Cost.StringFixed(2),
			s.LegsString(), s.NotesString())
	}

	metrics.CardsProcessedTotal.Inc()
	metrics.PipelineDuration.Observe(time.Since(started).Seconds())
	p.logger.WithFields(logrus.Fields{
		"run_id":    result.RunID,
		"races":     len(card.Races),
		"tickets":   len(result.Tickets),
		"sequences": len(result.Sequences),
		"simulated": result.Simulated,
		"elapsed":   time.Since(started),
	}).Info("Card pipeline completed")

	return result, nil
}
