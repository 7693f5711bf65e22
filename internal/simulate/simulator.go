// Package simulate estimates finishing probabilities per race with Monte
// Carlo trials over the composite ratings. Each race draws from its own
// seeded random stream, so results are reproducible for a fixed seed and
// independent of how many other races the card carries.
package simulate

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pace146/new-apex/internal/config"
	"github.com/pace146/new-apex/internal/models"
)

// Policy selects how ratings are converted into trial outcomes.
type Policy string

const (
	// PolicyDirect treats normalized rating weights as a categorical
	// distribution and draws one winner per trial.
	PolicyDirect Policy = "direct"
	// PolicyNoise perturbs each weight with gamma noise and ranks the field,
	// producing win, place and show estimates per trial.
	PolicyNoise Policy = "noise"
)

const (
	// weightEpsilon keeps every starter's mass strictly positive, even when
	// all ratings are equal or the minimum rating is the active one.
	weightEpsilon = 1e-9

	// Calibrated gamma noise parameters.
	noiseShape = 1.25
	noiseScale = 1.0
)

// Result holds per-program probability estimates for one race. Place and
// Show are populated only under PolicyNoise and only for positions that
// exist in the field.
type Result struct {
	Win   map[int]float64
	Place map[int]float64
	Show  map[int]float64
}

// Simulator runs Monte Carlo trials per race.
type Simulator struct {
	trials int
	seed   uint64
	policy Policy
	logger *logrus.Logger
}

// New creates a simulator from configuration. A zero seed picks a
// time-derived one; deterministic runs must set an explicit seed.
func New(cfg config.SimulationConfig, logger *logrus.Logger) *Simulator {
	seed := uint64(cfg.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Simulator{
		trials: cfg.Trials,
		seed:   seed,
		policy: Policy(cfg.Policy),
		logger: logger,
	}
}

// raceSeed derives an independent stream seed per race so per-race results
// do not shift when other races are added to or removed from the card.
func (s *Simulator) raceSeed(raceNumber int) uint64 {
	return s.seed + uint64(raceNumber)*0x9e3779b97f4a7c15
}

// SimulateRace estimates probabilities for one race. An empty race runs no
// trials and returns empty maps; callers treat missing probability as zero.
func (s *Simulator) SimulateRace(race *models.Race) Result {
	result := Result{
		Win:   make(map[int]float64),
		Place: make(map[int]float64),
		Show:  make(map[int]float64),
	}
	n := len(race.Starters)
	if n == 0 || s.trials <= 0 {
		return result
	}

	weights := ratingWeights(race.Starters)
	src := rand.NewSource(s.raceSeed(race.Number))

	switch s.policy {
	case PolicyDirect:
		s.runDirect(race, weights, src, &result)
	default:
		s.runNoise(race, weights, src, &result)
	}
	return result
}

// runDirect draws one winner per trial from the normalized weights.
func (s *Simulator) runDirect(race *models.Race, weights []float64, src rand.Source, result *Result) {
	rng := rand.New(src)
	total := 0.0
	for _, w := range weights {
		total += w
	}

	counts := make([]int, len(weights))
	for t := 0; t < s.trials; t++ {
		r := rng.Float64() * total
		cum := 0.0
		winner := len(weights) - 1
		for i, w := range weights {
			cum += w
			if r < cum {
				winner = i
				break
			}
		}
		counts[winner]++
	}

	for i, st := range race.Starters {
		result.Win[st.Program] = float64(counts[i]) / float64(s.trials)
	}
}

// runNoise multiplies each weight by independent gamma noise, ranks the
// field by the perturbed score and tallies the top finishing positions.
// Ties at the scoring step resolve to the earlier starter in input order.
func (s *Simulator) runNoise(race *models.Race, weights []float64, src rand.Source, result *Result) {
	gamma := distuv.Gamma{Alpha: noiseShape, Beta: 1.0 / noiseScale, Src: src}

	n := len(weights)
	positions := 3
	if n < positions {
		positions = n
	}

	scores := make([]float64, n)
	order := make([]int, n)
	counts := make([][]int, positions)
	for p := range counts {
		counts[p] = make([]int, n)
	}

	for t := 0; t < s.trials; t++ {
		for i := range scores {
			scores[i] = weights[i] * gamma.Rand()
		}
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return scores[order[a]] > scores[order[b]]
		})
		for p := 0; p < positions; p++ {
			counts[p][order[p]]++
		}
	}

	trials := float64(s.trials)
	for i, st := range race.Starters {
		result.Win[st.Program] = float64(counts[0][i]) / trials
		if positions > 1 {
			result.Place[st.Program] = float64(counts[1][i]) / trials
		}
		if positions > 2 {
			result.Show[st.Program] = float64(counts[2][i]) / trials
		}
	}
}

// SimulateCard fills probability fields on every starter in place. Empty
// races are skipped with a warning and never fail the card.
func (s *Simulator) SimulateCard(card *models.Card) {
	for i := range card.Races {
		race := &card.Races[i]
		if race.IsEmpty() {
			s.logger.WithField("race", race.Number).Warn("Race has no starters, skipping simulation")
			continue
		}
		started := time.Now()
		result := s.SimulateRace(race)
		for j := range race.Starters {
			st := &race.Starters[j]
			st.WinProb = result.Win[st.Program]
			st.PlaceProb = result.Place[st.Program]
			st.ShowProb = result.Show[st.Program]
		}
		s.logger.WithFields(logrus.Fields{
			"race":     race.Number,
			"starters": len(race.Starters),
			"trials":   s.trials,
			"elapsed":  time.Since(started),
		}).Debug("Race simulated")
	}
}

// ratingWeights shifts ratings to strictly positive sampling mass.
func ratingWeights(starters []models.Starter) []float64 {
	min := starters[0].Rating
	for _, st := range starters[1:] {
		if st.Rating < min {
			min = st.Rating
		}
	}
	weights := make([]float64, len(starters))
	for i, st := range starters {
		weights[i] = st.Rating - min + weightEpsilon
	}
	return weights
}
