// Package tier ranks starters within a race, assigns confidence tiers and
// flags races as chaos or anchored by a single favorite.
package tier

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/pace146/new-apex/internal/config"
	"github.com/pace146/new-apex/internal/models"
)

// Classifier assigns tiers and derives the per-race chaos/single state.
type Classifier struct {
	tiers  config.TierConfig
	chaos  config.ChaosConfig
	single config.SingleConfig
	logger *logrus.Logger
}

// New creates a classifier from configuration.
func New(tiers config.TierConfig, chaos config.ChaosConfig, single config.SingleConfig, logger *logrus.Logger) *Classifier {
	return &Classifier{tiers: tiers, chaos: chaos, single: single, logger: logger}
}

// Classify assigns a tier to every starter in place and returns the race's
// chaos state. hasAdversity selects the chaos rule set: the primary rule
// needs adversity columns in the snapshot, otherwise the degraded rule runs.
// Classification is a pure function of ratings, probabilities and thresholds.
func (c *Classifier) Classify(race *models.Race, hasAdversity bool) models.ChaosState {
	if race.IsEmpty() {
		return models.ChaosState{}
	}

	ranks := minRankDesc(ratings(race))
	leader := race.LeaderRating()

	for i := range race.Starters {
		st := &race.Starters[i]
		switch {
		case ranks[i] <= 2 || st.WinProb >= c.tiers.AProbMin:
			st.Tier = models.TierA
		case leader-st.Rating <= c.tiers.BRatingDelta || st.WinProb >= c.tiers.BProbMin:
			st.Tier = models.TierB
		default:
			st.Tier = models.TierC
		}
	}

	state := models.ChaosState{
		Chaos:          c.isChaos(race, hasAdversity),
		SingleFavorite: c.detectSingle(race),
	}

	if state.Chaos || state.SingleFavorite != nil {
		fields := logrus.Fields{"race": race.Number, "chaos": state.Chaos}
		if state.SingleFavorite != nil {
			fields["single"] = state.SingleFavorite.Program
		}
		c.logger.WithFields(fields).Debug("Race flagged")
	}
	return state
}

// isChaos applies the primary rule (tight top-3 spread, low top probability,
// enough adversity signals) or the degraded rule when the snapshot carried
// no adversity columns.
func (c *Classifier) isChaos(race *models.Race, hasAdversity bool) bool {
	topProb := race.TopWinProb()
	if hasAdversity {
		return topProb < c.chaos.TopProbMax &&
			race.SpreadTop3() < c.chaos.SpreadMax &&
			race.AdversityFlags >= c.chaos.AdversityMin
	}
	return (race.RatingStdDev() <= c.chaos.FallbackSpreadMax && topProb < c.chaos.FallbackTopProbMax) ||
		topProb < c.chaos.FallbackLongshotProbMax
}

// detectSingle returns the top-rated starter when its win probability and
// rating gap to the runner-up clear the anchor thresholds. A detected single
// is the race's sole qualifying candidate for sequence legs.
func (c *Classifier) detectSingle(race *models.Race) *models.Starter {
	order := make([]int, len(race.Starters))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return race.Starters[order[a]].Rating > race.Starters[order[b]].Rating
	})

	top := &race.Starters[order[0]]
	gap := 999.0
	if len(order) > 1 {
		gap = top.Rating - race.Starters[order[1]].Rating
	}
	if top.WinProb >= c.single.ProbMin && gap >= c.single.RatingGap {
		return top
	}
	return nil
}

// minRankDesc ranks values descending with the min-rank convention: tied
// values share the best rank and the next distinct value's rank is the
// count of strictly greater values plus one.
func minRankDesc(values []float64) []int {
	ranks := make([]int, len(values))
	for i, v := range values {
		rank := 1
		for _, other := range values {
			if other > v {
				rank++
			}
		}
		ranks[i] = rank
	}
	return ranks
}

func ratings(race *models.Race) []float64 {
	out := make([]float64, len(race.Starters))
	for i, st := range race.Starters {
		out[i] = st.Rating
	}
	return out
}
