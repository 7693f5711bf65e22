// Package models defines the domain entities shared across the wagering engine.
package models

import "math"

// Tier classifies a starter's standing within its race.
type Tier string

const (
	// TierA marks a strong contender.
	TierA Tier = "A"
	// TierB marks a plausible contender.
	TierB Tier = "B"
	// TierC marks a longshot, included only when a race is flagged chaos.
	TierC Tier = "C"
)

// Starter represents one runner in a race.
type Starter struct {
	Program   int
	Name      string
	Rating    float64
	WinProb   float64
	PlaceProb float64
	ShowProb  float64
	Tier      Tier
}

// Race owns the starters for a single race, ordered by program number.
type Race struct {
	Number   int
	Starters []Starter

	// AdversityFlags counts adversity columns with at least one positive
	// signal among this race's rows. Zero when no columns were resolved.
	AdversityFlags int
}

// IsEmpty reports whether the race has no starters.
func (r *Race) IsEmpty() bool {
	return len(r.Starters) == 0
}

// LeaderRating returns the highest rating in the race.
func (r *Race) LeaderRating() float64 {
	max := math.Inf(-1)
	for _, s := range r.Starters {
		if s.Rating > max {
			max = s.Rating
		}
	}
	return max
}

// TopWinProb returns the highest win probability in the race.
func (r *Race) TopWinProb() float64 {
	top := 0.0
	for _, s := range r.Starters {
		if s.WinProb > top {
			top = s.WinProb
		}
	}
	return top
}

// SpreadTop3 returns the rating spread across the top three starters.
// With fewer than three starters it falls back to leader minus minimum.
func (r *Race) SpreadTop3() float64 {
	if len(r.Starters) == 0 {
		return 0
	}
	ratings := make([]float64, 0, len(r.Starters))
	for _, s := range r.Starters {
		ratings = append(ratings, s.Rating)
	}
	first, second, third := math.Inf(-1), math.Inf(-1), math.Inf(-1)
	min := math.Inf(1)
	for _, v := range ratings {
		switch {
		case v > first:
			first, second, third = v, first, second
		case v > second:
			second, third = v, second
		case v > third:
			third = v
		}
		if v < min {
			min = v
		}
	}
	if len(ratings) >= 3 {
		return first - third
	}
	return first - min
}

// RatingStdDev returns the population standard deviation of ratings.
func (r *Race) RatingStdDev() float64 {
	n := len(r.Starters)
	if n == 0 {
		return 0
	}
	mean := 0.0
	for _, s := range r.Starters {
		mean += s.Rating
	}
	mean /= float64(n)
	variance := 0.0
	for _, s := range r.Starters {
		diff := s.Rating - mean
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(n))
}

// ResolvedSchema records which input columns were matched at load time.
type ResolvedSchema struct {
	RatingColumn      string
	ProbabilityColumn string
	AdversityColumns  []string
}

// Card is one day's ordered list of races plus the schema resolved for it.
type Card struct {
	Races  []Race
	Schema ResolvedSchema
}

// HasProbabilities reports whether win probabilities were present in the input.
func (c *Card) HasProbabilities() bool {
	return c.Schema.ProbabilityColumn != ""
}

// HasAdversityData reports whether any adversity column was resolved.
func (c *Card) HasAdversityData() bool {
	return len(c.Schema.AdversityColumns) > 0
}

// RaceNumbers returns the race numbers on the card in order.
func (c *Card) RaceNumbers() []int {
	numbers := make([]int, 0, len(c.Races))
	for i := range c.Races {
		numbers = append(numbers, c.Races[i].Number)
	}
	return numbers
}

// ChaosState captures the per-race uncertainty verdict. A detected single
// favorite overrides chaos-driven tier expansion during leg construction.
type ChaosState struct {
	Chaos          bool
	SingleFavorite *Starter
}
