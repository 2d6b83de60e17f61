// Package adaptive selects multiple-choice items whose difficulty
// matches the learner's running ability estimate.
package adaptive

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// Item is a multiple-choice question owned by the content pipeline.
// The engine treats it as read-only.
type Item struct {
	ID           string
	ConceptID    string
	Question     string
	Options      []string
	CorrectIndex int
	Explanation  string
}

// PoolEntry pairs an item with the statistics the selector needs.
type PoolEntry struct {
	Item           Item
	Attempts       int
	Difficulty     float64 // 1 - correct rate
	Discrimination float64
}

// Selection reasons reported to callers.
const (
	ReasonMatched  = "difficulty_match"
	ReasonWidened  = "band_widened"
	ReasonFallback = "closest_available"
)

// ErrEmptyPool is returned when no items exist for the concept.
var ErrEmptyPool = errors.New("adaptive: empty item pool")

// SelectorConfig holds the selection tunables.
type SelectorConfig struct {
	// Band is the initial half-width of the difficulty window around
	// the learner's ability.
	Band float64
	// BandStep widens the window per iteration when nothing matches.
	BandStep float64
	// MinDiscrimination is the preferred floor; items above it win
	// within a band when any exist.
	MinDiscrimination float64
	// MinSample is the attempt count below which an item's empirical
	// difficulty is ignored in favor of the neutral default.
	MinSample int
	// NeutralDifficulty is assumed for under-sampled items.
	NeutralDifficulty float64
}

// DefaultSelectorConfig returns the default selection tunables.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		Band:              0.10,
		BandStep:          0.05,
		MinDiscrimination: 0.30,
		MinSample:         5,
		NeutralDifficulty: 0.5,
	}
}

// Selector picks items for a learner. Selection is deterministic for
// identical inputs except for the injected tie-break source, so tests
// seed it explicitly.
type Selector struct {
	cfg SelectorConfig
	rng *rand.Rand
}

// NewSelector creates a selector with the given tie-break source.
func NewSelector(cfg SelectorConfig, rng *rand.Rand) *Selector {
	if cfg.Band <= 0 {
		cfg = DefaultSelectorConfig()
	}
	return &Selector{cfg: cfg, rng: rng}
}

// EffectiveDifficulty returns the difficulty the selector uses for an
// entry: the empirical value once enough attempts exist, otherwise the
// neutral default.
func (s *Selector) EffectiveDifficulty(e PoolEntry) float64 {
	if e.Attempts < s.cfg.MinSample {
		return s.cfg.NeutralDifficulty
	}
	return e.Difficulty
}

// Select picks the item whose difficulty best matches ability. The
// difficulty band starts at ability±Band and widens until at least one
// item qualifies; within a band, items with acceptable discrimination
// are preferred. If widening exhausts the [0,1] range the closest item
// wins outright.
func (s *Selector) Select(ability float64, pool []PoolEntry) (PoolEntry, string, error) {
	if len(pool) == 0 {
		return PoolEntry{}, "", ErrEmptyPool
	}

	// Stable order first so equal inputs walk candidates identically.
	sorted := make([]PoolEntry, len(pool))
	copy(sorted, pool)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Item.ID < sorted[j].Item.ID })

	band := s.cfg.Band
	reason := ReasonMatched
	for band <= 1.0 {
		if e, ok := s.pickInBand(ability, band, sorted); ok {
			return e, reason, nil
		}
		band += s.cfg.BandStep
		reason = ReasonWidened
	}

	return s.closest(ability, sorted), ReasonFallback, nil
}

func (s *Selector) pickInBand(ability, band float64, pool []PoolEntry) (PoolEntry, bool) {
	var candidates []PoolEntry
	for _, e := range pool {
		if math.Abs(s.EffectiveDifficulty(e)-ability) <= band {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return PoolEntry{}, false
	}

	// Prefer items that actually separate strong from weak learners.
	var sharp []PoolEntry
	for _, e := range candidates {
		if e.Discrimination > s.cfg.MinDiscrimination {
			sharp = append(sharp, e)
		}
	}
	if len(sharp) > 0 {
		candidates = sharp
	}

	return s.closest(ability, candidates), true
}

// closest returns the candidate with difficulty nearest ability,
// breaking exact ties with the injected source.
func (s *Selector) closest(ability float64, pool []PoolEntry) PoolEntry {
	best := []PoolEntry{pool[0]}
	bestDist := math.Abs(s.EffectiveDifficulty(pool[0]) - ability)
	for _, e := range pool[1:] {
		dist := math.Abs(s.EffectiveDifficulty(e) - ability)
		switch {
		case dist < bestDist:
			best = best[:0]
			best = append(best, e)
			bestDist = dist
		case dist == bestDist:
			best = append(best, e)
		}
	}
	if len(best) == 1 || s.rng == nil {
		return best[0]
	}
	return best[s.rng.Intn(len(best))]
}
