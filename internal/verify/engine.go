// Package verify is the assessment engine: it enrolls cards, builds
// due sets, selects adaptive items, fuses answers into review ratings,
// and applies reviews through the scheduling strategies.
package verify

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/vocardo/vocardo/internal/adaptive"
	"github.com/vocardo/vocardo/internal/assignment"
	"github.com/vocardo/vocardo/internal/itemstats"
	"github.com/vocardo/vocardo/internal/mastery"
	"github.com/vocardo/vocardo/internal/schedule"
	"github.com/vocardo/vocardo/internal/srs"
	"github.com/vocardo/vocardo/internal/store"
)

// Config bundles the tunables of every engine component.
type Config struct {
	SM2        srs.SM2Config
	Memory     srs.MemoryConfig
	Selector   adaptive.SelectorConfig
	Tracker    itemstats.Config
	Assignment assignment.Config

	// DueLimit caps the due set size; 0 means unlimited.
	DueLimit int
}

// DefaultConfig returns the standard engine tunables.
func DefaultConfig() Config {
	return Config{
		SM2:        srs.DefaultSM2Config(),
		Memory:     srs.DefaultMemoryConfig(),
		Selector:   adaptive.DefaultSelectorConfig(),
		Tracker:    itemstats.DefaultConfig(),
		Assignment: assignment.DefaultConfig(),
		DueLimit:   50,
	}
}

// Deps are the repositories the engine runs on.
type Deps struct {
	Cards       store.CardRepo
	Events      store.ReviewEventRepo
	Items       store.ItemRepo
	Stats       store.StatsRepo
	Abilities   store.AbilityRepo
	Assignments store.AssignmentRepo
}

// DepsFromStore wires all repositories from one store.
func DepsFromStore(s *store.Store) Deps {
	return Deps{
		Cards:       s.Cards(),
		Events:      s.Events(),
		Items:       s.Items(),
		Stats:       s.Stats(),
		Abilities:   s.Abilities(),
		Assignments: s.Assignments(),
	}
}

// Engine exposes the assessment operations.
type Engine struct {
	deps Deps
	cfg  Config

	strategies srs.Registry
	memory     *srs.MemoryModel
	selector   *adaptive.Selector
	tracker    *itemstats.Tracker
	scheduler  *schedule.Scheduler
	assign     *assignment.Service

	// recompute dedups concurrent discrimination refreshes per item.
	recompute singleflight.Group

	logger *slog.Logger
	now    func() time.Time
}

// NewEngine builds an engine. rng feeds the selector tie-break and the
// algorithm split; pass a seeded source in tests, nil otherwise.
func NewEngine(deps Deps, cfg Config, rng *rand.Rand, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	mem := srs.NewMemoryModel(cfg.Memory)
	return &Engine{
		deps:       deps,
		cfg:        cfg,
		strategies: srs.NewRegistry(srs.NewSM2Plus(cfg.SM2), mem),
		memory:     mem,
		selector:   adaptive.NewSelector(cfg.Selector, rng),
		tracker:    itemstats.NewTracker(cfg.Tracker),
		scheduler:  schedule.NewScheduler(deps.Cards, deps.Items, mem),
		assign:     assignment.NewService(deps.Assignments, cfg.Assignment, rng, logger),
		logger:     logger,
		now:        time.Now,
	}
}

// SetClock overrides the engine clock, for tests.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// EnrollCard creates the scheduling card for a learner-item pair under
// the learner's assigned algorithm. The card is due immediately.
func (e *Engine) EnrollCard(ctx context.Context, learnerID, itemID string) (*srs.CardState, error) {
	if learnerID == "" || itemID == "" {
		return nil, errors.Wrap(ErrValidation, "learner and item ids required")
	}
	if _, err := e.deps.Items.Get(ctx, itemID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "item %s", itemID)
		}
		return nil, err
	}
	if _, err := e.deps.Cards.GetByLearnerItem(ctx, learnerID, itemID); err == nil {
		return nil, errors.Wrapf(ErrConflict, "card exists for learner %s item %s", learnerID, itemID)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	a, err := e.assign.GetOrAssign(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	strategy, err := e.strategies.For(a.Algorithm)
	if err != nil {
		return nil, err
	}

	card := strategy.NewState(learnerID, itemID, e.now())
	card.ID = uuid.NewString()
	card.MasteryLevel = string(mastery.Classify(card))
	if err := e.deps.Cards.Create(ctx, card); err != nil {
		return nil, err
	}
	e.logger.Info("card enrolled",
		"card_id", card.ID, "learner_id", learnerID, "item_id", itemID, "algorithm", card.Algorithm)
	return card, nil
}

// DueCards returns the learner's due set, most urgent first.
func (e *Engine) DueCards(ctx context.Context, learnerID string, limit int) ([]schedule.DueCard, error) {
	if learnerID == "" {
		return nil, errors.Wrap(ErrValidation, "learner id required")
	}
	if limit <= 0 {
		limit = e.cfg.DueLimit
	}
	return e.scheduler.DueSet(ctx, learnerID, e.now(), limit)
}

// NextItem picks the concept item whose difficulty best matches the
// learner's ability. The returned view never contains the correct
// index.
func (e *Engine) NextItem(ctx context.Context, learnerID, conceptID string) (*ItemView, error) {
	if learnerID == "" || conceptID == "" {
		return nil, errors.Wrap(ErrValidation, "learner and concept ids required")
	}
	items, err := e.deps.Items.ListByConcept(ctx, conceptID)
	if err != nil {
		return nil, err
	}

	pool := make([]adaptive.PoolEntry, 0, len(items))
	for _, item := range items {
		stats, err := e.deps.Stats.Get(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		pool = append(pool, adaptive.PoolEntry{
			Item:           *item,
			Attempts:       stats.Attempts,
			Difficulty:     stats.Difficulty,
			Discrimination: stats.Discrimination,
		})
	}

	est, err := e.deps.Abilities.Get(ctx, learnerID, conceptID)
	if err != nil {
		return nil, err
	}

	picked, reason, err := e.selector.Select(est.Ability, pool)
	if errors.Is(err, adaptive.ErrEmptyPool) {
		return nil, errors.Wrapf(ErrNotFound, "no items for concept %s", conceptID)
	}
	if err != nil {
		return nil, err
	}

	return &ItemView{
		ItemID:    picked.Item.ID,
		ConceptID: picked.Item.ConceptID,
		Question:  picked.Item.Question,
		Options:   picked.Item.Options,
		Reason:    reason,
	}, nil
}

// SubmitItemAnswer grades a multiple-choice answer, folds it into the
// ability estimate and item statistics, and, when the request names a
// card, fuses it into a review rating and applies it. The ability and
// statistics updates commit independently of the scheduling update; a
// lost scheduling race does not roll them back.
func (e *Engine) SubmitItemAnswer(ctx context.Context, req AnswerRequest) (*AnswerResult, error) {
	if req.LearnerID == "" || req.ItemID == "" {
		return nil, errors.Wrap(ErrValidation, "learner and item ids required")
	}
	if req.LatencyMs < 0 {
		return nil, errors.Wrap(ErrValidation, "latency must not be negative")
	}

	item, err := e.deps.Items.Get(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "item %s", req.ItemID)
		}
		return nil, err
	}
	if req.SelectedIndex < 0 || req.SelectedIndex >= len(item.Options) {
		return nil, errors.Wrapf(ErrValidation, "selected index %d out of range", req.SelectedIndex)
	}

	// Resolve the card reference before any state commits. No card
	// reference means pure practice: grading, ability, and statistics
	// only. An enrolled card moves only when named.
	var card *srs.CardState
	if req.CardID != "" {
		card, err = e.deps.Cards.Get(ctx, req.CardID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if card != nil && (card.LearnerID != req.LearnerID || card.ItemID != req.ItemID) {
			return nil, errors.Wrapf(ErrValidation, "card %s does not belong to learner %s item %s",
				req.CardID, req.LearnerID, req.ItemID)
		}
	}

	now := e.now()
	correct := req.SelectedIndex == item.CorrectIndex

	stats, err := e.deps.Stats.Get(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	// Difficulty as seen before this answer; under-sampled items count
	// as neutral.
	difficulty := e.selector.EffectiveDifficulty(adaptive.PoolEntry{
		Attempts:   stats.Attempts,
		Difficulty: stats.Difficulty,
	})

	est, err := e.deps.Abilities.Get(ctx, req.LearnerID, item.ConceptID)
	if err != nil {
		return nil, err
	}
	abilityAtAnswer := est.Ability
	est.Record(correct)
	if err := e.deps.Abilities.Upsert(ctx, est); err != nil {
		return nil, err
	}

	if err := e.tracker.Record(stats, req.SelectedIndex, len(item.Options), correct); err != nil {
		return nil, errors.Wrap(ErrValidation, err.Error())
	}
	attempt := itemstats.Attempt{Ability: abilityAtAnswer, Correct: correct}
	if err := e.deps.Stats.AddAttempt(ctx, req.ItemID, attempt, now); err != nil {
		return nil, err
	}
	if e.tracker.ShouldRecompute(stats.Attempts) {
		e.refreshDiscrimination(ctx, stats)
	}
	e.tracker.Evaluate(stats)
	if err := e.deps.Stats.Upsert(ctx, stats); err != nil {
		return nil, err
	}

	result := &AnswerResult{
		Correct:        correct,
		CorrectIndex:   item.CorrectIndex,
		Explanation:    item.Explanation,
		AbilityBefore:  abilityAtAnswer,
		AbilityAfter:   est.Ability,
		ItemDifficulty: difficulty,
	}

	// Practice submissions and dangling card references stop here; the
	// answer still counted for ability and item statistics.
	if card == nil {
		return result, nil
	}

	rating := FuseRating(correct, req.LatencyMs, difficulty)
	scheduling, err := e.applyRating(ctx, card, rating, req.LatencyMs, now)
	if err != nil {
		return nil, err
	}
	result.Scheduling = scheduling
	return result, nil
}

// SubmitReview applies an explicitly rated review to a card.
func (e *Engine) SubmitReview(ctx context.Context, cardID string, rating srs.Rating, latencyMs int64) (*SchedulingResult, error) {
	if cardID == "" {
		return nil, errors.Wrap(ErrValidation, "card id required")
	}
	if !rating.Valid() {
		return nil, errors.Wrapf(ErrValidation, "rating %d out of range", rating)
	}
	if latencyMs < 0 {
		return nil, errors.Wrap(ErrValidation, "latency must not be negative")
	}

	card, err := e.deps.Cards.Get(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "card %s", cardID)
		}
		return nil, err
	}
	return e.applyRating(ctx, card, rating, latencyMs, e.now())
}

// applyRating runs the card's strategy, reclassifies mastery, and
// commits the new state plus its history event under the version read.
func (e *Engine) applyRating(ctx context.Context, card *srs.CardState, rating srs.Rating, latencyMs int64, now time.Time) (*SchedulingResult, error) {
	strategy, err := e.strategies.For(card.Algorithm)
	if err != nil {
		return nil, err
	}
	res, err := strategy.ProcessReview(card, rating, now)
	if err != nil {
		return nil, errors.Wrap(ErrValidation, err.Error())
	}
	res.State.TotalReviews++
	if rating.Success() {
		res.State.TotalCorrect++
	}
	res.State.MasteryLevel = string(mastery.Classify(res.State))

	event := &store.ReviewEvent{
		ID:               uuid.NewString(),
		CardID:           card.ID,
		Rating:           rating,
		LatencyMs:        latencyMs,
		ElapsedDays:      elapsedSince(card, now),
		Retained:         rating.Success(),
		IntervalBefore:   card.IntervalDays,
		IntervalAfter:    res.State.IntervalDays,
		EaseBefore:       card.EaseFactor,
		EaseAfter:        res.State.EaseFactor,
		StabilityBefore:  card.Stability,
		StabilityAfter:   res.State.Stability,
		DifficultyBefore: card.Difficulty,
		DifficultyAfter:  res.State.Difficulty,
		CreatedAt:        now,
	}

	if err := e.deps.Cards.ApplyReview(ctx, res.State, card.Version, event); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, errors.Wrapf(ErrConflict, "card %s version %d", card.ID, card.Version)
		}
		return nil, err
	}

	// Advisory counter for migration eligibility; a miss is not worth
	// failing the review over.
	if err := e.deps.Assignments.IncrementReviews(ctx, card.LearnerID); err != nil {
		e.logger.Warn("review count increment failed", "learner_id", card.LearnerID, "err", err)
	}

	if res.BecameLeech {
		e.logger.Info("card became leech", "card_id", card.ID, "learner_id", card.LearnerID)
	}

	return &SchedulingResult{
		CardID:             card.ID,
		Rating:             rating,
		NextDue:            res.NextDue,
		IntervalDays:       res.IntervalDays,
		MasteryLevel:       res.State.MasteryLevel,
		PredictedRetention: res.PredictedRetention,
		BecameLeech:        res.BecameLeech,
	}, nil
}

// refreshDiscrimination recomputes the item's discrimination from the
// recent attempt window. Concurrent refreshes for the same item share
// one computation.
func (e *Engine) refreshDiscrimination(ctx context.Context, stats *itemstats.Stats) {
	v, err, _ := e.recompute.Do(stats.ItemID, func() (any, error) {
		recent, err := e.deps.Stats.RecentAttempts(ctx, stats.ItemID, e.tracker.Config().Window)
		if err != nil {
			return nil, err
		}
		return e.tracker.Discrimination(recent), nil
	})
	if err != nil {
		e.logger.Warn("discrimination refresh failed", "item_id", stats.ItemID, "err", err)
		return
	}
	stats.Discrimination = v.(float64)
}

// Assignment returns the learner's algorithm assignment, creating one
// on first contact. CanMigrate reports whether MigrateToMemory would
// currently succeed.
func (e *Engine) Assignment(ctx context.Context, learnerID string) (*AssignmentView, error) {
	if learnerID == "" {
		return nil, errors.Wrap(ErrValidation, "learner id required")
	}
	a, err := e.assign.GetOrAssign(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	return &AssignmentView{
		LearnerID:   a.LearnerID,
		Algorithm:   a.Algorithm,
		Reason:      a.Reason,
		ReviewCount: a.ReviewCount,
		CanMigrate:  a.Algorithm != srs.AlgorithmMemory && e.assign.EligibleForMigration(a),
		MigratedAt:  a.MigratedAt,
	}, nil
}

// MigrateToMemory moves an eligible learner and all their cards to the
// memory model. Already-migrated learners get their existing result
// back; the operation is idempotent.
func (e *Engine) MigrateToMemory(ctx context.Context, learnerID string) (*MigrationResult, error) {
	if learnerID == "" {
		return nil, errors.Wrap(ErrValidation, "learner id required")
	}
	a, err := e.assign.GetOrAssign(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if a.Algorithm == srs.AlgorithmMemory {
		return &MigrationResult{LearnerID: learnerID, AlreadyOnIt: true, MigratedAt: a.MigratedAt}, nil
	}
	if !e.assign.EligibleForMigration(a) {
		return nil, errors.Wrapf(ErrNotEligible, "learner %s has %d of %d required reviews",
			learnerID, a.ReviewCount, e.cfg.Assignment.MigrationThreshold)
	}

	now := e.now()
	cards, err := e.deps.Cards.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	migrated := 0
	for _, card := range cards {
		if card.Algorithm == srs.AlgorithmMemory {
			continue
		}
		next := srs.MigrateToMemory(card, now)
		next.MasteryLevel = string(mastery.Classify(next))
		if err := e.deps.Cards.Update(ctx, next, card.Version); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return nil, errors.Wrapf(ErrConflict, "card %s changed during migration", card.ID)
			}
			return nil, err
		}
		migrated++
	}

	a.Algorithm = srs.AlgorithmMemory
	a.Reason = assignment.ReasonMigrated
	a.MigratedAt = now
	if err := e.deps.Assignments.Upsert(ctx, a); err != nil {
		return nil, err
	}
	e.logger.Info("learner migrated to memory model", "learner_id", learnerID, "cards", migrated)

	return &MigrationResult{LearnerID: learnerID, CardsMigrated: migrated, MigratedAt: now}, nil
}

// ReviewHistory returns a card's most recent review events.
func (e *Engine) ReviewHistory(ctx context.Context, cardID string, limit int) ([]*store.ReviewEvent, error) {
	if cardID == "" {
		return nil, errors.Wrap(ErrValidation, "card id required")
	}
	if _, err := e.deps.Cards.Get(ctx, cardID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "card %s", cardID)
		}
		return nil, err
	}
	return e.deps.Events.ListByCard(ctx, cardID, limit)
}

// FlaggedItems returns the items currently flagged for content review.
func (e *Engine) FlaggedItems(ctx context.Context) ([]*itemstats.Stats, error) {
	return e.deps.Stats.ListFlagged(ctx)
}

func elapsedSince(card *srs.CardState, now time.Time) float64 {
	if !card.Reviewed() {
		return 0
	}
	d := now.Sub(card.LastReviewAt).Hours() / 24.0
	if d < 0 {
		return 0
	}
	return d
}
