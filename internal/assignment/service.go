// Package assignment decides which scheduling algorithm each learner
// uses. New learners are split evenly between the two algorithms so
// their outcomes can be compared; established learners may migrate to
// the memory model once they have enough review history.
package assignment

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/vocardo/vocardo/internal/srs"
	"github.com/vocardo/vocardo/internal/store"
)

// ReasonRandom marks an assignment made by the even split.
// ReasonManual marks an operator override. ReasonMigrated marks a
// learner moved to the memory model.
const (
	ReasonRandom   = "random"
	ReasonManual   = "manual"
	ReasonMigrated = "migrated"
)

// Config holds assignment policy knobs.
type Config struct {
	// MigrationThreshold is the review count a learner needs before
	// migrating to the memory model.
	MigrationThreshold int
}

// DefaultConfig returns the standard assignment policy.
func DefaultConfig() Config {
	return Config{MigrationThreshold: 100}
}

// Service assigns algorithms to learners.
type Service struct {
	assignments store.AssignmentRepo
	cfg         Config
	rng         *rand.Rand
	logger      *slog.Logger
}

// NewService creates an assignment service. rng may be nil, in which
// case assignments use the shared global source.
func NewService(assignments store.AssignmentRepo, cfg Config, rng *rand.Rand, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{assignments: assignments, cfg: cfg, rng: rng, logger: logger}
}

// GetOrAssign returns the learner's assignment, creating one with an
// even random split on first contact.
func (s *Service) GetOrAssign(ctx context.Context, learnerID string) (*store.Assignment, error) {
	a, err := s.assignments.Get(ctx, learnerID)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	alg := srs.AlgorithmSM2
	if s.coin() {
		alg = srs.AlgorithmMemory
	}
	a = &store.Assignment{LearnerID: learnerID, Algorithm: alg, Reason: ReasonRandom}
	if err := s.assignments.Upsert(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info("assigned algorithm", "learner_id", learnerID, "algorithm", alg)
	return a, nil
}

// EligibleForMigration reports whether the learner has enough review
// history to move to the memory model.
func (s *Service) EligibleForMigration(a *store.Assignment) bool {
	return a.ReviewCount >= s.cfg.MigrationThreshold
}

func (s *Service) coin() bool {
	if s.rng != nil {
		return s.rng.Intn(2) == 1
	}
	return rand.Intn(2) == 1
}
