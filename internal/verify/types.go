package verify

import (
	"time"

	"github.com/vocardo/vocardo/internal/srs"
)

// ItemView is the learner-facing shape of a multiple-choice item. It
// deliberately omits the correct index and explanation; those are only
// revealed by SubmitItemAnswer.
type ItemView struct {
	ItemID    string   `json:"item_id"`
	ConceptID string   `json:"concept_id"`
	Question  string   `json:"question"`
	Options   []string `json:"options"`

	// Reason says how the selector chose this item:
	// difficulty_match, band_widened, or closest_available.
	Reason string `json:"reason"`
}

// AnswerRequest is one graded multiple-choice answer. CardID is
// optional: when set it names the card to schedule against; when empty
// the answer is pure practice and no card moves.
type AnswerRequest struct {
	LearnerID     string `json:"learner_id"`
	ItemID        string `json:"item_id"`
	CardID        string `json:"card_id,omitempty"`
	SelectedIndex int    `json:"selected_index"`
	LatencyMs     int64  `json:"latency_ms"`
}

// SchedulingResult reports how an answer or review moved a card.
type SchedulingResult struct {
	CardID             string     `json:"card_id"`
	Rating             srs.Rating `json:"rating"`
	NextDue            time.Time  `json:"next_due"`
	IntervalDays       int        `json:"interval_days"`
	MasteryLevel       string     `json:"mastery_level"`
	PredictedRetention *float64   `json:"predicted_retention,omitempty"`
	BecameLeech        bool       `json:"became_leech,omitempty"`
}

// AnswerResult is the outcome of SubmitItemAnswer. ItemDifficulty is
// the difficulty the fusion saw (neutral when under-sampled).
// Scheduling is nil for practice submissions and for card references
// that do not resolve; the answer still feeds ability and item
// statistics.
type AnswerResult struct {
	Correct        bool    `json:"correct"`
	CorrectIndex   int     `json:"correct_index"`
	Explanation    string  `json:"explanation,omitempty"`
	AbilityBefore  float64 `json:"ability_before"`
	AbilityAfter   float64 `json:"ability_after"`
	ItemDifficulty float64 `json:"item_difficulty"`

	Scheduling *SchedulingResult `json:"scheduling,omitempty"`
}

// AssignmentView is the exposed shape of a learner's algorithm
// assignment, including whether migration is currently allowed.
type AssignmentView struct {
	LearnerID   string        `json:"learner_id"`
	Algorithm   srs.Algorithm `json:"algorithm"`
	Reason      string        `json:"reason"`
	ReviewCount int           `json:"review_count"`
	CanMigrate  bool          `json:"can_migrate"`
	MigratedAt  time.Time     `json:"migrated_at,omitempty"`
}

// MigrationResult reports a learner migration to the memory model.
type MigrationResult struct {
	LearnerID     string    `json:"learner_id"`
	CardsMigrated int       `json:"cards_migrated"`
	AlreadyOnIt   bool      `json:"already_on_it,omitempty"`
	MigratedAt    time.Time `json:"migrated_at"`
}
