package adaptive

// AbilityStep is the fixed increment applied to the ability estimate
// after each graded attempt.
const AbilityStep = 0.05

// DefaultAbility is assumed for a learner with no estimate yet.
const DefaultAbility = 0.5

// Estimate is the running ability for one (learner, concept) pair.
// Only the current value and attempt count persist; no history.
type Estimate struct {
	LearnerID string
	ConceptID string
	Ability   float64 // in [0, 1]
	Attempts  int
}

// NewEstimate returns the neutral starting estimate.
func NewEstimate(learnerID, conceptID string) *Estimate {
	return &Estimate{
		LearnerID: learnerID,
		ConceptID: conceptID,
		Ability:   DefaultAbility,
	}
}

// Record folds one graded attempt into the estimate.
func (e *Estimate) Record(correct bool) {
	if correct {
		e.Ability += AbilityStep
	} else {
		e.Ability -= AbilityStep
	}
	if e.Ability > 1 {
		e.Ability = 1
	}
	if e.Ability < 0 {
		e.Ability = 0
	}
	e.Attempts++
}
