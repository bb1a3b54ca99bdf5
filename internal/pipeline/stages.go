// Package pipeline implements the hiring-stage state machine.
//
// Stage graph:
//
//	applied ──► screen ──► tech ──► offer ──► hired
//	    │          │         │        │
//	    └──────────┴─────────┴────────┴──► rejected
//
// Progression is strictly forward, one stage at a time; rejection is
// reachable from every non-terminal stage. hired and rejected are terminal.
package pipeline

import (
	"fmt"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
)

// stageSequence is the canonical forward order of the pipeline.
// rejected is deliberately absent: it is an absorbing state, not a step.
var stageSequence = []models.Stage{
	models.StageApplied,
	models.StageScreen,
	models.StageTech,
	models.StageOffer,
	models.StageHired,
}

// validTransitions lists every allowed (from → to) pair.
// hired and rejected have no entry: terminal stages have no outgoing edges.
var validTransitions = map[models.Stage][]models.Stage{
	models.StageApplied: {models.StageScreen, models.StageRejected},
	models.StageScreen:  {models.StageTech, models.StageRejected},
	models.StageTech:    {models.StageOffer, models.StageRejected},
	models.StageOffer:   {models.StageHired, models.StageRejected},
}

// rejectedOrderIndex places rejected after every sequenced stage so that
// rejection entries always sort last in a timeline, regardless of when they
// happened. Unknown stages sort after even that.
var (
	rejectedOrderIndex = len(stageSequence)
	unknownOrderIndex  = rejectedOrderIndex + 1
)

// ParseStage converts a raw string to a Stage, returning an error for
// unknown values.
func ParseStage(s string) (models.Stage, error) {
	st := models.Stage(s)
	switch st {
	case models.StageApplied, models.StageScreen, models.StageTech,
		models.StageOffer, models.StageHired, models.StageRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

// IsValidTransition returns true when moving from → to is permitted.
// It is total: any pair of values, including garbage, gets an answer.
func IsValidTransition(from, to models.Stage) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal or unknown stage
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// NextStages returns the stages directly reachable from current, in policy
// order. Terminal and unknown stages yield nil. Callers use this to populate
// "move to" choices, so it must never offer an illegal transition.
func NextStages(current models.Stage) []models.Stage {
	allowed, ok := validTransitions[current]
	if !ok {
		return nil
	}
	out := make([]models.Stage, len(allowed))
	copy(out, allowed)
	return out
}

// StageOrderIndex returns the sorting key for a stage: the canonical sequence
// index for sequenced stages, a sentinel past the sequence for rejected, and
// one past that for anything unrecognized.
func StageOrderIndex(stage models.Stage) int {
	for i, s := range stageSequence {
		if s == stage {
			return i
		}
	}
	if stage == models.StageRejected {
		return rejectedOrderIndex
	}
	return unknownOrderIndex
}
