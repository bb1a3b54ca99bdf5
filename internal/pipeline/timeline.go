package pipeline

import (
	"fmt"
	"sort"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
)

// SortTimeline returns the entries ordered by (stage order index, changed_at)
// ascending. The sort is stable so that entries recorded in the same
// millisecond keep their relative input order between runs. The input slice
// is not mutated.
func SortTimeline(entries []models.TimelineEntry) []models.TimelineEntry {
	sorted := make([]models.TimelineEntry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		oi, oj := StageOrderIndex(sorted[i].Stage), StageOrderIndex(sorted[j].Stage)
		if oi != oj {
			return oi < oj
		}
		return sorted[i].ChangedAt.Before(sorted[j].ChangedAt)
	})

	return sorted
}

// ValidateCandidateState audits a candidate's timeline against the stage
// machine. It reports every problem it finds and never mutates or repairs
// the candidate; reacting to the report is the caller's call.
//
// Checks:
//   - hired and rejected are mutually exclusive terminal outcomes
//   - every adjacent pair in the canonically sorted timeline must be a
//     legal transition (one error per offending pair)
func ValidateCandidateState(c *models.Candidate) models.ValidationResult {
	errs := []string{}

	var hasHired, hasRejected bool
	for _, e := range c.Timeline {
		switch e.Stage {
		case models.StageHired:
			hasHired = true
		case models.StageRejected:
			hasRejected = true
		}
	}
	if hasHired && hasRejected {
		errs = append(errs, "timeline contains both hired and rejected entries")
	}

	sorted := SortTimeline(c.Timeline)
	for i := 1; i < len(sorted); i++ {
		from, to := sorted[i-1].Stage, sorted[i].Stage
		if !IsValidTransition(from, to) {
			errs = append(errs, fmt.Sprintf("illegal transition from %s to %s", from, to))
		}
	}

	return models.ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
