package pipeline

import (
	"testing"
	"time"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
)

func entry(stage models.Stage, unixMillis int64) models.TimelineEntry {
	return models.TimelineEntry{
		Stage:     stage,
		ChangedAt: time.UnixMilli(unixMillis).UTC(),
		ChangedBy: "hr",
	}
}

func TestSortTimelineByStageThenTime(t *testing.T) {
	in := []models.TimelineEntry{
		entry(models.StageTech, 300),
		entry(models.StageApplied, 100),
		entry(models.StageScreen, 200),
	}

	got := SortTimeline(in)

	want := []models.Stage{models.StageApplied, models.StageScreen, models.StageTech}
	for i, s := range want {
		if got[i].Stage != s {
			t.Errorf("position %d: got %s, want %s", i, got[i].Stage, s)
		}
	}

	// input order untouched
	if in[0].Stage != models.StageTech {
		t.Error("SortTimeline must not mutate its input")
	}
}

func TestSortTimelineTimestampTieBreak(t *testing.T) {
	// Same stage: earlier timestamp first.
	in := []models.TimelineEntry{
		entry(models.StageApplied, 100),
		entry(models.StageApplied, 50),
	}

	got := SortTimeline(in)
	if !got[0].ChangedAt.Before(got[1].ChangedAt) {
		t.Errorf("expected timestamp-ascending order within a stage, got %v then %v",
			got[0].ChangedAt, got[1].ChangedAt)
	}
}

func TestSortTimelineStability(t *testing.T) {
	// Identical (stage, timestamp) keys must keep their relative input
	// order; batch-seeded fixtures often share one millisecond.
	in := []models.TimelineEntry{
		{Stage: models.StageApplied, ChangedAt: time.UnixMilli(100).UTC(), ChangedBy: "first"},
		{Stage: models.StageApplied, ChangedAt: time.UnixMilli(100).UTC(), ChangedBy: "second"},
	}

	got := SortTimeline(in)
	if got[0].ChangedBy != "first" || got[1].ChangedBy != "second" {
		t.Errorf("equal-key entries reordered: %s then %s", got[0].ChangedBy, got[1].ChangedBy)
	}
}

func TestSortTimelineRejectedSortsLast(t *testing.T) {
	// A day-1 rejection still displays after a later hire-track entry.
	in := []models.TimelineEntry{
		entry(models.StageRejected, 100),
		entry(models.StageScreen, 900),
		entry(models.StageApplied, 500),
	}

	got := SortTimeline(in)
	if got[len(got)-1].Stage != models.StageRejected {
		t.Errorf("rejected must sort last, got %s", got[len(got)-1].Stage)
	}
}

func TestValidateCandidateStateOK(t *testing.T) {
	c := &models.Candidate{
		Stage: models.StageTech,
		Timeline: []models.TimelineEntry{
			entry(models.StageApplied, 100),
			entry(models.StageScreen, 200),
			entry(models.StageTech, 300),
		},
	}

	res := ValidateCandidateState(c)
	if !res.IsValid {
		t.Fatalf("expected valid candidate, got errors: %v", res.Errors)
	}
	if res.Errors == nil || len(res.Errors) != 0 {
		t.Errorf("expected empty error list, got %v", res.Errors)
	}
}

func TestValidateCandidateStateMutuallyExclusiveTerminals(t *testing.T) {
	c := &models.Candidate{
		Timeline: []models.TimelineEntry{
			entry(models.StageApplied, 100),
			entry(models.StageScreen, 200),
			entry(models.StageHired, 300),
			entry(models.StageRejected, 400),
		},
	}

	res := ValidateCandidateState(c)
	if res.IsValid {
		t.Fatal("candidate with both hired and rejected must fail the audit")
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected at least one reported error")
	}
}

func TestValidateCandidateStateIllegalAdjacentPairs(t *testing.T) {
	// applied -> tech skips screen; tech -> hired skips offer.
	c := &models.Candidate{
		Timeline: []models.TimelineEntry{
			entry(models.StageApplied, 100),
			entry(models.StageTech, 200),
			entry(models.StageHired, 300),
		},
	}

	res := ValidateCandidateState(c)
	if res.IsValid {
		t.Fatal("timeline with skipped stages must fail the audit")
	}
	if len(res.Errors) != 2 {
		t.Errorf("expected one error per offending pair (2), got %d: %v", len(res.Errors), res.Errors)
	}
}

func TestValidateCandidateStateReadOnly(t *testing.T) {
	c := &models.Candidate{
		Timeline: []models.TimelineEntry{
			entry(models.StageTech, 300),
			entry(models.StageApplied, 100),
		},
	}

	_ = ValidateCandidateState(c)

	if c.Timeline[0].Stage != models.StageTech {
		t.Error("audit must not reorder the candidate's own timeline")
	}
}
