package pipeline

import (
	"testing"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
)

var allStages = []models.Stage{
	models.StageApplied,
	models.StageScreen,
	models.StageTech,
	models.StageOffer,
	models.StageHired,
	models.StageRejected,
}

func TestIsValidTransitionTotality(t *testing.T) {
	// Every pair in the full cross-product must have a defined answer.
	count := 0
	for _, from := range allStages {
		for _, to := range allStages {
			_ = IsValidTransition(from, to)
			count++
		}
	}
	if count != 36 {
		t.Fatalf("expected 36 combinations, checked %d", count)
	}

	// Garbage values must not panic either
	if IsValidTransition("limbo", models.StageScreen) {
		t.Error("unknown from-stage should never allow a transition")
	}
	if IsValidTransition(models.StageApplied, "limbo") {
		t.Error("unknown to-stage should never be reachable")
	}
}

func TestTerminalStagesAbsorb(t *testing.T) {
	for _, to := range allStages {
		if IsValidTransition(models.StageHired, to) {
			t.Errorf("hired must have no outgoing transition, got hired -> %s", to)
		}
		if IsValidTransition(models.StageRejected, to) {
			t.Errorf("rejected must have no outgoing transition, got rejected -> %s", to)
		}
	}
}

func TestRejectionReachableFromEveryActiveStage(t *testing.T) {
	for _, from := range []models.Stage{models.StageApplied, models.StageScreen, models.StageTech, models.StageOffer} {
		if !IsValidTransition(from, models.StageRejected) {
			t.Errorf("rejection must be reachable from %s", from)
		}
	}
}

func TestForwardOnlyProgression(t *testing.T) {
	// Within the canonical sequence, the only legal non-rejection move is to
	// the immediate successor. No skipping, no going back.
	for i, from := range stageSequence {
		for j, to := range stageSequence {
			got := IsValidTransition(from, to)
			want := j == i+1
			if got != want {
				t.Errorf("IsValidTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestNextStages(t *testing.T) {
	tests := []struct {
		current models.Stage
		want    []models.Stage
	}{
		{models.StageApplied, []models.Stage{models.StageScreen, models.StageRejected}},
		{models.StageScreen, []models.Stage{models.StageTech, models.StageRejected}},
		{models.StageTech, []models.Stage{models.StageOffer, models.StageRejected}},
		{models.StageOffer, []models.Stage{models.StageHired, models.StageRejected}},
		{models.StageHired, nil},
		{models.StageRejected, nil},
	}

	for _, tt := range tests {
		got := NextStages(tt.current)
		if len(got) != len(tt.want) {
			t.Errorf("NextStages(%s) = %v, want %v", tt.current, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("NextStages(%s)[%d] = %s, want %s", tt.current, i, got[i], tt.want[i])
			}
		}
	}
}

func TestNextStagesReturnsCopy(t *testing.T) {
	first := NextStages(models.StageApplied)
	first[0] = models.StageHired
	second := NextStages(models.StageApplied)
	if second[0] != models.StageScreen {
		t.Error("mutating a NextStages result must not corrupt the policy table")
	}
}

func TestStageOrderIndex(t *testing.T) {
	tests := []struct {
		stage models.Stage
		want  int
	}{
		{models.StageApplied, 0},
		{models.StageScreen, 1},
		{models.StageTech, 2},
		{models.StageOffer, 3},
		{models.StageHired, 4},
		{models.StageRejected, 5},
		{"limbo", 6},
	}

	for _, tt := range tests {
		if got := StageOrderIndex(tt.stage); got != tt.want {
			t.Errorf("StageOrderIndex(%s) = %d, want %d", tt.stage, got, tt.want)
		}
	}

	// rejected sorts after every sequenced stage
	for _, s := range stageSequence {
		if StageOrderIndex(models.StageRejected) <= StageOrderIndex(s) {
			t.Errorf("rejected must sort after %s", s)
		}
	}
}

func TestParseStage(t *testing.T) {
	for _, s := range allStages {
		got, err := ParseStage(string(s))
		if err != nil {
			t.Errorf("ParseStage(%q) unexpected error: %v", s, err)
		}
		if got != s {
			t.Errorf("ParseStage(%q) = %q", s, got)
		}
	}

	if _, err := ParseStage("interviewing"); err == nil {
		t.Error("expected error for unknown stage")
	}
}
