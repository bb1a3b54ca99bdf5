package seeds

import (
	"os"
	"path/filepath"
	"testing"
)

const backendSeed = `
job:
  slug: backend-engineer
  title: Backend Engineer
  description: Build and run our APIs.
  tags: [go, postgres]
assessment:
  title: Backend screening
  settings:
    time_limit_minutes: 30
  sections:
    - title: Experience
      questions:
        - id: q1
          type: single_choice
          title: Have you shipped Go to production?
          required: true
          options:
            - {id: o1, label: "Yes", value: "yes"}
            - {id: o2, label: "No", value: "no"}
        - id: q2
          type: numeric
          title: Years of Go experience
          conditional_logic:
            depends_on: q1
            condition: equals
            value: "yes"
          validation:
            min: 0
            max: 40
`

const brokenAssessmentSeed = `
job:
  slug: designer
  title: Product Designer
assessment:
  title: ""
  sections: []
`

func writeSeed(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "backend.yaml", backendSeed)
	writeSeed(t, dir, "notes.txt", "not a seed")

	loader := NewLoader()
	if err := loader.LoadFromDir(dir); err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}

	seed := loader.Get("backend-engineer")
	if seed == nil {
		t.Fatal("backend-engineer seed not found")
	}
	if seed.Title != "Backend Engineer" {
		t.Errorf("unexpected title: %s", seed.Title)
	}
	if seed.Status != "active" {
		t.Errorf("expected default status active, got %s", seed.Status)
	}
	if len(seed.Tags) != 2 {
		t.Errorf("expected 2 tags, got %v", seed.Tags)
	}

	if seed.Assessment == nil {
		t.Fatal("expected an assessment on the seed")
	}
	if seed.Assessment.Settings.TimeLimitMinutes != 30 {
		t.Errorf("expected 30 minute limit, got %d", seed.Assessment.Settings.TimeLimitMinutes)
	}

	q2 := seed.Assessment.Sections[0].Questions[1]
	if q2.ConditionalLogic == nil || q2.ConditionalLogic.DependsOn != "q1" {
		t.Fatalf("conditional logic not parsed: %+v", q2.ConditionalLogic)
	}
	if q2.Validation == nil || q2.Validation.Max == nil || *q2.Validation.Max != 40 {
		t.Errorf("validation rules not parsed: %+v", q2.Validation)
	}

	if got := len(loader.List()); got != 1 {
		t.Errorf("expected 1 seed, got %d", got)
	}
}

func TestLoadRejectsMissingFields(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "bad.yaml", "job:\n  title: Untitled\n")

	loader := NewLoader()
	if err := loader.LoadFromFile(filepath.Join(dir, "bad.yaml")); err == nil {
		t.Error("expected error for missing slug")
	}
}

func TestLoadDropsInvalidAssessment(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "designer.yaml", brokenAssessmentSeed)

	loader := NewLoader()
	if err := loader.LoadFromDir(dir); err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}

	seed := loader.Get("designer")
	if seed == nil {
		t.Fatal("designer seed should still load")
	}
	if seed.Assessment != nil {
		t.Error("structurally invalid assessment must be dropped from the seed")
	}
}
