package assessment

import (
	"testing"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
)

func TestValidateDefinitionOK(t *testing.T) {
	a := &models.Assessment{
		JobID: "job-1",
		Title: "Backend screening",
		Sections: []models.Section{
			{
				Title: "Basics",
				Questions: []models.Question{
					{ID: "q1", Type: models.QuestionShortText, Title: "Name"},
					{
						ID:    "q2",
						Type:  models.QuestionSingleChoice,
						Title: "Remote?",
						Options: []models.Option{
							{ID: "o1", Label: "Yes", Value: "yes"},
							{ID: "o2", Label: "No", Value: "no"},
						},
					},
				},
			},
		},
	}

	res := ValidateDefinition(a)
	if !res.IsValid {
		t.Fatalf("expected valid definition, got %v", res.Errors)
	}
}

func TestValidateDefinitionReportsEveryProblem(t *testing.T) {
	// One section missing a title, another with an under-optioned choice
	// question: a single pass must report both.
	a := &models.Assessment{
		JobID: "job-1",
		Title: "Broken assessment",
		Sections: []models.Section{
			{
				Title: "", // missing
				Questions: []models.Question{
					{ID: "q1", Type: models.QuestionShortText, Title: "Name"},
				},
			},
			{
				Title: "Choices",
				Questions: []models.Question{
					{
						ID:      "q2",
						Type:    models.QuestionSingleChoice,
						Title:   "Pick one",
						Options: []models.Option{{ID: "o1", Label: "Only", Value: "only"}},
					},
				},
			},
		},
	}

	res := ValidateDefinition(a)
	if res.IsValid {
		t.Fatal("expected failing definition")
	}
	if len(res.Errors) < 2 {
		t.Fatalf("expected at least 2 distinct errors in one pass, got %v", res.Errors)
	}
}

func TestValidateDefinitionEmptyTree(t *testing.T) {
	res := ValidateDefinition(&models.Assessment{JobID: "job-1"})
	if res.IsValid {
		t.Fatal("empty assessment must fail")
	}
	// Missing title and missing sections are both reported.
	if len(res.Errors) != 2 {
		t.Errorf("expected 2 errors, got %v", res.Errors)
	}
}

func TestValidateDefinitionEmptySection(t *testing.T) {
	a := &models.Assessment{
		Title: "Screening",
		Sections: []models.Section{
			{Title: "Empty"},
		},
	}

	res := ValidateDefinition(a)
	if res.IsValid {
		t.Fatal("section without questions must fail")
	}
}

func TestValidateDefinitionIdempotent(t *testing.T) {
	a := &models.Assessment{Title: "", Sections: nil}

	first := ValidateDefinition(a)
	second := ValidateDefinition(a)
	if len(first.Errors) != len(second.Errors) {
		t.Errorf("repeated validation diverged: %v vs %v", first.Errors, second.Errors)
	}
}
