package assessment

import (
	"strings"
	"testing"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
)

func intPtr(n int) *int          { return &n }
func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string    { return &s }

func TestRequiredShortCircuit(t *testing.T) {
	q := models.Question{
		ID:       "q1",
		Type:     models.QuestionShortText,
		Title:    "Name",
		Required: true,
	}

	res := ValidateResponse(q, "")
	if res.IsValid {
		t.Fatal("empty required answer must fail")
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected exactly one required error, got %v", res.Errors)
	}

	res = ValidateResponse(q, "Ada")
	if !res.IsValid || len(res.Errors) != 0 {
		t.Errorf("non-empty answer should pass, got %v", res.Errors)
	}
}

func TestOptionalEmptySkipsAllChecks(t *testing.T) {
	q := models.Question{
		ID:   "q1",
		Type: models.QuestionShortText,
		Validation: &models.ValidationRules{
			MinLength: intPtr(10),
		},
	}

	res := ValidateResponse(q, "")
	if !res.IsValid {
		t.Errorf("empty optional answer must pass untouched, got %v", res.Errors)
	}
	res = ValidateResponse(q, nil)
	if !res.IsValid {
		t.Errorf("nil optional answer must pass untouched, got %v", res.Errors)
	}
}

func TestTextLengthBounds(t *testing.T) {
	q := models.Question{
		ID:   "q1",
		Type: models.QuestionLongText,
		Validation: &models.ValidationRules{
			MinLength: intPtr(3),
			MaxLength: intPtr(5),
		},
	}

	tests := []struct {
		value   any
		wantOK  bool
	}{
		{"ab", false},
		{"abc", true},
		{"abcde", true},
		{"abcdef", false},
		{42, false}, // not text at all
	}

	for _, tt := range tests {
		res := ValidateResponse(q, tt.value)
		if res.IsValid != tt.wantOK {
			t.Errorf("value %v: got valid=%v errors=%v, want valid=%v", tt.value, res.IsValid, res.Errors, tt.wantOK)
		}
	}
}

func TestTextPattern(t *testing.T) {
	q := models.Question{
		ID:   "q1",
		Type: models.QuestionShortText,
		Validation: &models.ValidationRules{
			Pattern: strPtr(`^[a-z]+@[a-z]+\.[a-z]+$`),
		},
	}

	if res := ValidateResponse(q, "ada@lovelace.dev"); !res.IsValid {
		t.Errorf("matching value rejected: %v", res.Errors)
	}
	if res := ValidateResponse(q, "not-an-email"); res.IsValid {
		t.Error("non-matching value accepted")
	}

	// A broken pattern in the definition must degrade to a report, not panic
	q.Validation.Pattern = strPtr(`([`)
	res := ValidateResponse(q, "anything")
	if res.IsValid {
		t.Error("invalid pattern should report an error")
	}
}

func TestNumericBounds(t *testing.T) {
	q := models.Question{
		ID:       "q1",
		Type:     models.QuestionNumeric,
		Required: true,
		Validation: &models.ValidationRules{
			Min: floatPtr(0),
			Max: floatPtr(10),
		},
	}

	tests := []struct {
		value  any
		wantOK bool
	}{
		{float64(-1), false},
		{float64(0), true}, // bounds are inclusive
		{float64(5), true},
		{float64(10), true},
		{float64(11), false},
		{"7", true}, // numeric strings parse
		{"seven", false},
	}

	for _, tt := range tests {
		res := ValidateResponse(q, tt.value)
		if res.IsValid != tt.wantOK {
			t.Errorf("value %v: got valid=%v errors=%v, want valid=%v", tt.value, res.IsValid, res.Errors, tt.wantOK)
		}
	}
}

func TestMultiChoiceSelectionBounds(t *testing.T) {
	q := models.Question{
		ID:   "q1",
		Type: models.QuestionMultiChoice,
		Validation: &models.ValidationRules{
			MinSelections: intPtr(1),
			MaxSelections: intPtr(2),
		},
	}

	if res := ValidateResponse(q, []any{"go"}); !res.IsValid {
		t.Errorf("one selection rejected: %v", res.Errors)
	}
	if res := ValidateResponse(q, []any{"go", "sql", "react"}); res.IsValid {
		t.Error("three selections accepted, max is 2")
	}
	if res := ValidateResponse(q, "go"); res.IsValid {
		t.Error("scalar answer accepted for a multi-choice question")
	}
}

func TestSingleChoiceTypeCheck(t *testing.T) {
	q := models.Question{
		ID:   "q1",
		Type: models.QuestionSingleChoice,
		Options: []models.Option{
			{ID: "o1", Label: "Yes", Value: "yes"},
			{ID: "o2", Label: "No", Value: "no"},
		},
	}

	if res := ValidateResponse(q, "yes"); !res.IsValid {
		t.Errorf("string answer rejected: %v", res.Errors)
	}
	if res := ValidateResponse(q, []any{"yes"}); res.IsValid {
		t.Error("list answer accepted for a single-choice question")
	}
}

func TestFileUpload(t *testing.T) {
	q := models.Question{ID: "q1", Type: models.QuestionFileUpload, Required: true}

	if res := ValidateResponse(q, "resume.pdf"); !res.IsValid {
		t.Errorf("file name rejected: %v", res.Errors)
	}
	if res := ValidateResponse(q, 123); res.IsValid {
		t.Error("non-string upload reference accepted")
	}
}

func TestUnsupportedTypeFailsLoudly(t *testing.T) {
	q := models.Question{ID: "q1", Type: "hologram"}

	res := ValidateResponse(q, "anything")
	if res.IsValid {
		t.Fatal("unknown question type must not silently pass")
	}
	if !strings.Contains(res.Errors[0], "unsupported") {
		t.Errorf("expected an unsupported-type error, got %v", res.Errors)
	}
}
