// Package assessment implements the rules engine for configurable
// assessments: per-type response validation, conditional question
// visibility, and structural validation of assessment definitions.
//
// Every function here is pure over its explicit inputs. Callers own the
// assessment tree and the response map; the engine is handed snapshots and
// returns reports.
package assessment

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
)

// ValidateResponse checks a single answer against the question's required
// flag and type-specific constraints. Violations are reported, never raised:
// the result carries an ordered list of human-readable messages.
func ValidateResponse(q models.Question, value any) models.ValidationResult {
	// Required-but-empty short-circuits everything else with one error;
	// empty-and-optional short-circuits to no errors.
	if isEmpty(value) {
		if q.Required {
			return models.Invalid("this question is required")
		}
		return models.Valid()
	}

	errs := validateByType(q, value)
	return models.ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

func validateByType(q models.Question, value any) []string {
	switch q.Type {
	case models.QuestionShortText, models.QuestionLongText:
		return validateText(q.Validation, value)
	case models.QuestionNumeric:
		return validateNumeric(q.Validation, value)
	case models.QuestionSingleChoice:
		return validateSingleChoice(value)
	case models.QuestionMultiChoice:
		return validateMultiChoice(q.Validation, value)
	case models.QuestionFileUpload:
		return validateFileUpload(value)
	default:
		// A bad question definition must not abort validation of the
		// rest of the tree, so even this degrades to a report.
		return []string{fmt.Sprintf("unsupported question type %q", q.Type)}
	}
}

func validateText(rules *models.ValidationRules, value any) []string {
	s, ok := value.(string)
	if !ok {
		return []string{"answer must be text"}
	}

	var errs []string
	if rules != nil {
		if rules.MinLength != nil && len(s) < *rules.MinLength {
			errs = append(errs, fmt.Sprintf("answer must be at least %d characters", *rules.MinLength))
		}
		if rules.MaxLength != nil && len(s) > *rules.MaxLength {
			errs = append(errs, fmt.Sprintf("answer must be at most %d characters", *rules.MaxLength))
		}
		if rules.Pattern != nil {
			re, err := regexp.Compile(*rules.Pattern)
			if err != nil {
				errs = append(errs, "question has an invalid answer pattern")
			} else if !re.MatchString(s) {
				errs = append(errs, "answer does not match the expected format")
			}
		}
	}
	return errs
}

func validateNumeric(rules *models.ValidationRules, value any) []string {
	n, ok := toFloat(value)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return []string{"answer must be a number"}
	}

	var errs []string
	if rules != nil {
		if rules.Min != nil && n < *rules.Min {
			errs = append(errs, fmt.Sprintf("answer must be at least %v", *rules.Min))
		}
		if rules.Max != nil && n > *rules.Max {
			errs = append(errs, fmt.Sprintf("answer must be at most %v", *rules.Max))
		}
	}
	return errs
}

// validateSingleChoice only checks the value's shape. Whether the value is
// actually one of the declared options is left to the caller; submitted
// option values are trusted the way the builder produced them.
func validateSingleChoice(value any) []string {
	if _, ok := value.(string); !ok {
		return []string{"answer must be a single selected option"}
	}
	return nil
}

func validateMultiChoice(rules *models.ValidationRules, value any) []string {
	selections, ok := toSlice(value)
	if !ok {
		return []string{"answer must be a list of selected options"}
	}

	var errs []string
	if rules != nil {
		if rules.MinSelections != nil && len(selections) < *rules.MinSelections {
			errs = append(errs, fmt.Sprintf("select at least %d options", *rules.MinSelections))
		}
		if rules.MaxSelections != nil && len(selections) > *rules.MaxSelections {
			errs = append(errs, fmt.Sprintf("select at most %d options", *rules.MaxSelections))
		}
	}
	return errs
}

func validateFileUpload(value any) []string {
	s, ok := value.(string)
	if !ok || s == "" {
		return []string{"a file must be uploaded"}
	}
	return nil
}

// isEmpty treats nil, empty strings and empty selection lists as "no answer"
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}

// toFloat coerces the JSON-decoded shapes an answer can arrive in
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(v, 64)
		return n, err == nil
	}
	return 0, false
}

func toSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}
