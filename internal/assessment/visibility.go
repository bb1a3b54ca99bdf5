package assessment

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
)

// IsVisible decides whether a question is currently shown, given the
// in-progress response snapshot. Visibility is a pure function of the
// current answers and must be re-evaluated on every response change.
//
// A question with no conditional logic is always visible. A dependent
// question whose trigger has not been answered yet is hidden: it cannot be
// relevant before its trigger exists.
func IsVisible(q models.Question, responses models.ResponseSet) bool {
	rule := q.ConditionalLogic
	if rule == nil {
		return true
	}

	dep, ok := responses[rule.DependsOn]
	if !ok {
		return false
	}

	switch rule.Condition {
	case models.ConditionEquals:
		return valuesEqual(dep.Value, rule.Value)
	case models.ConditionNotEquals:
		return !valuesEqual(dep.Value, rule.Value)
	case models.ConditionContains:
		return valueContains(dep.Value, rule.Value)
	case models.ConditionNotContains:
		return !valueContains(dep.Value, rule.Value)
	case models.ConditionGreaterThan:
		return compareNumeric(dep.Value, rule.Value, func(a, b float64) bool { return a > b })
	case models.ConditionLessThan:
		return compareNumeric(dep.Value, rule.Value, func(a, b float64) bool { return a < b })
	}

	// Unknown operator: show the question rather than silently hiding it.
	return true
}

// VisibleQuestions filters a section's questions, preserving their original
// order, to those visible against the given response snapshot.
func VisibleQuestions(section models.Section, responses models.ResponseSet) []models.Question {
	visible := make([]models.Question, 0, len(section.Questions))
	for _, q := range section.Questions {
		if IsVisible(q, responses) {
			visible = append(visible, q)
		}
	}
	return visible
}

// valuesEqual compares two answer values. Values arrive JSON-decoded, so
// primitives compare by their stringified form (42 and 42.0 are the same
// answer; "yes" and "no" are not).
func valuesEqual(a, b any) bool {
	return stringify(a) == stringify(b)
}

// valueContains implements the contains operator: membership when the
// dependent answer is a list, case-insensitive substring otherwise.
func valueContains(haystack, needle any) bool {
	if items, ok := toSlice(haystack); ok {
		for _, item := range items {
			if valuesEqual(item, needle) {
				return true
			}
		}
		return false
	}
	return strings.Contains(
		strings.ToLower(stringify(haystack)),
		strings.ToLower(stringify(needle)),
	)
}

// compareNumeric coerces both sides to numbers. Anything non-numeric fails
// the comparison, the way NaN poisons any ordering.
func compareNumeric(a, b any, cmp func(a, b float64) bool) bool {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if !okA || !okB || math.IsNaN(fa) || math.IsNaN(fb) {
		return false
	}
	return cmp(fa, fb)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
