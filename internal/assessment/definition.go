package assessment

import (
	"fmt"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
)

// ValidateDefinition structurally validates an assessment on the authoring
// side, before it is saved. The whole tree is scanned in one pass and every
// violation is reported, so the builder can surface all problems at once.
// It is idempotent and safe to call on every edit.
func ValidateDefinition(a *models.Assessment) models.ValidationResult {
	errs := []string{}

	if a.Title == "" {
		errs = append(errs, "assessment title is required")
	}
	if len(a.Sections) == 0 {
		errs = append(errs, "assessment needs at least one section")
	}

	for si, section := range a.Sections {
		sectionLabel := fmt.Sprintf("section %d", si+1)
		if section.Title == "" {
			errs = append(errs, sectionLabel+": title is required")
		}
		if len(section.Questions) == 0 {
			errs = append(errs, sectionLabel+": needs at least one question")
		}

		for qi, q := range section.Questions {
			questionLabel := fmt.Sprintf("%s, question %d", sectionLabel, qi+1)
			if q.Title == "" {
				errs = append(errs, questionLabel+": title is required")
			}
			if q.Type.IsChoice() && len(q.Options) < 2 {
				errs = append(errs, questionLabel+": choice questions need at least 2 options")
			}
		}
	}

	return models.ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
