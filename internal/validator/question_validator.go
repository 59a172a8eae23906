package validator

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/go-playground/validator/v10"
)

// QuestionValidator checks question records crossing the store boundary.
type QuestionValidator struct {
	structValidator *validator.Validate
}

func NewQuestionValidator(structValidator *validator.Validate) *QuestionValidator {
	return &QuestionValidator{structValidator: structValidator}
}

// ValidateRecord checks a question read from or written to the store.
// Field tags cover presence and enums; the rest is type-specific.
func (v *QuestionValidator) ValidateRecord(q *models.Question) error {
	if q == nil {
		return ValidationErrors{{Field: "question", Message: "is required"}}
	}

	var errs ValidationErrors
	if strings.TrimSpace(q.ID) == "" {
		errs = append(errs, ValidationError{Field: "id", Message: "is required", Rule: "required"})
	}

	if err := v.structValidator.Struct(q); err != nil {
		errs = append(errs, ToValidationErrors(err)...)
	}

	if strings.TrimSpace(q.QuestionText) == "" && !errs.Has("question_text") {
		errs = append(errs, ValidationError{Field: "question_text", Message: "must not be blank", Rule: "required"})
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" && !errs.Has("correct_answer") {
		errs = append(errs, ValidationError{Field: "correct_answer", Message: "must not be blank", Rule: "required"})
	}

	if q.Type == models.MultipleChoice {
		errs = append(errs, v.validateOptions(q)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateNew checks a record that has not been assigned an id yet.
func (v *QuestionValidator) ValidateNew(q *models.Question) error {
	if q == nil {
		return ValidationErrors{{Field: "question", Message: "is required"}}
	}
	candidate := *q
	if candidate.ID == "" {
		candidate.ID = "pending"
	}
	return v.ValidateRecord(&candidate)
}

func (v *QuestionValidator) validateOptions(q *models.Question) ValidationErrors {
	var errs ValidationErrors
	if len(q.Options) < 2 {
		return ValidationErrors{{
			Field:   "options",
			Message: "multiple choice questions need at least 2 options",
			Value:   len(q.Options),
			Rule:    "min",
		}}
	}

	seen := make(map[string]struct{}, len(q.Options))
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("options[%d]", i),
				Message: "must not be blank",
			})
			continue
		}
		if _, dup := seen[opt]; dup {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("options[%d]", i),
				Message: "duplicates an earlier option",
				Value:   opt,
			})
		}
		seen[opt] = struct{}{}
	}
	return errs
}
