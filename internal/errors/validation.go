package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// ValidationError is one rejected field of a request or question record
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

// ValidationErrors is returned as a whole so the client sees every rejected field at once
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	switch len(ve) {
	case 0:
		return "validation failed"
	case 1:
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	default:
		return "validation failed: " + strings.Join(ve.Fields(), ", ")
	}
}

// Fields lists the rejected field names in order, without duplicates
func (ve ValidationErrors) Fields() []string {
	return lo.Uniq(lo.Map(ve, func(e ValidationError, _ int) string {
		return e.Field
	}))
}

// Has reports whether field was rejected
func (ve ValidationErrors) Has(field string) bool {
	return lo.ContainsBy(ve, func(e ValidationError) bool {
		return e.Field == field
	})
}

func (pe *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", pe.Field, pe.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// ToValidationErrors converts go-playground failures, wrapped or not. Other errors yield nil.
func ToValidationErrors(err error) ValidationErrors {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	return lo.Map(fieldErrs, func(fe validator.FieldError, _ int) ValidationError {
		return ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		}
	})
}

var ruleMessages = map[string]string{
	"required":          "is required",
	"email":             "must be a valid email address",
	"uuid":              "must be a valid UUID",
	"question_type":     "must be multiple_choice or fill_in_the_blank",
	"question_category": "must be reading, listening, writing or speaking",
	"practice_category": "must be mixed, reading, listening, writing or speaking",
	"difficulty_level":  "must be easy, medium or hard",
	"collection_kind":   "must be favorites or wrong_book",
	"oneof":             "must be one of: %s",
	"min":               "must be at least %s",
	"max":               "must be at most %s",
	"gte":               "must be at least %s",
	"len":               "must be exactly %s characters",
}

func messageFor(fe validator.FieldError) string {
	msg, ok := ruleMessages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("failed the '%s' rule", fe.Tag())
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, fe.Param())
	}
	return msg
}
