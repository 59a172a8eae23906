package validator

import (
	"reflect"
	"strings"

	apperrors "github.com/SAP-F-2025/ielts-trainer/internal/errors"
	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/go-playground/validator/v10"
)

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ToValidationErrors converts go-playground failures into field errors keyed by JSON name
func ToValidationErrors(err error) ValidationErrors {
	return apperrors.ToValidationErrors(err)
}

// Validator is the main validator instance that combines struct tags and record checks
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(structValidator),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and converts failures to ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// ValidateVar validates a single value against a tag expression
func (v *Validator) ValidateVar(field string, value interface{}, tag string) error {
	if err := v.structValidator.Var(value, tag); err != nil {
		errs := ToValidationErrors(err)
		for i := range errs {
			errs[i].Field = field
		}
		if len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("question_category", validateQuestionCategory)
	validate.RegisterValidation("practice_category", validatePracticeCategory)
	validate.RegisterValidation("difficulty_level", validateDifficultyLevel)
	validate.RegisterValidation("collection_kind", validateCollectionKind)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	switch models.QuestionType(fl.Field().String()) {
	case models.MultipleChoice, models.FillInBlank:
		return true
	}
	return false
}

func validateQuestionCategory(fl validator.FieldLevel) bool {
	return models.IsQuestionCategory(models.Category(fl.Field().String()))
}

func validatePracticeCategory(fl validator.FieldLevel) bool {
	return models.IsPracticeCategory(models.Category(fl.Field().String()))
}

func validateDifficultyLevel(fl validator.FieldLevel) bool {
	return models.IsDifficultyLevel(models.DifficultyLevel(fl.Field().String()))
}

func validateCollectionKind(fl validator.FieldLevel) bool {
	return models.CollectionKind(fl.Field().String()).Valid()
}
