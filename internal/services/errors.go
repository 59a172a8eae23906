package services

import (
	"errors"

	"github.com/SAP-F-2025/ielts-trainer/internal/auth"
	"github.com/SAP-F-2025/ielts-trainer/internal/cache"
	apperrors "github.com/SAP-F-2025/ielts-trainer/internal/errors"
	"github.com/SAP-F-2025/ielts-trainer/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Practice round errors
	ErrRoundNotPresenting = errors.New("no question is awaiting an answer")
	ErrRoundNotAnswerable = errors.New("favorites can only change while a question is shown")
	ErrEmptyAnswer        = errors.New("answer must not be blank")
	ErrNoActiveRound      = errors.New("no practice round has been started")
	// ErrStaleRound means the request belongs to a round that has been replaced.
	ErrStaleRound = cache.ErrStaleRound
	// ErrRoundConflict means another request saved the same round first.
	ErrRoundConflict = cache.ErrRoundConflict

	// Question errors
	ErrInvalidQuestionRecord = errors.New("question record failed validation")

	// Collection errors
	ErrCollectionEntryNotFound = errors.New("collection entry not found")
	ErrUnknownCollection       = errors.New("unknown collection")

	// Import errors
	ErrImportFileInvalid = errors.New("import file is not a readable workbook")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound) ||
		errors.Is(err, ErrCollectionEntryNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return auth.IsCredentialError(err)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrEmptyAnswer) ||
		errors.Is(err, ErrUnknownCollection) ||
		errors.Is(err, ErrImportFileInvalid) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsConflict checks if the request no longer matches the round state
func IsConflict(err error) bool {
	return errors.Is(err, ErrStaleRound) ||
		errors.Is(err, ErrRoundConflict) ||
		errors.Is(err, ErrRoundNotPresenting) ||
		errors.Is(err, ErrRoundNotAnswerable) ||
		errors.Is(err, ErrNoActiveRound)
}
