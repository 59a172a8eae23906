package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/repositories"
	"github.com/SAP-F-2025/ielts-trainer/internal/validator"
)

// QuestionSource serves validated questions. Records that fail validation never reach callers.
type QuestionSource interface {
	// Random returns one matching question, or nil when none exists.
	Random(ctx context.Context, category models.Category, difficulty models.DifficultyLevel) (*models.Question, error)
	// ByIDs returns the valid questions among ids keyed by id. Invalid records are skipped.
	ByIDs(ctx context.Context, ids []string) (map[string]*models.Question, error)
}

type questionSource struct {
	repo      repositories.QuestionRepository
	validator *validator.QuestionValidator
	logger    *slog.Logger
}

func NewQuestionSource(repo repositories.QuestionRepository, validator *validator.QuestionValidator, logger *slog.Logger) QuestionSource {
	return &questionSource{
		repo:      repo,
		validator: validator,
		logger:    logger,
	}
}

func (s *questionSource) Random(ctx context.Context, category models.Category, difficulty models.DifficultyLevel) (*models.Question, error) {
	filters := repositories.NewRandomQuestionFilters(category, difficulty, 1)
	questions, err := s.repo.GetRandom(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch question: %w", err)
	}
	if len(questions) == 0 {
		return nil, nil
	}

	question := questions[0]
	if err := s.validator.ValidateRecord(question); err != nil {
		s.logger.ErrorContext(ctx, "Question record failed validation",
			"question_id", question.ID,
			"error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuestionRecord, err)
	}
	return question, nil
}

func (s *questionSource) ByIDs(ctx context.Context, ids []string) (map[string]*models.Question, error) {
	questions, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}

	byID := make(map[string]*models.Question, len(questions))
	for _, q := range questions {
		if err := s.validator.ValidateRecord(q); err != nil {
			s.logger.WarnContext(ctx, "Skipping invalid question record",
				"question_id", q.ID,
				"error", err)
			continue
		}
		byID[q.ID] = q
	}
	return byID, nil
}
