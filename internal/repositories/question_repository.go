package repositories

import (
	"context"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
)

// QuestionRepository reads the question bank
type QuestionRepository interface {
	// GetRandom returns up to filters.Limit random questions. No match is an empty slice, not an error.
	GetRandom(ctx context.Context, filters RandomQuestionFilters) ([]*models.Question, error)
	GetByID(ctx context.Context, id string) (*models.Question, error)
	// GetByIDs returns the questions that exist, in no particular order
	GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error)

	CreateBatch(ctx context.Context, questions []*models.Question) error
	CountByCategory(ctx context.Context) (map[models.Category]int64, error)
}
