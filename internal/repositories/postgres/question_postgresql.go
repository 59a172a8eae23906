package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/repositories"
	"gorm.io/gorm"
)

const (
	randomQuestionsRPC = "SELECT * FROM get_random_questions(?, ?, ?)"
	createBatchSize    = 100
)

type QuestionPostgreSQL struct {
	db     *gorm.DB
	useRPC bool
}

// NewQuestionPostgreSQL builds the question repository. With useRPC the random
// selection runs inside the get_random_questions SQL function; otherwise a
// portable ORDER BY RANDOM() query is used (sqlite, or databases without the function).
func NewQuestionPostgreSQL(db *gorm.DB, useRPC bool) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:     db,
		useRPC: useRPC,
	}
}

// GetRandom returns random questions matching the filters
func (q *QuestionPostgreSQL) GetRandom(ctx context.Context, filters repositories.RandomQuestionFilters) ([]*models.Question, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 1
	}

	var questions []*models.Question
	if q.useRPC {
		category := string(models.CategoryMixed)
		if filters.Category != nil {
			category = string(*filters.Category)
		}
		var difficulty *string
		if filters.Difficulty != nil {
			d := string(*filters.Difficulty)
			difficulty = &d
		}

		if err := q.db.WithContext(ctx).Raw(randomQuestionsRPC, category, difficulty, limit).Scan(&questions).Error; err != nil {
			return nil, fmt.Errorf("get_random_questions failed: %w", err)
		}
		return questions, nil
	}

	query := q.db.WithContext(ctx).Model(&models.Question{})
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.Difficulty != nil {
		query = query.Where("difficulty = ?", *filters.Difficulty)
	}
	if err := query.Order("RANDOM()").Limit(limit).Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to select random questions: %w", err)
	}
	return questions, nil
}

// GetByID retrieves a question by ID
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).Where("id = ?", id).First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error) {
	if len(ids) == 0 {
		return []*models.Question{}, nil
	}

	var questions []*models.Question
	if err := q.db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get questions by ids: %w", err)
	}
	return questions, nil
}

// CreateBatch inserts questions in one transaction
func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(questions, createBatchSize).Error; err != nil {
			return fmt.Errorf("failed to create questions: %w", err)
		}
		return nil
	})
}

func (q *QuestionPostgreSQL) CountByCategory(ctx context.Context) (map[models.Category]int64, error) {
	var rows []struct {
		Category models.Category
		Count    int64
	}
	err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}

	counts := make(map[models.Category]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}
