package repositories

import (
	"github.com/SAP-F-2025/ielts-trainer/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

// RandomQuestionFilters selects questions for a practice round.
// A nil Category or Difficulty means "any".
type RandomQuestionFilters struct {
	Category   *models.Category        `json:"category"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	Limit      int                     `json:"limit"`
}

// NewRandomQuestionFilters maps a practice selection to store filters.
// Mixed practice drops both the category and the difficulty filter.
func NewRandomQuestionFilters(category models.Category, difficulty models.DifficultyLevel, limit int) RandomQuestionFilters {
	filters := RandomQuestionFilters{Limit: limit}
	if category != models.CategoryMixed {
		filters.Category = &category
		filters.Difficulty = &difficulty
	}
	return filters
}

// ===== AGGREGATE =====

// Repository groups the per-table repositories behind one handle.
type Repository interface {
	Question() QuestionRepository
	History() HistoryRepository
	Favorites() CollectionRepository
	WrongBook() CollectionRepository
	Profile() ProfileRepository

	// Collection returns the favorites or wrong-book repository for kind.
	Collection(kind models.CollectionKind) (CollectionRepository, error)
}
