package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	FillInBlank    QuestionType = "fill_in_the_blank"
)

type Category string

const (
	CategoryReading   Category = "reading"
	CategoryListening Category = "listening"
	CategoryWriting   Category = "writing"
	CategorySpeaking  Category = "speaking"

	// CategoryMixed is a practice filter only. No stored question carries it.
	CategoryMixed Category = "mixed"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// DefaultDifficulty is used by the dashboard and when a practice link omits it.
const DefaultDifficulty = DifficultyMedium

// EffectiveDifficulty is the difficulty a selection practices at. Mixed ignores whatever
// difficulty was requested, so it always collapses to DefaultDifficulty, as does a blank one.
func EffectiveDifficulty(category Category, difficulty DifficultyLevel) DifficultyLevel {
	if category == CategoryMixed || difficulty == "" {
		return DefaultDifficulty
	}
	return difficulty
}

// QuestionCategories lists the categories a stored question may belong to.
var QuestionCategories = []Category{CategoryReading, CategoryListening, CategoryWriting, CategorySpeaking}

// PracticeCategories lists the categories a user may practice, mixed first.
var PracticeCategories = []Category{CategoryMixed, CategoryReading, CategoryListening, CategoryWriting, CategorySpeaking}

var DifficultyLevels = []DifficultyLevel{DifficultyEasy, DifficultyMedium, DifficultyHard}

type Question struct {
	ID             string                      `json:"id" gorm:"primaryKey;size:36"`
	Type           QuestionType                `json:"type" gorm:"not null;size:32" validate:"required,question_type"`
	Category       Category                    `json:"category" gorm:"not null;size:32;index" validate:"required,question_category"`
	Difficulty     DifficultyLevel             `json:"difficulty" gorm:"not null;size:16;index" validate:"required,difficulty_level"`
	ArticleContent *string                     `json:"article_content,omitempty" gorm:"type:text"`
	QuestionText   string                      `json:"question_text" gorm:"not null;type:text" validate:"required"`
	Options        datatypes.JSONSlice[string] `json:"options,omitempty"`
	CorrectAnswer  string                      `json:"correct_answer" gorm:"not null;type:text" validate:"required"`
	Explanation    *string                     `json:"explanation,omitempty" gorm:"type:text"`
	CreatedAt      time.Time                   `json:"created_at"`
}

func (Question) TableName() string {
	return "ielts_questions"
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// IsMultipleChoice reports whether the answer is picked from Options.
func (q *Question) IsMultipleChoice() bool {
	return q.Type == MultipleChoice
}

func IsQuestionCategory(c Category) bool {
	for _, known := range QuestionCategories {
		if known == c {
			return true
		}
	}
	return false
}

func IsPracticeCategory(c Category) bool {
	return c == CategoryMixed || IsQuestionCategory(c)
}

func IsDifficultyLevel(d DifficultyLevel) bool {
	for _, known := range DifficultyLevels {
		if known == d {
			return true
		}
	}
	return false
}
