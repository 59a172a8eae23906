package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Overview(t *testing.T) {
	ctx := context.Background()
	username := "Linh"

	tests := []struct {
		name         string
		profile      *models.Profile
		profileErr   error
		counts       map[models.Category]int64
		countErr     error
		stats        *repositories.HistoryStats
		statsErr     error
		expectedName string
		expectedMix  int64
	}{
		{
			name:         "profile username and counts",
			profile:      &models.Profile{ID: testUser, Username: &username},
			counts:       map[models.Category]int64{models.CategoryReading: 4, models.CategoryWriting: 2},
			stats:        &repositories.HistoryStats{TotalAnswers: 10, CorrectAnswers: 7, Accuracy: 70},
			expectedName: "Linh",
			expectedMix:  6,
		},
		{
			name:         "missing profile falls back to email",
			profileErr:   repositories.ErrNotFound,
			counts:       map[models.Category]int64{},
			stats:        &repositories.HistoryStats{},
			expectedName: "anna",
		},
		{
			name:         "every lookup failing still renders",
			profileErr:   errors.New("timeout"),
			countErr:     errors.New("timeout"),
			statsErr:     errors.New("timeout"),
			expectedName: "anna",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockRepository()
			repo.profile.On("GetByID", mock.Anything, testUser).Return(tt.profile, tt.profileErr)
			repo.question.On("CountByCategory", mock.Anything).Return(tt.counts, tt.countErr)
			repo.history.On("GetStats", mock.Anything, testUser).Return(tt.stats, tt.statsErr)

			overview := NewDashboardService(repo, testServiceLogger()).Overview(ctx, testUser, "anna@example.com")
			require.NotNil(t, overview)

			assert.Equal(t, tt.expectedName, overview.DisplayName)
			assert.Equal(t, "anna@example.com", overview.Email)
			require.Len(t, overview.Categories, len(models.PracticeCategories))

			mixed := overview.Categories[0]
			assert.Equal(t, models.CategoryMixed, mixed.Category)
			assert.Equal(t, tt.expectedMix, mixed.QuestionCount)
			assert.Equal(t, "/practice?category=mixed&difficulty=medium", mixed.Link)

			for _, card := range overview.Categories {
				assert.NotEmpty(t, card.Label)
				assert.Equal(t, tt.counts[card.Category]+boolToCount(card.Category == models.CategoryMixed, tt.expectedMix), card.QuestionCount)
			}

			assert.Equal(t, tt.stats, overview.Stats)
		})
	}
}

func boolToCount(ok bool, n int64) int64 {
	if ok {
		return n
	}
	return 0
}

func TestPracticeLink(t *testing.T) {
	assert.Equal(t, "/practice?category=listening&difficulty=hard", PracticeLink(models.CategoryListening, models.DifficultyHard))
}
