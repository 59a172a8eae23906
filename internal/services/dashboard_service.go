package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/repositories"
	"github.com/samber/lo"
)

// CategoryCard is one practice entry on the dashboard.
type CategoryCard struct {
	Category      models.Category `json:"category"`
	Label         string          `json:"label"`
	Description   string          `json:"description"`
	QuestionCount int64           `json:"question_count"`
	Link          string          `json:"link"`
}

type DashboardOverview struct {
	DisplayName string                     `json:"display_name"`
	Email       string                     `json:"email"`
	Categories  []CategoryCard             `json:"categories"`
	Stats       *repositories.HistoryStats `json:"stats,omitempty"`
}

type DashboardService interface {
	// Overview never fails: every lookup error degrades to a default and is logged.
	Overview(ctx context.Context, userID, email string) *DashboardOverview
}

type dashboardService struct {
	repo   repositories.Repository
	logger *ServiceLogger
}

func NewDashboardService(repo repositories.Repository, logger *ServiceLogger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

var categoryDescriptions = map[models.Category]struct{ label, description string }{
	models.CategoryMixed:     {"Mixed", "Questions from every section, any difficulty"},
	models.CategoryReading:   {"Reading", "Passages with comprehension questions"},
	models.CategoryListening: {"Listening", "Transcript-based gap filling and choices"},
	models.CategoryWriting:   {"Writing", "Vocabulary and grammar for essays"},
	models.CategorySpeaking:  {"Speaking", "Phrases and answers for the interview"},
}

func (s *dashboardService) Overview(ctx context.Context, userID, email string) *DashboardOverview {
	overview := &DashboardOverview{
		DisplayName: s.displayName(ctx, userID, email),
		Email:       email,
	}

	counts, err := s.repo.Question().CountByCategory(ctx)
	if err != nil {
		s.logger.Logger().WarnContext(ctx, "Failed to count questions", "error", err)
	}
	total := lo.Sum(lo.Values(counts))

	overview.Categories = lo.Map(models.PracticeCategories, func(c models.Category, _ int) CategoryCard {
		info := categoryDescriptions[c]
		count := counts[c]
		if c == models.CategoryMixed {
			count = total
		}
		return CategoryCard{
			Category:      c,
			Label:         info.label,
			Description:   info.description,
			QuestionCount: count,
			Link:          PracticeLink(c, models.DefaultDifficulty),
		}
	})

	stats, err := s.repo.History().GetStats(ctx, userID)
	if err != nil {
		s.logger.Logger().WarnContext(ctx, "Failed to load practice stats", "user_id", userID, "error", err)
	} else {
		overview.Stats = stats
	}
	return overview
}

// displayName reads the profile once. A missing or failing profile falls back to the auth email.
func (s *dashboardService) displayName(ctx context.Context, userID, email string) string {
	profile, err := s.repo.Profile().GetByID(ctx, userID)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			s.logger.Logger().WarnContext(ctx, "Failed to load profile", "user_id", userID, "error", err)
		}
		profile = nil
	}

	if profile == nil && email != "" {
		profile = &models.Profile{Email: &email}
	} else if profile != nil && profile.Email == nil && email != "" {
		profile.Email = &email
	}
	return profile.DisplayName()
}

// PracticeLink is the dashboard link for a category.
func PracticeLink(category models.Category, difficulty models.DifficultyLevel) string {
	query := url.Values{}
	query.Set("category", string(category))
	query.Set("difficulty", string(difficulty))
	return fmt.Sprintf("/practice?%s", query.Encode())
}
