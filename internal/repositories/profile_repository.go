package repositories

import (
	"context"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
)

// ProfileRepository interface for profile operations
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
}
