package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/repositories"
	"github.com/google/uuid"
)

// UserDirectory maps a verified email to a stable user id.
type UserDirectory interface {
	ResolveByEmail(ctx context.Context, email string) (string, error)
}

type profileDirectory struct {
	profiles repositories.ProfileRepository
}

// NewProfileDirectory keeps users in the profiles table. First sign-in creates the profile.
func NewProfileDirectory(profiles repositories.ProfileRepository) UserDirectory {
	return &profileDirectory{profiles: profiles}
}

func (d *profileDirectory) ResolveByEmail(ctx context.Context, email string) (string, error) {
	profile, err := d.profiles.GetByEmail(ctx, email)
	if err == nil {
		return profile.ID, nil
	}
	if !repositories.IsNotFoundError(err) {
		return "", fmt.Errorf("failed to look up profile: %w", err)
	}

	normalized := strings.ToLower(email)
	profile = &models.Profile{
		ID:    uuid.NewString(),
		Email: &normalized,
	}
	if err := d.profiles.Create(ctx, profile); err != nil {
		// A concurrent first sign-in may have created it
		if existing, lookupErr := d.profiles.GetByEmail(ctx, email); lookupErr == nil {
			return existing.ID, nil
		}
		return "", err
	}
	return profile.ID, nil
}
