package models

import (
	"strings"
	"time"
)

const DefaultDisplayName = "Student"

// Profile is keyed by the auth user id.
type Profile struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Username  *string   `json:"username" gorm:"size:100"`
	Email     *string   `json:"email" gorm:"uniqueIndex;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// DisplayName prefers the username, then the local part of the email.
func (p *Profile) DisplayName() string {
	if p == nil {
		return DefaultDisplayName
	}
	if p.Username != nil && strings.TrimSpace(*p.Username) != "" {
		return strings.TrimSpace(*p.Username)
	}
	if p.Email != nil {
		if local, _, _ := strings.Cut(*p.Email, "@"); local != "" {
			return local
		}
	}
	return DefaultDisplayName
}
