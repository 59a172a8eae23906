package models

import (
	"strings"
	"time"
)

type RoundPhase string

const (
	PhaseIdle       RoundPhase = "idle"
	PhaseLoading    RoundPhase = "loading"
	PhasePresenting RoundPhase = "presenting"
	PhaseGraded     RoundPhase = "graded"
	// PhaseEmpty means the source had no matching question. It is not an error.
	PhaseEmpty  RoundPhase = "empty"
	PhaseFailed RoundPhase = "failed"
)

// RoundState is one user's practice round as persisted between requests.
// Version counts saves within the round; a save must carry the version it loaded.
// FavoriteSynced is false when the last favorite write-back failed and was rolled back.
type RoundState struct {
	UserID         string          `json:"user_id"`
	Round          int64           `json:"round"`
	Version        int64           `json:"version"`
	Phase          RoundPhase      `json:"phase"`
	Category       Category        `json:"category"`
	Difficulty     DifficultyLevel `json:"difficulty"`
	Question       *Question       `json:"question,omitempty"`
	Answer         string          `json:"answer,omitempty"`
	Grade          *GradeResult    `json:"grade,omitempty"`
	Favorited      bool            `json:"favorited"`
	FavoriteSynced bool            `json:"favorite_synced"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewRoundState returns the idle state of a user who has not practiced yet.
func NewRoundState(userID string) *RoundState {
	return &RoundState{
		UserID:         userID,
		Phase:          PhaseIdle,
		FavoriteSynced: true,
	}
}

// HasStarted reports whether a category has ever been chosen.
func (s *RoundState) HasStarted() bool {
	return s.Round > 0 && s.Category != ""
}

type GradeResult struct {
	Correct       bool    `json:"correct"`
	CorrectAnswer string  `json:"correct_answer"`
	Explanation   *string `json:"explanation,omitempty"`
	UserAnswer    string  `json:"user_answer"`
}

// Grade compares trimmed answers without regard to case.
func Grade(answer, correct string) bool {
	return strings.ToLower(strings.TrimSpace(answer)) == strings.ToLower(strings.TrimSpace(correct))
}
