package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/ielts-trainer/internal/events"
	"github.com/SAP-F-2025/ielts-trainer/internal/models"
)

// PracticeEventService publishes practice activity. Publishing is best effort:
// failures are logged and never change the outcome of the operation that caused them.
type PracticeEventService interface {
	AnswerSubmitted(ctx context.Context, userID string, state *models.RoundState, correct bool)
	WrongBookAdded(ctx context.Context, userID, questionID string)
	FavoriteToggled(ctx context.Context, userID, questionID string, favorited bool)
	CollectionEntryRemoved(ctx context.Context, userID string, kind models.CollectionKind, questionID string)
}

type practiceEventService struct {
	eventPublisher events.EventPublisher
	logger         *slog.Logger
}

func NewPracticeEventService(eventPublisher events.EventPublisher, logger *slog.Logger) PracticeEventService {
	return &practiceEventService{
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (s *practiceEventService) AnswerSubmitted(ctx context.Context, userID string, state *models.RoundState, correct bool) {
	if state.Question == nil {
		return
	}
	s.publish(ctx, events.NewAnswerSubmittedEvent(userID, events.AnswerSubmittedEvent{
		QuestionID: state.Question.ID,
		Category:   string(state.Question.Category),
		Difficulty: string(state.Question.Difficulty),
		Round:      state.Round,
		IsCorrect:  correct,
		AnsweredAt: time.Now().UTC(),
	}))
}

func (s *practiceEventService) WrongBookAdded(ctx context.Context, userID, questionID string) {
	s.publish(ctx, events.NewWrongBookAddedEvent(userID, questionID))
}

func (s *practiceEventService) FavoriteToggled(ctx context.Context, userID, questionID string, favorited bool) {
	s.publish(ctx, events.NewFavoriteToggledEvent(userID, questionID, favorited))
}

func (s *practiceEventService) CollectionEntryRemoved(ctx context.Context, userID string, kind models.CollectionKind, questionID string) {
	s.publish(ctx, events.NewCollectionEntryRemovedEvent(userID, string(kind), questionID))
}

func (s *practiceEventService) publish(ctx context.Context, event *events.PracticeEvent) {
	if err := s.eventPublisher.PublishPracticeEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish practice event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
	}
}
