package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the practice events this service emits
type EventType string

const (
	EventAnswerSubmitted EventType = "practice.answer_submitted"
	EventWrongBookAdded  EventType = "practice.wrong_book_added"
	EventFavoriteToggled EventType = "practice.favorite_toggled"

	EventCollectionEntryRemoved EventType = "collection.entry_removed"
)

const (
	eventSource  = "ielts-trainer"
	eventVersion = "1.0"
)

// PracticeEvent is the envelope for every event published by the service
type PracticeEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	UserID    string                 `json:"user_id"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type AnswerSubmittedEvent struct {
	QuestionID string    `json:"question_id"`
	Category   string    `json:"category"`
	Difficulty string    `json:"difficulty"`
	Round      int64     `json:"round"`
	IsCorrect  bool      `json:"is_correct"`
	AnsweredAt time.Time `json:"answered_at"`
}

type WrongBookAddedEvent struct {
	QuestionID string `json:"question_id"`
}

type FavoriteToggledEvent struct {
	QuestionID string `json:"question_id"`
	Favorited  bool   `json:"favorited"`
}

type CollectionEntryRemovedEvent struct {
	Collection string `json:"collection"`
	QuestionID string `json:"question_id"`
}

func newEvent(eventType EventType, userID string, data interface{}) *PracticeEvent {
	return &PracticeEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		UserID:    userID,
		Data:      data,
	}
}

// Event factory functions

func NewAnswerSubmittedEvent(userID string, payload AnswerSubmittedEvent) *PracticeEvent {
	return newEvent(EventAnswerSubmitted, userID, payload)
}

func NewWrongBookAddedEvent(userID, questionID string) *PracticeEvent {
	return newEvent(EventWrongBookAdded, userID, WrongBookAddedEvent{QuestionID: questionID})
}

func NewFavoriteToggledEvent(userID, questionID string, favorited bool) *PracticeEvent {
	return newEvent(EventFavoriteToggled, userID, FavoriteToggledEvent{
		QuestionID: questionID,
		Favorited:  favorited,
	})
}

func NewCollectionEntryRemovedEvent(userID, collection, questionID string) *PracticeEvent {
	return newEvent(EventCollectionEntryRemoved, userID, CollectionEntryRemovedEvent{
		Collection: collection,
		QuestionID: questionID,
	})
}

// GenerateEventID returns a random UUID for a new event
func GenerateEventID() string {
	return uuid.NewString()
}
