package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SAP-F-2025/ielts-trainer/internal/cache"
	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/repositories"
	"github.com/SAP-F-2025/ielts-trainer/internal/validator"
)

// Keys the practice page forwards to HandleKey.
const (
	KeyEnter = "Enter"
	KeySpace = "Space"
)

type KeyOutcome string

const (
	KeySubmitted KeyOutcome = "submitted"
	KeyAdvanced  KeyOutcome = "advanced"
	KeyIgnored   KeyOutcome = "ignored"
)

// PracticeDeps are the collaborators of a PracticeController.
type PracticeDeps struct {
	Questions QuestionSource
	History   repositories.HistoryRepository
	Favorites repositories.CollectionRepository
	WrongBook repositories.CollectionRepository
	Sequencer cache.RoundSequencer
	Events    PracticeEventService
	Validator *validator.Validator
	Logger    *ServiceLogger
}

// PracticeController runs one user's practice round as a state machine:
//
//	idle -> loading -> presenting | empty | failed
//	presenting -> graded (SubmitAnswer)
//	any -> loading (StartRound, Advance once a round exists)
//
// It holds no locks. Callers persist the state through a RoundStore whose Save refuses older
// rounds and same-round states saved by someone else in the meantime. Every operation that
// writes outside the round (history, wrong-book, favorites) first passes a checkpoint, so a
// conflicting request fails before it has recorded anything.
type PracticeController struct {
	state      *models.RoundState
	deps       PracticeDeps
	checkpoint func(ctx context.Context, state *models.RoundState) error
	now        func() time.Time

	// dirty is set by every state change and cleared by a successful checkpoint
	dirty bool
	// carry re-applies a favorite rollback to a newer save of the same round
	carry func(state *models.RoundState) bool
}

func NewPracticeController(state *models.RoundState, deps PracticeDeps) *PracticeController {
	return &PracticeController{
		state: state,
		deps:  deps,
		now:   time.Now,
	}
}

// OnCheckpoint registers the save run when a round enters loading, when an answer is graded
// and when a favorite flips, each time before any outside write. An error aborts the operation.
func (c *PracticeController) OnCheckpoint(fn func(ctx context.Context, state *models.RoundState) error) {
	c.checkpoint = fn
}

// Flush runs the checkpoint when the state changed since the last one.
func (c *PracticeController) Flush(ctx context.Context) error {
	if !c.dirty {
		return nil
	}
	return c.commit(ctx)
}

// Reapply moves a pending favorite rollback onto fresh, the stored state of the same round,
// and continues from it. It reports false when there is nothing to move or the round has changed.
func (c *PracticeController) Reapply(fresh *models.RoundState) bool {
	if c.carry == nil || !c.carry(fresh) {
		return false
	}
	c.state = fresh
	c.touch()
	return true
}

// Snapshot returns the state to persist
func (c *PracticeController) Snapshot() *models.RoundState {
	return c.state
}

// StartRound begins a new round for the selection. Any previous round is abandoned.
func (c *PracticeController) StartRound(ctx context.Context, category models.Category, difficulty models.DifficultyLevel) error {
	difficulty = models.EffectiveDifficulty(category, difficulty)
	if err := c.validateSelection(category, difficulty); err != nil {
		return err
	}

	round, err := c.deps.Sequencer.NextRound(ctx, c.state.UserID)
	if err != nil {
		return err
	}

	c.state.Round = round
	c.state.Category = category
	c.state.Difficulty = difficulty
	c.state.Question = nil
	c.state.Answer = ""
	c.state.Grade = nil
	c.state.Favorited = false
	c.state.FavoriteSynced = true
	c.enter(models.PhaseLoading)

	if err := c.commit(ctx); err != nil {
		return err
	}

	question, err := c.deps.Questions.Random(ctx, category, difficulty)
	switch {
	case err != nil:
		c.deps.Logger.Logger().ErrorContext(ctx, "Question fetch failed",
			"user_id", c.state.UserID,
			"round", round,
			"category", category,
			"difficulty", difficulty,
			"error", err)
		c.enter(models.PhaseFailed)
		return nil
	case question == nil:
		c.enter(models.PhaseEmpty)
		return nil
	}

	c.state.Question = question
	c.enter(models.PhasePresenting)

	favorited, err := c.deps.Favorites.Exists(ctx, c.state.UserID, question.ID)
	if err != nil {
		c.deps.Logger.Logger().WarnContext(ctx, "Favorite lookup failed",
			"user_id", c.state.UserID,
			"question_id", question.ID,
			"error", err)
	}
	c.state.Favorited = favorited
	return nil
}

// Advance starts the next round with the stored selection.
func (c *PracticeController) Advance(ctx context.Context) error {
	if !c.state.HasStarted() {
		return ErrNoActiveRound
	}
	return c.StartRound(ctx, c.state.Category, c.state.Difficulty)
}

// SubmitAnswer grades the answer for round and records it.
// The grade is checkpointed first, so a second submit of the same round finds it graded.
// History and wrong-book writes are sequential and best effort; their failures never change the grade.
func (c *PracticeController) SubmitAnswer(ctx context.Context, round int64, answer string) (*models.GradeResult, error) {
	if round != c.state.Round {
		return nil, ErrStaleRound
	}
	if c.state.Phase != models.PhasePresenting || c.state.Question == nil {
		return nil, ErrRoundNotPresenting
	}
	if strings.TrimSpace(answer) == "" {
		return nil, ErrEmptyAnswer
	}

	question := c.state.Question
	userID := c.state.UserID
	correct := models.Grade(answer, question.CorrectAnswer)

	result := &models.GradeResult{
		Correct:       correct,
		CorrectAnswer: question.CorrectAnswer,
		Explanation:   question.Explanation,
		UserAnswer:    answer,
	}
	c.state.Answer = answer
	c.state.Grade = result
	c.enter(models.PhaseGraded)

	if err := c.commit(ctx); err != nil {
		return nil, err
	}

	record := &models.HistoryRecord{
		UserID:     userID,
		QuestionID: question.ID,
		UserAnswer: answer,
		IsCorrect:  correct,
	}
	if err := c.deps.History.Create(ctx, record); err != nil {
		c.deps.Logger.LogWriteBackFailure(ctx, "append_history", userID, question.ID, err)
	}

	if !correct {
		c.recordMistake(ctx, userID, question.ID)
	}

	c.deps.Events.AnswerSubmitted(ctx, userID, c.state, correct)
	return result, nil
}

func (c *PracticeController) recordMistake(ctx context.Context, userID, questionID string) {
	exists, err := c.deps.WrongBook.Exists(ctx, userID, questionID)
	if err != nil {
		c.deps.Logger.LogWriteBackFailure(ctx, "check_wrong_book", userID, questionID, err)
		return
	}
	if exists {
		return
	}
	if err := c.deps.WrongBook.Add(ctx, userID, questionID); err != nil {
		c.deps.Logger.LogWriteBackFailure(ctx, "add_wrong_book", userID, questionID, err)
		return
	}
	c.deps.Events.WrongBookAdded(ctx, userID, questionID)
}

// ToggleFavorite flips the favorite flag, checkpoints it and writes it back.
// A failed write-back restores the previous flag and marks the state unsynced.
func (c *PracticeController) ToggleFavorite(ctx context.Context, round int64) error {
	if round != c.state.Round {
		return ErrStaleRound
	}
	if c.state.Question == nil || (c.state.Phase != models.PhasePresenting && c.state.Phase != models.PhaseGraded) {
		return ErrRoundNotAnswerable
	}

	userID := c.state.UserID
	questionID := c.state.Question.ID
	previous := c.state.Favorited
	c.state.Favorited = !previous
	c.state.FavoriteSynced = true
	c.touch()

	if err := c.commit(ctx); err != nil {
		return err
	}

	var err error
	if c.state.Favorited {
		err = c.deps.Favorites.Add(ctx, userID, questionID)
	} else {
		err = c.deps.Favorites.Remove(ctx, userID, questionID)
		if repositories.IsNotFoundError(err) {
			// already absent, which is what we wanted
			err = nil
		}
	}

	if err != nil {
		c.deps.Logger.LogWriteBackFailure(ctx, "toggle_favorite", userID, questionID, err)
		c.carry = func(state *models.RoundState) bool {
			if state.Round != round || state.Question == nil || state.Question.ID != questionID {
				return false
			}
			state.Favorited = previous
			state.FavoriteSynced = false
			return true
		}
		c.carry(c.state)
		c.touch()
		return nil
	}

	c.deps.Events.FavoriteToggled(ctx, userID, questionID, c.state.Favorited)
	return nil
}

// HandleKey maps a key press to an operation. Keys that do not apply to the current phase are ignored.
func (c *PracticeController) HandleKey(ctx context.Context, key, input string, round int64) (KeyOutcome, error) {
	switch normalizeKey(key) {
	case KeyEnter:
		if c.state.Phase != models.PhasePresenting || strings.TrimSpace(input) == "" {
			return KeyIgnored, nil
		}
		if _, err := c.SubmitAnswer(ctx, round, input); err != nil {
			return KeyIgnored, err
		}
		return KeySubmitted, nil
	case KeySpace:
		if c.state.Phase != models.PhaseGraded {
			return KeyIgnored, nil
		}
		if round != c.state.Round {
			return KeyIgnored, ErrStaleRound
		}
		if err := c.Advance(ctx); err != nil {
			return KeyIgnored, err
		}
		return KeyAdvanced, nil
	default:
		return KeyIgnored, nil
	}
}

func (c *PracticeController) validateSelection(category models.Category, difficulty models.DifficultyLevel) error {
	var errs ValidationErrors
	if err := c.deps.Validator.ValidateVar("category", string(category), "required,practice_category"); err != nil {
		errs = append(errs, asValidationErrors(err)...)
	}
	if err := c.deps.Validator.ValidateVar("difficulty", string(difficulty), "required,difficulty_level"); err != nil {
		errs = append(errs, asValidationErrors(err)...)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *PracticeController) enter(phase models.RoundPhase) {
	c.state.Phase = phase
	c.touch()
}

func (c *PracticeController) touch() {
	c.state.UpdatedAt = c.now().UTC()
	c.dirty = true
}

// commit runs the checkpoint. Without one the state simply stays pending.
func (c *PracticeController) commit(ctx context.Context) error {
	if c.checkpoint == nil {
		return nil
	}
	if err := c.checkpoint(ctx, c.state); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

func normalizeKey(key string) string {
	switch key {
	case " ", "Spacebar", KeySpace:
		return KeySpace
	case KeyEnter, "NumpadEnter":
		return KeyEnter
	}
	return key
}

func asValidationErrors(err error) ValidationErrors {
	var errs ValidationErrors
	if errors.As(err, &errs) {
		return errs
	}
	return ValidationErrors{{Message: err.Error()}}
}
