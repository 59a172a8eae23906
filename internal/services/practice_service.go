package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/ielts-trainer/internal/cache"
	"github.com/SAP-F-2025/ielts-trainer/internal/models"
)

// PracticeService loads a user's round, runs one controller operation and saves the result.
// Every method returns the state as saved. A save rejected because a newer round exists
// yields ErrStaleRound and the work of the stale request is discarded. Operations that lose a
// save of the same round to another request are retried; ErrRoundConflict is returned once
// the retries run out.
type PracticeService interface {
	CurrentRound(ctx context.Context, userID string) (*models.RoundState, error)
	StartRound(ctx context.Context, userID string, category models.Category, difficulty models.DifficultyLevel) (*models.RoundState, error)
	Advance(ctx context.Context, userID string) (*models.RoundState, error)
	SubmitAnswer(ctx context.Context, userID string, round int64, answer string) (*models.RoundState, error)
	ToggleFavorite(ctx context.Context, userID string, round int64) (*models.RoundState, error)
	HandleKey(ctx context.Context, userID, key, input string, round int64) (KeyOutcome, *models.RoundState, error)
}

type practiceService struct {
	store  cache.RoundStore
	deps   PracticeDeps
	logger *ServiceLogger
}

func NewPracticeService(store cache.RoundStore, deps PracticeDeps) PracticeService {
	return &practiceService{
		store:  store,
		deps:   deps,
		logger: deps.Logger,
	}
}

func (s *practiceService) CurrentRound(ctx context.Context, userID string) (*models.RoundState, error) {
	return s.load(ctx, userID)
}

func (s *practiceService) StartRound(ctx context.Context, userID string, category models.Category, difficulty models.DifficultyLevel) (*models.RoundState, error) {
	op := s.logger.WithOperation(ctx, "start_round", userID)
	state, err := s.run(ctx, userID, func(c *PracticeController) error {
		return c.StartRound(ctx, category, difficulty)
	})
	op.LogResult(roundID(state), "round", err)
	return state, err
}

func (s *practiceService) Advance(ctx context.Context, userID string) (*models.RoundState, error) {
	op := s.logger.WithOperation(ctx, "advance_round", userID)
	state, err := s.run(ctx, userID, func(c *PracticeController) error {
		return c.Advance(ctx)
	})
	op.LogResult(roundID(state), "round", err)
	return state, err
}

func (s *practiceService) SubmitAnswer(ctx context.Context, userID string, round int64, answer string) (*models.RoundState, error) {
	op := s.logger.WithOperation(ctx, "submit_answer", userID)
	state, err := s.run(ctx, userID, func(c *PracticeController) error {
		_, err := c.SubmitAnswer(ctx, round, answer)
		return err
	})
	op.LogResult(roundID(state), "round", err)
	return state, err
}

func (s *practiceService) ToggleFavorite(ctx context.Context, userID string, round int64) (*models.RoundState, error) {
	op := s.logger.WithOperation(ctx, "toggle_favorite", userID)
	state, err := s.run(ctx, userID, func(c *PracticeController) error {
		return c.ToggleFavorite(ctx, round)
	})
	op.LogResult(roundID(state), "round", err)
	return state, err
}

func (s *practiceService) HandleKey(ctx context.Context, userID, key, input string, round int64) (KeyOutcome, *models.RoundState, error) {
	outcome := KeyIgnored
	state, err := s.run(ctx, userID, func(c *PracticeController) error {
		var err error
		outcome, err = c.HandleKey(ctx, key, input, round)
		return err
	})
	return outcome, state, err
}

// maxRoundAttempts bounds how often run retries after losing a save to a concurrent request
const maxRoundAttempts = 3

// run executes op on the stored state. Nothing is saved when op fails, apart from checkpoints
// it passed. A checkpoint conflict comes before any outside write, so op runs again on the
// fresh state.
func (s *practiceService) run(ctx context.Context, userID string, op func(c *PracticeController) error) (*models.RoundState, error) {
	var controller *PracticeController
	for attempt := 1; ; attempt++ {
		state, err := s.load(ctx, userID)
		if err != nil {
			return nil, err
		}

		controller = NewPracticeController(state, s.deps)
		controller.OnCheckpoint(s.store.Save)

		err = op(controller)
		if err == nil {
			break
		}
		if errors.Is(err, ErrRoundConflict) && attempt < maxRoundAttempts {
			continue
		}
		return nil, err
	}

	if err := s.flush(ctx, controller); err != nil {
		if errors.Is(err, ErrStaleRound) {
			s.logger.Logger().InfoContext(ctx, "Discarded result of superseded round",
				"user_id", userID,
				"round", controller.Snapshot().Round)
		}
		return nil, err
	}
	return controller.Snapshot(), nil
}

// flush saves what op changed after its last checkpoint. When another request saved the same
// round in between, a pending favorite rollback is moved onto the stored state and saved again.
func (s *practiceService) flush(ctx context.Context, controller *PracticeController) error {
	for attempt := 1; ; attempt++ {
		err := controller.Flush(ctx)
		if !errors.Is(err, ErrRoundConflict) || attempt >= maxRoundAttempts {
			return err
		}

		fresh, loadErr := s.load(ctx, controller.Snapshot().UserID)
		if loadErr != nil {
			return loadErr
		}
		if !controller.Reapply(fresh) {
			return err
		}
	}
}

func (s *practiceService) load(ctx context.Context, userID string) (*models.RoundState, error) {
	state, err := s.store.Load(ctx, userID)
	if errors.Is(err, cache.ErrRoundStateNotFound) {
		return models.NewRoundState(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load round: %w", err)
	}
	return state, nil
}

func roundID(state *models.RoundState) string {
	if state == nil {
		return ""
	}
	return fmt.Sprintf("%d", state.Round)
}
