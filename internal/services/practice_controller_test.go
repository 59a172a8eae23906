package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/SAP-F-2025/ielts-trainer/internal/cache"
	"github.com/SAP-F-2025/ielts-trainer/internal/events"
	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/repositories"
	"github.com/SAP-F-2025/ielts-trainer/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testUser = "user-1"

type practiceFixture struct {
	source    *MockQuestionSource
	history   *MockHistoryRepository
	favorites *MockCollectionRepository
	wrongBook *MockCollectionRepository
	publisher *events.MockEventPublisher
	store     *cache.MemoryRoundStore
	deps      PracticeDeps
}

func newPracticeFixture() *practiceFixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &practiceFixture{
		source:    &MockQuestionSource{},
		history:   &MockHistoryRepository{},
		favorites: &MockCollectionRepository{kind: models.CollectionFavorites},
		wrongBook: &MockCollectionRepository{kind: models.CollectionWrongBook},
		publisher: events.NewMockEventPublisher(logger),
		store:     cache.NewMemoryRoundStore(),
	}
	f.deps = PracticeDeps{
		Questions: f.source,
		History:   f.history,
		Favorites: f.favorites,
		WrongBook: f.wrongBook,
		Sequencer: f.store,
		Events:    NewPracticeEventService(f.publisher, logger),
		Validator: validator.New(),
		Logger:    testServiceLogger(),
	}
	return f
}

func (f *practiceFixture) controller() *PracticeController {
	return NewPracticeController(models.NewRoundState(testUser), f.deps)
}

func sampleQuestion() *models.Question {
	explanation := "The speaker says nine o'clock."
	return &models.Question{
		ID:            "q-1",
		Type:          models.FillInBlank,
		Category:      models.CategoryListening,
		Difficulty:    models.DifficultyMedium,
		QuestionText:  "The meeting starts at ___.",
		CorrectAnswer: "Nine",
		Explanation:   &explanation,
	}
}

// presenting returns a controller showing sampleQuestion in round 1.
func (f *practiceFixture) presenting(t *testing.T) *PracticeController {
	t.Helper()
	f.source.On("Random", mock.Anything, models.CategoryListening, models.DifficultyMedium).Return(sampleQuestion(), nil).Once()
	f.favorites.On("Exists", mock.Anything, testUser, "q-1").Return(false, nil).Once()

	c := f.controller()
	require.NoError(t, c.StartRound(context.Background(), models.CategoryListening, models.DifficultyMedium))
	require.Equal(t, models.PhasePresenting, c.Snapshot().Phase)
	return c
}

func TestPracticeController_StartRound(t *testing.T) {
	ctx := context.Background()

	t.Run("presents question and favorite status", func(t *testing.T) {
		f := newPracticeFixture()
		f.source.On("Random", mock.Anything, models.CategoryReading, models.DifficultyHard).Return(sampleQuestion(), nil)
		f.favorites.On("Exists", mock.Anything, testUser, "q-1").Return(true, nil)

		c := f.controller()
		require.NoError(t, c.StartRound(ctx, models.CategoryReading, models.DifficultyHard))

		state := c.Snapshot()
		assert.Equal(t, models.PhasePresenting, state.Phase)
		assert.Equal(t, int64(1), state.Round)
		assert.True(t, state.Favorited)
		assert.Equal(t, "q-1", state.Question.ID)
	})

	t.Run("no question is empty, not failed", func(t *testing.T) {
		f := newPracticeFixture()
		f.source.On("Random", mock.Anything, models.CategorySpeaking, models.DifficultyEasy).Return(nil, nil)

		c := f.controller()
		require.NoError(t, c.StartRound(ctx, models.CategorySpeaking, models.DifficultyEasy))
		assert.Equal(t, models.PhaseEmpty, c.Snapshot().Phase)
		assert.Nil(t, c.Snapshot().Question)
		f.favorites.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("fetch error is failed", func(t *testing.T) {
		f := newPracticeFixture()
		f.source.On("Random", mock.Anything, models.CategoryMixed, models.DifficultyMedium).Return(nil, errors.New("connection refused"))

		c := f.controller()
		require.NoError(t, c.StartRound(ctx, models.CategoryMixed, models.DifficultyMedium))
		assert.Equal(t, models.PhaseFailed, c.Snapshot().Phase)
	})

	t.Run("favorite lookup failure still presents", func(t *testing.T) {
		f := newPracticeFixture()
		f.source.On("Random", mock.Anything, models.CategoryListening, models.DifficultyMedium).Return(sampleQuestion(), nil)
		f.favorites.On("Exists", mock.Anything, testUser, "q-1").Return(false, errors.New("timeout"))

		c := f.controller()
		require.NoError(t, c.StartRound(ctx, models.CategoryListening, ""))
		assert.Equal(t, models.PhasePresenting, c.Snapshot().Phase)
		assert.False(t, c.Snapshot().Favorited)
		assert.Equal(t, models.DifficultyMedium, c.Snapshot().Difficulty, "empty difficulty defaults to medium")
	})

	t.Run("unknown selection is rejected before any call", func(t *testing.T) {
		f := newPracticeFixture()
		c := f.controller()

		err := c.StartRound(ctx, "grammar", models.DifficultyEasy)
		require.Error(t, err)
		assert.True(t, IsValidation(err))

		err = c.StartRound(ctx, models.CategoryReading, "extreme")
		require.Error(t, err)
		assert.True(t, IsValidation(err))

		assert.Equal(t, models.PhaseIdle, c.Snapshot().Phase)
		assert.Zero(t, c.Snapshot().Round)
		f.source.AssertNotCalled(t, "Random", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("mixed ignores an unknown difficulty", func(t *testing.T) {
		f := newPracticeFixture()
		f.source.On("Random", mock.Anything, models.CategoryMixed, models.DifficultyMedium).Return(sampleQuestion(), nil).Once()
		f.favorites.On("Exists", mock.Anything, testUser, "q-1").Return(false, nil)

		c := f.controller()
		require.NoError(t, c.StartRound(ctx, models.CategoryMixed, "expert"))

		assert.Equal(t, models.PhasePresenting, c.Snapshot().Phase)
		assert.Equal(t, models.DifficultyMedium, c.Snapshot().Difficulty)
		f.source.AssertExpectations(t)
	})

	t.Run("checkpoint sees loading", func(t *testing.T) {
		f := newPracticeFixture()
		f.source.On("Random", mock.Anything, models.CategoryReading, models.DifficultyEasy).Return(nil, nil)

		var seen models.RoundPhase
		c := f.controller()
		c.OnCheckpoint(func(ctx context.Context, state *models.RoundState) error {
			seen = state.Phase
			return nil
		})
		require.NoError(t, c.StartRound(ctx, models.CategoryReading, models.DifficultyEasy))
		assert.Equal(t, models.PhaseLoading, seen)
		assert.Equal(t, models.PhaseEmpty, c.Snapshot().Phase)
	})

	t.Run("restart clears previous answer", func(t *testing.T) {
		f := newPracticeFixture()
		c := f.presenting(t)
		f.history.On("Create", mock.Anything, mock.Anything).Return(nil)
		_, err := c.SubmitAnswer(ctx, 1, "nine")
		require.NoError(t, err)

		f.source.On("Random", mock.Anything, models.CategoryReading, models.DifficultyEasy).Return(nil, nil)
		require.NoError(t, c.StartRound(ctx, models.CategoryReading, models.DifficultyEasy))

		state := c.Snapshot()
		assert.Equal(t, int64(2), state.Round)
		assert.Empty(t, state.Answer)
		assert.Nil(t, state.Grade)
	})
}

func TestPracticeController_SubmitAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("correct answer ignores case and whitespace", func(t *testing.T) {
		f := newPracticeFixture()
		c := f.presenting(t)
		f.history.On("Create", mock.Anything, mock.MatchedBy(func(r *models.HistoryRecord) bool {
			return r.UserAnswer == "  nINE " && r.IsCorrect && r.QuestionID == "q-1" && r.UserID == testUser
		})).Return(nil).Once()

		result, err := c.SubmitAnswer(ctx, 1, "  nINE ")
		require.NoError(t, err)
		assert.True(t, result.Correct)
		assert.Equal(t, "Nine", result.CorrectAnswer)
		require.NotNil(t, result.Explanation)
		assert.Equal(t, models.PhaseGraded, c.Snapshot().Phase)

		f.history.AssertExpectations(t)
		f.wrongBook.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
		assert.Len(t, f.publisher.EventsOfType(events.EventAnswerSubmitted), 1)
	})

	t.Run("wrong answer goes to wrong book once", func(t *testing.T) {
		f := newPracticeFixture()
		c := f.presenting(t)
		f.history.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.wrongBook.On("Exists", mock.Anything, testUser, "q-1").Return(false, nil).Once()
		f.wrongBook.On("Add", mock.Anything, testUser, "q-1").Return(nil).Once()

		result, err := c.SubmitAnswer(ctx, 1, "ten")
		require.NoError(t, err)
		assert.False(t, result.Correct)
		f.wrongBook.AssertExpectations(t)
		assert.Len(t, f.publisher.EventsOfType(events.EventWrongBookAdded), 1)
	})

	t.Run("wrong answer already in wrong book is not duplicated", func(t *testing.T) {
		f := newPracticeFixture()
		c := f.presenting(t)
		f.history.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.wrongBook.On("Exists", mock.Anything, testUser, "q-1").Return(true, nil)

		_, err := c.SubmitAnswer(ctx, 1, "ten")
		require.NoError(t, err)
		f.wrongBook.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.EventsOfType(events.EventWrongBookAdded))
	})

	t.Run("write-back failures do not change the grade", func(t *testing.T) {
		f := newPracticeFixture()
		c := f.presenting(t)
		f.history.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))
		f.wrongBook.On("Exists", mock.Anything, testUser, "q-1").Return(false, nil)
		f.wrongBook.On("Add", mock.Anything, testUser, "q-1").Return(errors.New("insert failed"))

		result, err := c.SubmitAnswer(ctx, 1, "ten")
		require.NoError(t, err)
		assert.False(t, result.Correct)
		assert.Equal(t, models.PhaseGraded, c.Snapshot().Phase)
	})

	t.Run("rejections", func(t *testing.T) {
		f := newPracticeFixture()
		c := f.presenting(t)

		_, err := c.SubmitAnswer(ctx, 1, "   ")
		assert.ErrorIs(t, err, ErrEmptyAnswer)

		_, err = c.SubmitAnswer(ctx, 7, "nine")
		assert.ErrorIs(t, err, ErrStaleRound)

		f.history.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		_, err = c.SubmitAnswer(ctx, 1, "nine")
		require.NoError(t, err)

		_, err = c.SubmitAnswer(ctx, 1, "nine")
		assert.ErrorIs(t, err, ErrRoundNotPresenting, "graded rounds take no more answers")
		f.history.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("failed checkpoint records nothing", func(t *testing.T) {
		f := newPracticeFixture()
		c := f.presenting(t)
		c.OnCheckpoint(func(ctx context.Context, state *models.RoundState) error {
			return ErrRoundConflict
		})

		_, err := c.SubmitAnswer(ctx, 1, "ten")
		assert.ErrorIs(t, err, ErrRoundConflict)
		f.history.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.wrongBook.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.EventsOfType(events.EventAnswerSubmitted))
	})

	t.Run("idle controller has nothing to answer", func(t *testing.T) {
		f := newPracticeFixture()
		_, err := f.controller().SubmitAnswer(ctx, 0, "nine")
		assert.ErrorIs(t, err, ErrRoundNotPresenting)
	})
}

func TestPracticeController_ToggleFavorite(t *testing.T) {
	ctx := context.Background()

	t.Run("add then remove", func(t *testing.T) {
		f := newPracticeFixture()
		c := f.presenting(t)
		f.favorites.On("Add", mock.Anything, testUser, "q-1").Return(nil).Once()
		f.favorites.On("Remove", mock.Anything, testUser, "q-1").Return(nil).Once()

		require.NoError(t, c.ToggleFavorite(ctx, 1))
		assert.True(t, c.Snapshot().Favorited)
		assert.True(t, c.Snapshot().FavoriteSynced)

		require.NoError(t, c.ToggleFavorite(ctx, 1))
		assert.False(t, c.Snapshot().Favorited)

		assert.Len(t, f.publisher.EventsOfType(events.EventFavoriteToggled), 2)
	})

	t.Run("failed write-back rolls back", func(t *testing.T) {
		f := newPracticeFixture()
		c := f.presenting(t)
		f.favorites.On("Add", mock.Anything, testUser, "q-1").Return(errors.New("insert failed"))

		require.NoError(t, c.ToggleFavorite(ctx, 1))
		assert.False(t, c.Snapshot().Favorited)
		assert.False(t, c.Snapshot().FavoriteSynced)
		assert.Empty(t, f.publisher.EventsOfType(events.EventFavoriteToggled))
	})

	t.Run("failed checkpoint writes nothing back", func(t *testing.T) {
		f := newPracticeFixture()
		c := f.presenting(t)
		c.OnCheckpoint(func(ctx context.Context, state *models.RoundState) error {
			return ErrRoundConflict
		})

		assert.ErrorIs(t, c.ToggleFavorite(ctx, 1), ErrRoundConflict)
		f.favorites.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rollback carries over to the same round only", func(t *testing.T) {
		f := newPracticeFixture()
		c := f.presenting(t)
		f.favorites.On("Add", mock.Anything, testUser, "q-1").Return(errors.New("insert failed"))
		require.NoError(t, c.ToggleFavorite(ctx, 1))

		graded := *c.Snapshot()
		graded.Favorited = true
		graded.FavoriteSynced = true
		graded.Phase = models.PhaseGraded
		require.True(t, c.Reapply(&graded))
		assert.Equal(t, models.PhaseGraded, c.Snapshot().Phase)
		assert.False(t, c.Snapshot().Favorited)
		assert.False(t, c.Snapshot().FavoriteSynced)

		next := graded
		next.Round = 2
		assert.False(t, c.Reapply(&next))
	})

	t.Run("removing an absent favorite counts as done", func(t *testing.T) {
		f := newPracticeFixture()
		c := f.presenting(t)
		c.Snapshot().Favorited = true
		f.favorites.On("Remove", mock.Anything, testUser, "q-1").Return(repositories.ErrNotFound)

		require.NoError(t, c.ToggleFavorite(ctx, 1))
		assert.False(t, c.Snapshot().Favorited)
		assert.True(t, c.Snapshot().FavoriteSynced)
	})

	t.Run("allowed after grading", func(t *testing.T) {
		f := newPracticeFixture()
		c := f.presenting(t)
		f.history.On("Create", mock.Anything, mock.Anything).Return(nil)
		_, err := c.SubmitAnswer(ctx, 1, "nine")
		require.NoError(t, err)

		f.favorites.On("Add", mock.Anything, testUser, "q-1").Return(nil)
		require.NoError(t, c.ToggleFavorite(ctx, 1))
		assert.True(t, c.Snapshot().Favorited)
	})

	t.Run("rejections", func(t *testing.T) {
		f := newPracticeFixture()
		assert.ErrorIs(t, f.controller().ToggleFavorite(ctx, 0), ErrRoundNotAnswerable)

		c := f.presenting(t)
		assert.ErrorIs(t, c.ToggleFavorite(ctx, 2), ErrStaleRound)
	})
}

func TestPracticeController_Advance(t *testing.T) {
	ctx := context.Background()

	f := newPracticeFixture()
	assert.ErrorIs(t, f.controller().Advance(ctx), ErrNoActiveRound)

	c := f.presenting(t)
	f.source.On("Random", mock.Anything, models.CategoryListening, models.DifficultyMedium).Return(nil, nil).Once()
	require.NoError(t, c.Advance(ctx))

	state := c.Snapshot()
	assert.Equal(t, int64(2), state.Round)
	assert.Equal(t, models.CategoryListening, state.Category)
	assert.Equal(t, models.PhaseEmpty, state.Phase)
}

func TestPracticeController_HandleKey(t *testing.T) {
	ctx := context.Background()

	t.Run("enter needs presenting and input", func(t *testing.T) {
		f := newPracticeFixture()
		c := f.presenting(t)

		outcome, err := c.HandleKey(ctx, KeyEnter, "  ", 1)
		require.NoError(t, err)
		assert.Equal(t, KeyIgnored, outcome)

		outcome, err = c.HandleKey(ctx, KeySpace, "", 1)
		require.NoError(t, err)
		assert.Equal(t, KeyIgnored, outcome, "space does nothing while presenting")

		f.history.On("Create", mock.Anything, mock.Anything).Return(nil)
		outcome, err = c.HandleKey(ctx, KeyEnter, "Nine", 1)
		require.NoError(t, err)
		assert.Equal(t, KeySubmitted, outcome)
		assert.Equal(t, models.PhaseGraded, c.Snapshot().Phase)

		outcome, err = c.HandleKey(ctx, KeyEnter, "Nine", 1)
		require.NoError(t, err)
		assert.Equal(t, KeyIgnored, outcome, "enter does nothing once graded")
	})

	t.Run("space advances when graded", func(t *testing.T) {
		f := newPracticeFixture()
		c := f.presenting(t)
		f.history.On("Create", mock.Anything, mock.Anything).Return(nil)
		_, err := c.SubmitAnswer(ctx, 1, "Nine")
		require.NoError(t, err)

		f.source.On("Random", mock.Anything, models.CategoryListening, models.DifficultyMedium).Return(nil, nil).Once()
		outcome, err := c.HandleKey(ctx, " ", "", 1)
		require.NoError(t, err)
		assert.Equal(t, KeyAdvanced, outcome)
		assert.Equal(t, int64(2), c.Snapshot().Round)
	})

	t.Run("other keys are ignored", func(t *testing.T) {
		f := newPracticeFixture()
		c := f.presenting(t)

		outcome, err := c.HandleKey(ctx, "Escape", "Nine", 1)
		require.NoError(t, err)
		assert.Equal(t, KeyIgnored, outcome)
		assert.Equal(t, models.PhasePresenting, c.Snapshot().Phase)
	})
}
