package handlers

import (
	"net/http"
	"time"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/services"
	"github.com/SAP-F-2025/ielts-trainer/internal/utils"
	"github.com/SAP-F-2025/ielts-trainer/internal/validator"
	"github.com/gin-gonic/gin"
)

// ===== REQUEST STRUCTURES =====

// StartRoundRequest.Difficulty is checked by the practice service, which ignores it for mixed.
type StartRoundRequest struct {
	Category   models.Category        `json:"category" validate:"required,practice_category"`
	Difficulty models.DifficultyLevel `json:"difficulty"`
}

type SubmitAnswerRequest struct {
	Round  int64  `json:"round" validate:"gte=0"`
	Answer string `json:"answer"`
}

type ToggleFavoriteRequest struct {
	Round int64 `json:"round" validate:"gte=0"`
}

type KeyPressRequest struct {
	Key    string `json:"key" validate:"required"`
	Answer string `json:"answer"`
	Round  int64  `json:"round" validate:"gte=0"`
}

// ===== RESPONSE STRUCTURES =====

// QuestionView is a question as shown before grading. It never carries the answer.
type QuestionView struct {
	ID             string                 `json:"id"`
	Type           models.QuestionType    `json:"type"`
	Category       models.Category        `json:"category"`
	Difficulty     models.DifficultyLevel `json:"difficulty"`
	ArticleContent *string                `json:"article_content,omitempty"`
	QuestionText   string                 `json:"question_text"`
	Options        []string               `json:"options,omitempty"`
}

// RoundView is the client view of a round. Grade is only present once graded.
type RoundView struct {
	Round          int64                  `json:"round"`
	Phase          models.RoundPhase      `json:"phase"`
	Category       models.Category        `json:"category,omitempty"`
	Difficulty     models.DifficultyLevel `json:"difficulty,omitempty"`
	Question       *QuestionView          `json:"question,omitempty"`
	Grade          *models.GradeResult    `json:"grade,omitempty"`
	Favorited      bool                   `json:"favorited"`
	FavoriteSynced bool                   `json:"favorite_synced"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

type KeyPressResponse struct {
	Outcome services.KeyOutcome `json:"outcome"`
	State   *RoundView          `json:"state"`
}

func NewRoundView(state *models.RoundState) *RoundView {
	if state == nil {
		return nil
	}
	view := &RoundView{
		Round:          state.Round,
		Phase:          state.Phase,
		Category:       state.Category,
		Difficulty:     state.Difficulty,
		Favorited:      state.Favorited,
		FavoriteSynced: state.FavoriteSynced,
		UpdatedAt:      state.UpdatedAt,
	}
	if q := state.Question; q != nil {
		view.Question = &QuestionView{
			ID:             q.ID,
			Type:           q.Type,
			Category:       q.Category,
			Difficulty:     q.Difficulty,
			ArticleContent: q.ArticleContent,
			QuestionText:   q.QuestionText,
			Options:        q.Options,
		}
	}
	if state.Phase == models.PhaseGraded {
		view.Grade = state.Grade
	}
	return view
}

// ===== HANDLER =====

type PracticeHandler struct {
	BaseHandler
	practiceService services.PracticeService
	validator       *validator.Validator
}

func NewPracticeHandler(
	practiceService services.PracticeService,
	validator *validator.Validator,
	logger utils.Logger,
) *PracticeHandler {
	return &PracticeHandler{
		BaseHandler:     NewBaseHandler(logger),
		practiceService: practiceService,
		validator:       validator,
	}
}

// GetRound returns the current round
// @Router /api/practice/round [get]
func (h *PracticeHandler) GetRound(c *gin.Context) {
	session, _ := currentSession(c)

	state, err := h.practiceService.CurrentRound(c.Request.Context(), session.UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Current round", NewRoundView(state))
}

// StartRound starts a round for a category and difficulty
// @Router /api/practice/rounds [post]
func (h *PracticeHandler) StartRound(c *gin.Context) {
	var req StartRoundRequest
	if !h.bind(c, &req) {
		return
	}
	session, _ := currentSession(c)
	h.LogRequest(c, "Starting round", "category", req.Category, "difficulty", req.Difficulty)

	state, err := h.practiceService.StartRound(c.Request.Context(), session.UserID, req.Category, req.Difficulty)
	if err != nil {
		h.handleRoundError(c, session.UserID, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Round started", NewRoundView(state))
}

// Next advances to a new question with the current selection
// @Router /api/practice/next [post]
func (h *PracticeHandler) Next(c *gin.Context) {
	session, _ := currentSession(c)

	state, err := h.practiceService.Advance(c.Request.Context(), session.UserID)
	if err != nil {
		h.handleRoundError(c, session.UserID, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Round started", NewRoundView(state))
}

// SubmitAnswer grades an answer for the round it was given in
// @Router /api/practice/answer [post]
func (h *PracticeHandler) SubmitAnswer(c *gin.Context) {
	var req SubmitAnswerRequest
	if !h.bind(c, &req) {
		return
	}
	session, _ := currentSession(c)

	state, err := h.practiceService.SubmitAnswer(c.Request.Context(), session.UserID, req.Round, req.Answer)
	if err != nil {
		h.handleRoundError(c, session.UserID, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Answer graded", NewRoundView(state))
}

// ToggleFavorite flips the favorite flag of the shown question
// @Router /api/practice/favorite [post]
func (h *PracticeHandler) ToggleFavorite(c *gin.Context) {
	var req ToggleFavoriteRequest
	if !h.bind(c, &req) {
		return
	}
	session, _ := currentSession(c)

	state, err := h.practiceService.ToggleFavorite(c.Request.Context(), session.UserID, req.Round)
	if err != nil {
		h.handleRoundError(c, session.UserID, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Favorite updated", NewRoundView(state))
}

// HandleKey applies a keyboard shortcut
// @Router /api/practice/keys [post]
func (h *PracticeHandler) HandleKey(c *gin.Context) {
	var req KeyPressRequest
	if !h.bind(c, &req) {
		return
	}
	session, _ := currentSession(c)

	outcome, state, err := h.practiceService.HandleKey(c.Request.Context(), session.UserID, req.Key, req.Answer, req.Round)
	if err != nil {
		h.handleRoundError(c, session.UserID, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, string(outcome), KeyPressResponse{
		Outcome: outcome,
		State:   NewRoundView(state),
	})
}

func (h *PracticeHandler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, CodeValidation, "Invalid request payload", err, err.Error())
		return false
	}
	if err := h.validator.Validate(req); err != nil {
		h.handleServiceError(c, err)
		return false
	}
	return true
}

// handleRoundError answers a conflict with the round that is current now, so the page can resync.
func (h *PracticeHandler) handleRoundError(c *gin.Context, userID string, err error) {
	if !services.IsConflict(err) {
		h.handleServiceError(c, err)
		return
	}

	current, loadErr := h.practiceService.CurrentRound(c.Request.Context(), userID)
	if loadErr != nil {
		h.handleServiceError(c, loadErr)
		return
	}
	h.RespondWithError(c, http.StatusConflict, CodeConflict, err.Error(), err, NewRoundView(current))
}
