package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/ielts-trainer/internal/auth"
	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/services"
	"github.com/SAP-F-2025/ielts-trainer/internal/utils"
	"github.com/gin-gonic/gin"
)

type PageHandler struct {
	BaseHandler
	dashboardService services.DashboardService
}

func NewPageHandler(dashboardService services.DashboardService, logger utils.Logger) *PageHandler {
	return &PageHandler{
		BaseHandler:      NewBaseHandler(logger),
		dashboardService: dashboardService,
	}
}

// Home sends signed-in users to their dashboard
func (h *PageHandler) Home(c *gin.Context) {
	c.Redirect(http.StatusFound, dashboardPath)
}

// Dashboard renders the category overview
func (h *PageHandler) Dashboard(c *gin.Context) {
	session, ok := requirePageSession(c)
	if !ok {
		return
	}

	overview := h.dashboardService.Overview(c.Request.Context(), session.UserID, session.Email)
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":    "Dashboard",
		"Session":  session,
		"Overview": overview,
	})
}

// Practice renders the practice shell. The round itself is driven through the JSON API.
func (h *PageHandler) Practice(c *gin.Context) {
	session, ok := requirePageSession(c)
	if !ok {
		return
	}

	category := models.Category(c.DefaultQuery("category", string(models.CategoryMixed)))
	difficulty := models.EffectiveDifficulty(category, models.DifficultyLevel(c.Query("difficulty")))
	if !models.IsPracticeCategory(category) || !models.IsDifficultyLevel(difficulty) {
		h.LogWarn(c, "Unknown practice selection", "category", category, "difficulty", difficulty)
		renderError(c, http.StatusBadRequest, session, "Unknown practice selection",
			"Choose a category and difficulty from the dashboard.")
		return
	}

	c.HTML(http.StatusOK, "practice.html", gin.H{
		"Title":        "Practice",
		"Session":      session,
		"Category":     category,
		"Difficulty":   difficulty,
		"Categories":   models.PracticeCategories,
		"Difficulties": models.DifficultyLevels,
	})
}

// requirePageSession redirects to login when the guard let a request through without a session.
func requirePageSession(c *gin.Context) (*auth.Session, bool) {
	session, ok := currentSession(c)
	if !ok {
		c.Redirect(http.StatusFound, loginPath)
		c.Abort()
		return nil, false
	}
	return session, true
}

func renderError(c *gin.Context, status int, session *auth.Session, title, message string) {
	c.HTML(status, "error.html", gin.H{
		"Title":   title,
		"Session": session,
		"Message": message,
	})
}
