package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/services"
	"github.com/SAP-F-2025/ielts-trainer/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CollectionHandler struct {
	BaseHandler
	collectionService services.CollectionService
}

func NewCollectionHandler(collectionService services.CollectionService, logger utils.Logger) *CollectionHandler {
	return &CollectionHandler{
		BaseHandler:       NewBaseHandler(logger),
		collectionService: collectionService,
	}
}

// Page renders a collection. ?expanded=<question id> opens one item.
func (h *CollectionHandler) Page(kind models.CollectionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := requirePageSession(c)
		if !ok {
			return
		}

		view, ok := h.loadView(c, session.UserID, kind)
		if !ok {
			return
		}
		if expanded := c.Query("expanded"); expanded != "" {
			view.ToggleExpand(expanded)
		}
		h.renderView(c, http.StatusOK, view)
	}
}

// Remove deletes one entry and renders the list without it
func (h *CollectionHandler) Remove(kind models.CollectionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := requirePageSession(c)
		if !ok {
			return
		}
		questionID := c.Param("id")

		view, ok := h.loadView(c, session.UserID, kind)
		if !ok {
			return
		}

		status := http.StatusOK
		if err := view.Remove(c.Request.Context(), h.collectionService, questionID); err != nil {
			status = http.StatusInternalServerError
			if services.IsNotFound(err) {
				status = http.StatusNotFound
			}
		}
		h.renderView(c, status, view)
	}
}

// Export downloads the collection as a workbook
func (h *CollectionHandler) Export(kind models.CollectionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := requirePageSession(c)
		if !ok {
			return
		}

		data, err := h.collectionService.Export(c.Request.Context(), session.UserID, kind)
		if err != nil {
			h.LogError(c, err, "Failed to export collection", "collection", kind)
			renderError(c, http.StatusInternalServerError, session, "Export failed", "Could not build the download. Please try again.")
			return
		}

		filename := fmt.Sprintf("%s.xlsx", kind)
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Data(http.StatusOK, xlsxContentType, data)
	}
}

// ListAPI returns a collection as JSON
// @Router /api/collections/{kind} [get]
func (h *CollectionHandler) ListAPI(c *gin.Context) {
	kind, ok := h.collectionParam(c)
	if !ok {
		return
	}
	session, _ := currentSession(c)

	items, err := h.collectionService.List(c.Request.Context(), session.UserID, kind)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, services.CollectionTitle(kind), items)
}

// RemoveAPI deletes one entry
// @Router /api/collections/{kind}/{id} [delete]
func (h *CollectionHandler) RemoveAPI(c *gin.Context) {
	kind, ok := h.collectionParam(c)
	if !ok {
		return
	}
	questionID, ok := h.questionIDParam(c)
	if !ok {
		return
	}
	session, _ := currentSession(c)

	if err := h.collectionService.Remove(c.Request.Context(), session.UserID, kind, questionID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CollectionHandler) loadView(c *gin.Context, userID string, kind models.CollectionKind) (*services.CollectionView, bool) {
	items, err := h.collectionService.List(c.Request.Context(), userID, kind)
	if err != nil {
		h.LogError(c, err, "Failed to load collection", "collection", kind)
		session, _ := currentSession(c)
		renderError(c, http.StatusInternalServerError, session, services.CollectionTitle(kind),
			"Could not load your "+services.CollectionTitle(kind)+". Please try again.")
		return nil, false
	}
	return services.NewCollectionView(userID, kind, items), true
}

func (h *CollectionHandler) renderView(c *gin.Context, status int, view *services.CollectionView) {
	session, _ := currentSession(c)
	c.HTML(status, "collection.html", gin.H{
		"Title":   view.Title(),
		"Session": session,
		"View":    view,
	})
}
