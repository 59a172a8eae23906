package handlers

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/services"
	"github.com/gin-gonic/gin"
)

// collectionParam reads :kind, answering 400 itself when it names no collection
func (h *BaseHandler) collectionParam(c *gin.Context) (models.CollectionKind, bool) {
	kind := models.CollectionKind(strings.TrimSpace(c.Param("kind")))
	if !kind.Valid() {
		h.RespondWithError(c, http.StatusBadRequest, CodeValidation, "Unknown collection", nil, services.ValidationErrors{{
			Field:   "kind",
			Message: "must be favorites or wrong_book",
			Value:   string(kind),
		}})
		return "", false
	}
	return kind, true
}

// questionIDParam reads :id, answering 400 itself when it is blank
func (h *BaseHandler) questionIDParam(c *gin.Context) (string, bool) {
	questionID := strings.TrimSpace(c.Param("id"))
	if questionID == "" {
		h.RespondWithError(c, http.StatusBadRequest, CodeValidation, "Invalid question id", nil, services.ValidationErrors{{
			Field:   "id",
			Message: "is required",
		}})
		return "", false
	}
	return questionID, true
}
