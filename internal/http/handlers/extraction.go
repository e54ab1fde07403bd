package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dlopezkluever/wizardirector/internal/http/response"
	"github.com/dlopezkluever/wizardirector/internal/platform/dbctx"
	"github.com/dlopezkluever/wizardirector/internal/platform/logger"
	"github.com/dlopezkluever/wizardirector/internal/services"
)

type ExtractionHandler struct {
	log        *logger.Logger
	db         *gorm.DB
	extraction services.ExtractionService
}

func NewExtractionHandler(log *logger.Logger, db *gorm.DB, extraction services.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{
		log:        log.With("handler", "ExtractionHandler"),
		db:         db,
		extraction: extraction,
	}
}

type applyDecisionsRequest struct {
	Decisions []services.ExtractionDecision `json:"decisions"`
}

// POST /api/v1/projects/:projectId/branches/:branchId/extraction/decisions
func (h *ExtractionHandler) ApplyDecisions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	branchID, ok := pathUUID(c, "branchId")
	if !ok {
		return
	}
	var req applyDecisionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	out, err := h.extraction.ApplyDecisions(dbctx.Context{Ctx: c.Request.Context()}, userID, projectID, branchID, req.Decisions)
	if err != nil {
		// Partial progress is persisted; surface it with the failure.
		respondDomainError(c, "apply_decisions_failed", err)
		return
	}
	response.RespondOK(c, out)
}
