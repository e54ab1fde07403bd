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

type SyncHandler struct {
	log  *logger.Logger
	db   *gorm.DB
	sync services.SyncService
	gate services.LockGateService
}

func NewSyncHandler(log *logger.Logger, db *gorm.DB, sync services.SyncService, gate services.LockGateService) *SyncHandler {
	return &SyncHandler{
		log:  log.With("handler", "SyncHandler"),
		db:   db,
		sync: sync,
		gate: gate,
	}
}

// GET /api/v1/projects/:projectId/branches/:branchId/drift
func (h *SyncHandler) CheckDrift(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
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
	entries, err := h.sync.CheckDrift(dbctx.Context{Ctx: c.Request.Context()}, projectID, branchID)
	if err != nil {
		respondDomainError(c, "drift_check_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"drift": entries})
}

type syncRequest struct {
	Mode string `json:"mode"`
}

// POST /api/v1/assets/:id/sync
func (h *SyncHandler) Sync(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	localID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	mode, err := services.ParseSyncMode(req.Mode)
	if err != nil {
		respondDomainError(c, "invalid_sync_mode", err)
		return
	}
	res, err := h.sync.Sync(dbctx.Context{Ctx: c.Request.Context()}, localID, mode)
	if err != nil {
		respondDomainError(c, "sync_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"asset":         res.Local,
		"synced_fields": res.SyncedFields.Sorted(),
		"warnings":      res.Warnings,
	})
}

// GET /api/v1/projects/:projectId/branches/:branchId/gate
func (h *SyncHandler) Gate(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
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
	res, err := h.gate.CanAdvance(dbctx.Context{Ctx: c.Request.Context()}, projectID, branchID)
	if err != nil {
		respondDomainError(c, "gate_check_failed", err)
		return
	}
	response.RespondOK(c, res)
}
