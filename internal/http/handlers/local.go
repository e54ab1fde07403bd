package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dlopezkluever/wizardirector/internal/data/repos"
	"github.com/dlopezkluever/wizardirector/internal/http/response"
	"github.com/dlopezkluever/wizardirector/internal/platform/dbctx"
	"github.com/dlopezkluever/wizardirector/internal/platform/logger"
	"github.com/dlopezkluever/wizardirector/internal/services"
)

type LocalAssetHandler struct {
	log       *logger.Logger
	db        *gorm.DB
	locals    services.LocalAssetService
	promotion services.PromotionService
}

func NewLocalAssetHandler(log *logger.Logger, db *gorm.DB, locals services.LocalAssetService, promotion services.PromotionService) *LocalAssetHandler {
	return &LocalAssetHandler{
		log:       log.With("handler", "LocalAssetHandler"),
		db:        db,
		locals:    locals,
		promotion: promotion,
	}
}

// POST /api/v1/projects/:projectId/branches/:branchId/assets
func (h *LocalAssetHandler) Create(c *gin.Context) {
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
	var in services.CreateLocalAssetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	local, err := h.locals.Create(dbctx.Context{Ctx: c.Request.Context()}, projectID, branchID, in)
	if err != nil {
		respondDomainError(c, "create_local_asset_failed", err)
		return
	}
	response.RespondCreated(c, local)
}

// GET /api/v1/projects/:projectId/branches/:branchId/assets?link=linked
func (h *LocalAssetHandler) List(c *gin.Context) {
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
	filter := repos.LinkFilter(c.DefaultQuery("link", string(repos.LinkAny)))
	switch filter {
	case repos.LinkAny, repos.LinkLinked, repos.LinkUnlinked:
	default:
		response.RespondError(c, http.StatusBadRequest, "invalid_filter", nil)
		return
	}
	assets, err := h.locals.List(dbctx.Context{Ctx: c.Request.Context()}, projectID, branchID, filter)
	if err != nil {
		respondDomainError(c, "list_local_assets_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"assets": assets})
}

// GET /api/v1/projects/:projectId/branches/:branchId/assets/orphans
func (h *LocalAssetHandler) Orphans(c *gin.Context) {
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
	assets, err := h.locals.Orphans(dbctx.Context{Ctx: c.Request.Context()}, projectID, branchID)
	if err != nil {
		respondDomainError(c, "list_orphans_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"assets": assets})
}

// GET /api/v1/assets/:id
func (h *LocalAssetHandler) Get(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	localID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	local, err := h.locals.Get(dbctx.Context{Ctx: c.Request.Context()}, localID)
	if err != nil {
		respondDomainError(c, "get_local_asset_failed", err)
		return
	}
	response.RespondOK(c, local)
}

// PATCH /api/v1/assets/:id
func (h *LocalAssetHandler) Edit(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	localID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var in services.EditLocalAssetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	local, err := h.locals.Edit(dbctx.Context{Ctx: c.Request.Context()}, localID, in)
	if err != nil {
		respondDomainError(c, "edit_local_asset_failed", err)
		return
	}
	response.RespondOK(c, local)
}

type lockRequest struct {
	Locked bool `json:"locked"`
}

// POST /api/v1/assets/:id/lock
func (h *LocalAssetHandler) SetLocked(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	localID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req lockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	local, err := h.locals.SetLocked(dbctx.Context{Ctx: c.Request.Context()}, localID, req.Locked)
	if err != nil {
		respondDomainError(c, "lock_failed", err)
		return
	}
	response.RespondOK(c, local)
}

type deferRequest struct {
	Deferred bool `json:"deferred"`
}

// POST /api/v1/assets/:id/defer
func (h *LocalAssetHandler) SetDeferred(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	localID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req deferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	local, err := h.locals.SetDeferred(dbctx.Context{Ctx: c.Request.Context()}, localID, req.Deferred)
	if err != nil {
		respondDomainError(c, "defer_failed", err)
		return
	}
	response.RespondOK(c, local)
}

// POST /api/v1/assets/:id/unlink
func (h *LocalAssetHandler) Unlink(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	localID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	local, err := h.locals.Unlink(dbctx.Context{Ctx: c.Request.Context()}, localID)
	if err != nil {
		respondDomainError(c, "unlink_failed", err)
		return
	}
	response.RespondOK(c, local)
}

// DELETE /api/v1/assets/:id
func (h *LocalAssetHandler) Delete(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	localID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.locals.Delete(dbctx.Context{Ctx: c.Request.Context()}, localID); err != nil {
		respondDomainError(c, "delete_local_asset_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": localID})
}

// POST /api/v1/assets/:id/promote
func (h *LocalAssetHandler) Promote(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	localID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	asset, err := h.promotion.Promote(dbctx.Context{Ctx: c.Request.Context()}, userID, localID)
	if err != nil {
		respondDomainError(c, "promote_failed", err)
		return
	}
	response.RespondCreated(c, asset)
}
