package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dlopezkluever/wizardirector/internal/domain"
	"github.com/dlopezkluever/wizardirector/internal/http/response"
	"github.com/dlopezkluever/wizardirector/internal/platform/dbctx"
	"github.com/dlopezkluever/wizardirector/internal/platform/logger"
	"github.com/dlopezkluever/wizardirector/internal/services"
)

type LibraryHandler struct {
	log     *logger.Logger
	db      *gorm.DB
	library services.LibraryService
	cloner  services.CloneService
}

func NewLibraryHandler(log *logger.Logger, db *gorm.DB, library services.LibraryService, cloner services.CloneService) *LibraryHandler {
	return &LibraryHandler{
		log:     log.With("handler", "LibraryHandler"),
		db:      db,
		library: library,
		cloner:  cloner,
	}
}

// POST /api/v1/library-assets
func (h *LibraryHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in services.CreateLibraryAssetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	asset, err := h.library.Create(dbctx.Context{Ctx: c.Request.Context()}, userID, in)
	if err != nil {
		respondDomainError(c, "create_library_asset_failed", err)
		return
	}
	response.RespondCreated(c, asset)
}

// GET /api/v1/library-assets?type=character,prop
func (h *LibraryHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var assetTypes []domain.AssetType
	if raw := strings.TrimSpace(c.Query("type")); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				assetTypes = append(assetTypes, domain.AssetType(t))
			}
		}
	}
	assets, err := h.library.List(dbctx.Context{Ctx: c.Request.Context()}, userID, assetTypes)
	if err != nil {
		respondDomainError(c, "list_library_assets_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"assets": assets})
}

// GET /api/v1/library-assets/:id
func (h *LibraryHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	assetID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	asset, err := h.library.Get(dbctx.Context{Ctx: c.Request.Context()}, userID, assetID)
	if err != nil {
		respondDomainError(c, "get_library_asset_failed", err)
		return
	}
	response.RespondOK(c, asset)
}

// POST /api/v1/library-assets/:id/republish
func (h *LibraryHandler) Republish(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	assetID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var in services.RepublishInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	asset, err := h.library.Republish(dbctx.Context{Ctx: c.Request.Context()}, userID, assetID, in)
	if err != nil {
		respondDomainError(c, "republish_failed", err)
		return
	}
	response.RespondOK(c, asset)
}

// DELETE /api/v1/library-assets/:id
func (h *LibraryHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	assetID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.library.Delete(dbctx.Context{Ctx: c.Request.Context()}, userID, assetID); err != nil {
		respondDomainError(c, "delete_library_asset_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": assetID})
}

type cloneRequest struct {
	ProjectID           uuid.UUID                    `json:"project_id"`
	BranchID            uuid.UUID                    `json:"branch_id"`
	MatchWithID         *uuid.UUID                   `json:"match_with_id,omitempty"`
	DescriptionStrategy services.DescriptionStrategy `json:"description_strategy,omitempty"`
	NameStrategy        services.NameStrategy        `json:"name_strategy,omitempty"`
	CustomName          string                       `json:"custom_name,omitempty"`
	RegenerateImage     bool                         `json:"regenerate_image,omitempty"`
	OverrideDescription *string                      `json:"override_description,omitempty"`
}

// POST /api/v1/library-assets/:id/clone
func (h *LibraryHandler) Clone(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	assetID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req cloneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	res, err := h.cloner.Clone(dbctx.Context{Ctx: c.Request.Context()}, userID, assetID, req.ProjectID, req.BranchID, services.CloneOptions{
		MatchWithID:         req.MatchWithID,
		DescriptionStrategy: req.DescriptionStrategy,
		NameStrategy:        req.NameStrategy,
		CustomName:          req.CustomName,
		RegenerateImage:     req.RegenerateImage,
		OverrideDescription: req.OverrideDescription,
	})
	if err != nil {
		respondDomainError(c, "clone_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{
		"asset":    res.Local,
		"warnings": res.Warnings,
	})
}
