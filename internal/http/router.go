package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/dlopezkluever/wizardirector/internal/http/handlers"
	httpMW "github.com/dlopezkluever/wizardirector/internal/http/middleware"
)

type RouterConfig struct {
	LibraryHandler    *httpH.LibraryHandler
	LocalAssetHandler *httpH.LocalAssetHandler
	SyncHandler       *httpH.SyncHandler
	ExtractionHandler *httpH.ExtractionHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api/v1")
	{
		// Library assets
		if cfg.LibraryHandler != nil {
			api.POST("/library-assets", cfg.LibraryHandler.Create)
			api.GET("/library-assets", cfg.LibraryHandler.List)
			api.GET("/library-assets/:id", cfg.LibraryHandler.Get)
			api.POST("/library-assets/:id/republish", cfg.LibraryHandler.Republish)
			api.DELETE("/library-assets/:id", cfg.LibraryHandler.Delete)
			api.POST("/library-assets/:id/clone", cfg.LibraryHandler.Clone)
		}

		// Branch-scoped local assets
		if cfg.LocalAssetHandler != nil {
			api.POST("/projects/:projectId/branches/:branchId/assets", cfg.LocalAssetHandler.Create)
			api.GET("/projects/:projectId/branches/:branchId/assets", cfg.LocalAssetHandler.List)
			api.GET("/projects/:projectId/branches/:branchId/assets/orphans", cfg.LocalAssetHandler.Orphans)
			api.GET("/assets/:id", cfg.LocalAssetHandler.Get)
			api.PATCH("/assets/:id", cfg.LocalAssetHandler.Edit)
			api.POST("/assets/:id/lock", cfg.LocalAssetHandler.SetLocked)
			api.POST("/assets/:id/defer", cfg.LocalAssetHandler.SetDeferred)
			api.POST("/assets/:id/unlink", cfg.LocalAssetHandler.Unlink)
			api.DELETE("/assets/:id", cfg.LocalAssetHandler.Delete)
			api.POST("/assets/:id/promote", cfg.LocalAssetHandler.Promote)
		}

		// Drift, sync, and the advancement gate
		if cfg.SyncHandler != nil {
			api.GET("/projects/:projectId/branches/:branchId/drift", cfg.SyncHandler.CheckDrift)
			api.GET("/projects/:projectId/branches/:branchId/gate", cfg.SyncHandler.Gate)
			api.POST("/assets/:id/sync", cfg.SyncHandler.Sync)
		}

		// Script extraction review
		if cfg.ExtractionHandler != nil {
			api.POST("/projects/:projectId/branches/:branchId/extraction/decisions", cfg.ExtractionHandler.ApplyDecisions)
		}
	}

	return r
}
