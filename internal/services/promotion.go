package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/dlopezkluever/wizardirector/internal/clients/redis"
	"github.com/dlopezkluever/wizardirector/internal/data/repos"
	"github.com/dlopezkluever/wizardirector/internal/domain"
	"github.com/dlopezkluever/wizardirector/internal/platform/dbctx"
	"github.com/dlopezkluever/wizardirector/internal/platform/keylock"
	"github.com/dlopezkluever/wizardirector/internal/platform/logger"
)

type PromotionService interface {
	Promote(dbc dbctx.Context, ownerID, localID uuid.UUID) (*domain.LibraryAsset, error)
}

type promotionService struct {
	db          *gorm.DB
	log         *logger.Logger
	libraryRepo repos.LibraryAssetRepo
	localRepo   repos.LocalAssetRepo
	bus         redisclient.EventBus
	locks       *keylock.KeyLock
}

func NewPromotionService(
	db *gorm.DB,
	log *logger.Logger,
	libraryRepo repos.LibraryAssetRepo,
	localRepo repos.LocalAssetRepo,
	bus redisclient.EventBus,
	locks *keylock.KeyLock,
) PromotionService {
	return &promotionService{
		db:          db,
		log:         log.With("service", "PromotionService"),
		libraryRepo: libraryRepo,
		localRepo:   localRepo,
		bus:         bus,
		locks:       locks,
	}
}

// Promote copies a finished local asset into the owner's library as a new
// version-1 entry. The local copy is left untouched: promotion records
// provenance on the library side only and does not link the two.
func (s *promotionService) Promote(dbc dbctx.Context, ownerID, localID uuid.UUID) (*domain.LibraryAsset, error) {
	s.locks.Lock(localID.String())
	defer s.locks.Unlock(localID.String())

	local, err := s.localRepo.GetByID(dbc, localID)
	if err != nil {
		return nil, err
	}
	if local == nil {
		return nil, domain.NotFoundError("local asset not found")
	}
	if local.ImageURL == nil || *local.ImageURL == "" {
		return nil, domain.ValidationError("asset must have an image before promotion")
	}

	projectID := local.ProjectID
	asset := &domain.LibraryAsset{
		ID:                    uuid.New(),
		OwnerID:               ownerID,
		Name:                  local.Name,
		Type:                  local.Type,
		Description:           local.Description,
		ImagePrompt:           local.ImagePrompt,
		ImageURL:              copyStringPtr(local.ImageURL),
		VisualStyleID:         copyUUIDPtr(local.VisualStyleID),
		Version:               1,
		PromotedFromProjectID: &projectID,
		Metadata:              local.Metadata,
	}
	if _, err := s.libraryRepo.Create(dbc, []*domain.LibraryAsset{asset}); err != nil {
		return nil, err
	}

	if err := s.bus.Publish(dbc.Ctx, redisclient.AssetEvent{
		Kind:           redisclient.EventAssetPromoted,
		LocalAssetID:   &local.ID,
		LibraryAssetID: &asset.ID,
		ProjectID:      &local.ProjectID,
		BranchID:       &local.BranchID,
	}); err != nil {
		s.log.Warn("Asset event publish failed", "error", err)
	}

	s.log.Info("Promoted local asset to library", "local_asset_id", local.ID, "library_asset_id", asset.ID, "owner_id", ownerID)
	return asset, nil
}

func copyStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
