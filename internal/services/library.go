package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dlopezkluever/wizardirector/internal/data/repos"
	"github.com/dlopezkluever/wizardirector/internal/domain"
	"github.com/dlopezkluever/wizardirector/internal/platform/dbctx"
	"github.com/dlopezkluever/wizardirector/internal/platform/keylock"
	"github.com/dlopezkluever/wizardirector/internal/platform/logger"
)

type CreateLibraryAssetInput struct {
	Name          string           `json:"name"`
	Type          domain.AssetType `json:"type"`
	Description   string           `json:"description"`
	ImagePrompt   string           `json:"image_prompt"`
	ImageURL      *string          `json:"image_url,omitempty"`
	VisualStyleID *uuid.UUID       `json:"visual_style_id,omitempty"`
}

type RepublishInput struct {
	Description   *string    `json:"description,omitempty"`
	ImagePrompt   *string    `json:"image_prompt,omitempty"`
	ImageURL      *string    `json:"image_url,omitempty"`
	VisualStyleID *uuid.UUID `json:"visual_style_id,omitempty"`
}

type LibraryService interface {
	Create(dbc dbctx.Context, ownerID uuid.UUID, in CreateLibraryAssetInput) (*domain.LibraryAsset, error)
	Get(dbc dbctx.Context, ownerID, assetID uuid.UUID) (*domain.LibraryAsset, error)
	List(dbc dbctx.Context, ownerID uuid.UUID, assetTypes []domain.AssetType) ([]*domain.LibraryAsset, error)
	Republish(dbc dbctx.Context, ownerID, assetID uuid.UUID, in RepublishInput) (*domain.LibraryAsset, error)
	Delete(dbc dbctx.Context, ownerID, assetID uuid.UUID) error
}

type libraryService struct {
	db          *gorm.DB
	log         *logger.Logger
	libraryRepo repos.LibraryAssetRepo
	locks       *keylock.KeyLock
}

func NewLibraryService(db *gorm.DB, log *logger.Logger, libraryRepo repos.LibraryAssetRepo, locks *keylock.KeyLock) LibraryService {
	return &libraryService{
		db:          db,
		log:         log.With("service", "LibraryService"),
		libraryRepo: libraryRepo,
		locks:       locks,
	}
}

func (s *libraryService) Create(dbc dbctx.Context, ownerID uuid.UUID, in CreateLibraryAssetInput) (*domain.LibraryAsset, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ValidationError("name is required")
	}
	if !domain.IsAssetType(in.Type) {
		return nil, domain.ValidationError(fmt.Sprintf("unknown asset type %q", in.Type))
	}

	asset := &domain.LibraryAsset{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Name:          name,
		Type:          in.Type,
		Description:   in.Description,
		ImagePrompt:   in.ImagePrompt,
		ImageURL:      in.ImageURL,
		VisualStyleID: in.VisualStyleID,
		Version:       1,
	}
	created, err := s.libraryRepo.Create(dbc, []*domain.LibraryAsset{asset})
	if err != nil {
		return nil, err
	}
	s.log.Info("Created library asset", "library_asset_id", asset.ID, "owner_id", ownerID, "type", asset.Type)
	return created[0], nil
}

func (s *libraryService) Get(dbc dbctx.Context, ownerID, assetID uuid.UUID) (*domain.LibraryAsset, error) {
	return s.getOwned(dbc, ownerID, assetID)
}

func (s *libraryService) List(dbc dbctx.Context, ownerID uuid.UUID, assetTypes []domain.AssetType) ([]*domain.LibraryAsset, error) {
	for _, t := range assetTypes {
		if !domain.IsAssetType(t) {
			return nil, domain.ValidationError(fmt.Sprintf("unknown asset type %q", t))
		}
	}
	return s.libraryRepo.GetByOwner(dbc, ownerID, assetTypes)
}

// Republish bumps the asset's version so linked project copies start
// reporting drift. Version moves forward only; there is no republish that
// leaves the version alone.
func (s *libraryService) Republish(dbc dbctx.Context, ownerID, assetID uuid.UUID, in RepublishInput) (*domain.LibraryAsset, error) {
	s.locks.Lock(assetID.String())
	defer s.locks.Unlock(assetID.String())

	asset, err := s.getOwned(dbc, ownerID, assetID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"version": asset.Version + 1}
	if in.Description != nil {
		updates["description"] = *in.Description
		asset.Description = *in.Description
	}
	if in.ImagePrompt != nil {
		updates["image_prompt"] = *in.ImagePrompt
		asset.ImagePrompt = *in.ImagePrompt
	}
	if in.ImageURL != nil {
		updates["image_url"] = *in.ImageURL
		asset.ImageURL = in.ImageURL
	}
	if in.VisualStyleID != nil {
		updates["visual_style_id"] = *in.VisualStyleID
		asset.VisualStyleID = in.VisualStyleID
	}
	if err := s.libraryRepo.UpdateFields(dbc, asset.ID, updates); err != nil {
		return nil, err
	}
	asset.Version++

	s.log.Info("Republished library asset", "library_asset_id", asset.ID, "version", asset.Version)
	return asset, nil
}

// Delete removes the library entry. Linked project copies keep working off
// their snapshot and surface as orphans instead of breaking.
func (s *libraryService) Delete(dbc dbctx.Context, ownerID, assetID uuid.UUID) error {
	if _, err := s.getOwned(dbc, ownerID, assetID); err != nil {
		return err
	}
	return s.libraryRepo.SoftDeleteByIDs(dbc, []uuid.UUID{assetID})
}

// getOwned hides other owners' assets behind not-found rather than
// forbidden, so asset ids cannot be probed.
func (s *libraryService) getOwned(dbc dbctx.Context, ownerID, assetID uuid.UUID) (*domain.LibraryAsset, error) {
	asset, err := s.libraryRepo.GetByID(dbc, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil || asset.OwnerID != ownerID {
		return nil, domain.NotFoundError("library asset not found")
	}
	return asset, nil
}
