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

type CreateLocalAssetInput struct {
	Name          string           `json:"name"`
	Type          domain.AssetType `json:"type"`
	Description   string           `json:"description"`
	ImagePrompt   string           `json:"image_prompt"`
	VisualStyleID *uuid.UUID       `json:"visual_style_id,omitempty"`
}

// EditLocalAssetInput carries partial updates; nil pointers mean "leave
// alone". Edited syncable fields are flagged as overridden on linked
// copies.
type EditLocalAssetInput struct {
	Name          *string    `json:"name,omitempty"`
	Description   *string    `json:"description,omitempty"`
	ImagePrompt   *string    `json:"image_prompt,omitempty"`
	ImageURL      *string    `json:"image_url,omitempty"`
	VisualStyleID *uuid.UUID `json:"visual_style_id,omitempty"`
}

type LocalAssetService interface {
	Create(dbc dbctx.Context, projectID, branchID uuid.UUID, in CreateLocalAssetInput) (*domain.LocalAsset, error)
	Get(dbc dbctx.Context, localID uuid.UUID) (*domain.LocalAsset, error)
	List(dbc dbctx.Context, projectID, branchID uuid.UUID, filter repos.LinkFilter) ([]*domain.LocalAsset, error)
	Edit(dbc dbctx.Context, localID uuid.UUID, in EditLocalAssetInput) (*domain.LocalAsset, error)
	SetLocked(dbc dbctx.Context, localID uuid.UUID, locked bool) (*domain.LocalAsset, error)
	SetDeferred(dbc dbctx.Context, localID uuid.UUID, deferred bool) (*domain.LocalAsset, error)
	Unlink(dbc dbctx.Context, localID uuid.UUID) (*domain.LocalAsset, error)
	Delete(dbc dbctx.Context, localID uuid.UUID) error
	Orphans(dbc dbctx.Context, projectID, branchID uuid.UUID) ([]*domain.LocalAsset, error)
}

type localAssetService struct {
	db          *gorm.DB
	log         *logger.Logger
	libraryRepo repos.LibraryAssetRepo
	localRepo   repos.LocalAssetRepo
	locks       *keylock.KeyLock
}

func NewLocalAssetService(
	db *gorm.DB,
	log *logger.Logger,
	libraryRepo repos.LibraryAssetRepo,
	localRepo repos.LocalAssetRepo,
	locks *keylock.KeyLock,
) LocalAssetService {
	return &localAssetService{
		db:          db,
		log:         log.With("service", "LocalAssetService"),
		libraryRepo: libraryRepo,
		localRepo:   localRepo,
		locks:       locks,
	}
}

func (s *localAssetService) Create(dbc dbctx.Context, projectID, branchID uuid.UUID, in CreateLocalAssetInput) (*domain.LocalAsset, error) {
	if projectID == uuid.Nil || branchID == uuid.Nil {
		return nil, domain.ValidationError("project and branch are required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ValidationError("name is required")
	}
	if !domain.IsAssetType(in.Type) {
		return nil, domain.ValidationError(fmt.Sprintf("unknown asset type %q", in.Type))
	}

	local := &domain.LocalAsset{
		ID:               uuid.New(),
		ProjectID:        projectID,
		BranchID:         branchID,
		Name:             name,
		Type:             in.Type,
		Description:      in.Description,
		ImagePrompt:      in.ImagePrompt,
		VisualStyleID:    in.VisualStyleID,
		OverriddenFields: domain.FieldSet{},
	}
	created, err := s.localRepo.Create(dbc, []*domain.LocalAsset{local})
	if err != nil {
		return nil, err
	}
	s.log.Info("Created local asset", "local_asset_id", local.ID, "project_id", projectID, "branch_id", branchID)
	return created[0], nil
}

func (s *localAssetService) Get(dbc dbctx.Context, localID uuid.UUID) (*domain.LocalAsset, error) {
	local, err := s.localRepo.GetByID(dbc, localID)
	if err != nil {
		return nil, err
	}
	if local == nil {
		return nil, domain.NotFoundError("local asset not found")
	}
	return local, nil
}

func (s *localAssetService) List(dbc dbctx.Context, projectID, branchID uuid.UUID, filter repos.LinkFilter) ([]*domain.LocalAsset, error) {
	return s.localRepo.GetByProjectBranch(dbc, projectID, branchID, filter)
}

func (s *localAssetService) Edit(dbc dbctx.Context, localID uuid.UUID, in EditLocalAssetInput) (*domain.LocalAsset, error) {
	s.locks.Lock(localID.String())
	defer s.locks.Unlock(localID.String())

	local, err := s.Get(dbc, localID)
	if err != nil {
		return nil, err
	}
	if local.Locked {
		return nil, domain.ConflictError("asset is locked")
	}

	changed := domain.FieldSet{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ValidationError("name cannot be empty")
		}
		local.Name = name
		changed[domain.FieldName] = struct{}{}
	}
	if in.Description != nil {
		local.Description = *in.Description
		changed[domain.FieldDescription] = struct{}{}
	}
	if in.ImagePrompt != nil {
		local.ImagePrompt = *in.ImagePrompt
		changed[domain.FieldImagePrompt] = struct{}{}
	}
	if in.ImageURL != nil {
		local.ImageURL = in.ImageURL
		changed[domain.FieldImageURL] = struct{}{}
	}
	if in.VisualStyleID != nil {
		local.VisualStyleID = in.VisualStyleID
		changed[domain.FieldVisualStyleID] = struct{}{}
	}
	if changed.Len() == 0 {
		return local, nil
	}

	local.OverriddenFields = RecordEdit(local, changed)
	if err := s.localRepo.Update(dbc, local); err != nil {
		return nil, err
	}
	return local, nil
}

func (s *localAssetService) SetLocked(dbc dbctx.Context, localID uuid.UUID, locked bool) (*domain.LocalAsset, error) {
	s.locks.Lock(localID.String())
	defer s.locks.Unlock(localID.String())

	local, err := s.Get(dbc, localID)
	if err != nil {
		return nil, err
	}
	if local.Locked == locked {
		return local, nil
	}
	local.Locked = locked
	if err := s.localRepo.UpdateFields(dbc, local.ID, map[string]any{"locked": locked}); err != nil {
		return nil, err
	}
	return local, nil
}

func (s *localAssetService) SetDeferred(dbc dbctx.Context, localID uuid.UUID, deferred bool) (*domain.LocalAsset, error) {
	s.locks.Lock(localID.String())
	defer s.locks.Unlock(localID.String())

	local, err := s.Get(dbc, localID)
	if err != nil {
		return nil, err
	}
	if local.Locked {
		return nil, domain.ConflictError("asset is locked")
	}
	if local.Deferred == deferred {
		return local, nil
	}
	local.Deferred = deferred
	if err := s.localRepo.UpdateFields(dbc, local.ID, map[string]any{"deferred": deferred}); err != nil {
		return nil, err
	}
	return local, nil
}

// Unlink detaches a copy from its library source. Current field values are
// kept; link bookkeeping is wiped so later syncs and drift checks skip it.
func (s *localAssetService) Unlink(dbc dbctx.Context, localID uuid.UUID) (*domain.LocalAsset, error) {
	s.locks.Lock(localID.String())
	defer s.locks.Unlock(localID.String())

	local, err := s.Get(dbc, localID)
	if err != nil {
		return nil, err
	}
	if local.Locked {
		return nil, domain.ConflictError("asset is locked")
	}
	if !local.Linked() {
		return local, nil
	}

	local.SourceAssetID = nil
	local.SourceVersion = 0
	local.OverriddenFields = domain.FieldSet{}
	local.LastSyncedAt = nil
	if err := s.localRepo.Update(dbc, local); err != nil {
		return nil, err
	}
	return local, nil
}

func (s *localAssetService) Delete(dbc dbctx.Context, localID uuid.UUID) error {
	s.locks.Lock(localID.String())
	defer s.locks.Unlock(localID.String())

	local, err := s.Get(dbc, localID)
	if err != nil {
		return err
	}
	if local.Locked {
		return domain.ConflictError("asset is locked")
	}
	return s.localRepo.SoftDeleteByIDs(dbc, []uuid.UUID{localID})
}

// Orphans lists linked copies whose library source has since been deleted.
// They keep working off their snapshot; this surfaces them so the user can
// unlink or replace them.
func (s *localAssetService) Orphans(dbc dbctx.Context, projectID, branchID uuid.UUID) ([]*domain.LocalAsset, error) {
	locals, err := s.localRepo.GetByProjectBranch(dbc, projectID, branchID, repos.LinkLinked)
	if err != nil {
		return nil, err
	}
	if len(locals) == 0 {
		return []*domain.LocalAsset{}, nil
	}

	seen := map[uuid.UUID]struct{}{}
	var sourceIDs []uuid.UUID
	for _, l := range locals {
		if !l.Linked() {
			continue
		}
		if _, ok := seen[*l.SourceAssetID]; ok {
			continue
		}
		seen[*l.SourceAssetID] = struct{}{}
		sourceIDs = append(sourceIDs, *l.SourceAssetID)
	}
	sources, err := s.libraryRepo.GetByIDs(dbc, sourceIDs)
	if err != nil {
		return nil, err
	}
	alive := map[uuid.UUID]struct{}{}
	for _, a := range sources {
		alive[a.ID] = struct{}{}
	}

	orphans := []*domain.LocalAsset{}
	for _, l := range locals {
		if !l.Linked() {
			continue
		}
		if _, ok := alive[*l.SourceAssetID]; !ok {
			orphans = append(orphans, l)
		}
	}
	return orphans, nil
}
