package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	redisclient "github.com/dlopezkluever/wizardirector/internal/clients/redis"
	"github.com/dlopezkluever/wizardirector/internal/data/repos"
	"github.com/dlopezkluever/wizardirector/internal/domain"
	"github.com/dlopezkluever/wizardirector/internal/platform/dbctx"
	"github.com/dlopezkluever/wizardirector/internal/platform/keylock"
	"github.com/dlopezkluever/wizardirector/internal/platform/logger"
)

type DescriptionStrategy string

const (
	DescriptionUseLibrary DescriptionStrategy = "useLibrary"
	DescriptionUseLocal   DescriptionStrategy = "useLocal"
	DescriptionMerge      DescriptionStrategy = "merge"
)

type NameStrategy string

const (
	NameUseLocal   NameStrategy = "useLocalName"
	NameUseLibrary NameStrategy = "useLibraryName"
	NameCustom     NameStrategy = "custom"
)

type CloneOptions struct {
	// MatchWithID folds the library asset into an existing unlinked copy
	// instead of creating a new one.
	MatchWithID *uuid.UUID

	DescriptionStrategy DescriptionStrategy
	NameStrategy        NameStrategy
	CustomName          string

	RegenerateImage bool

	// OverrideDescription wins over any strategy and is recorded as an
	// override immediately.
	OverrideDescription *string
}

type CloneResult struct {
	Local *domain.LocalAsset
	// Warnings carry non-fatal adapter failures (merge fallback, image
	// localization) alongside the successful clone.
	Warnings []string
}

type CloneService interface {
	Clone(dbc dbctx.Context, ownerID, libraryID, projectID, branchID uuid.UUID, opts CloneOptions) (*CloneResult, error)
}

type cloneService struct {
	db          *gorm.DB
	log         *logger.Logger
	libraryRepo repos.LibraryAssetRepo
	localRepo   repos.LocalAssetRepo
	merger      DescriptionMerger
	generator   ImageGenerator
	localizer   ImageLocalizer
	bus         redisclient.EventBus
	locks       *keylock.KeyLock
}

func NewCloneService(
	db *gorm.DB,
	log *logger.Logger,
	libraryRepo repos.LibraryAssetRepo,
	localRepo repos.LocalAssetRepo,
	merger DescriptionMerger,
	generator ImageGenerator,
	localizer ImageLocalizer,
	bus redisclient.EventBus,
	locks *keylock.KeyLock,
) CloneService {
	return &cloneService{
		db:          db,
		log:         log.With("service", "CloneService"),
		libraryRepo: libraryRepo,
		localRepo:   localRepo,
		merger:      merger,
		generator:   generator,
		localizer:   localizer,
		bus:         bus,
		locks:       locks,
	}
}

func (s *cloneService) Clone(dbc dbctx.Context, ownerID, libraryID, projectID, branchID uuid.UUID, opts CloneOptions) (*CloneResult, error) {
	if projectID == uuid.Nil || branchID == uuid.Nil {
		return nil, domain.ValidationError("project and branch required")
	}

	source, err := s.libraryRepo.GetByID(dbc, libraryID)
	if err != nil {
		return nil, err
	}
	if source == nil || source.OwnerID != ownerID {
		return nil, domain.NotFoundError("library asset not found")
	}

	var matched *domain.LocalAsset
	if opts.MatchWithID != nil {
		matched, err = s.localRepo.GetByID(dbc, *opts.MatchWithID)
		if err != nil {
			return nil, err
		}
		if matched == nil {
			return nil, domain.NotFoundError("match target not found")
		}
		if matched.ProjectID != projectID || matched.BranchID != branchID {
			return nil, domain.ValidationError("match target belongs to a different project or branch")
		}
		if matched.Locked {
			return nil, domain.ConflictError("match target is locked")
		}
		// Re-parenting an already linked copy would silently discard its
		// divergence history.
		if matched.Linked() {
			return nil, domain.ConflictError("match target is already linked to a library asset")
		}

		s.locks.Lock(matched.ID.String())
		defer s.locks.Unlock(matched.ID.String())
	}

	var warnings []string

	finalDescription, descOverridden, warn := s.resolveDescription(dbc, source, matched, opts)
	if warn != "" {
		warnings = append(warnings, warn)
	}

	var local *domain.LocalAsset
	if matched != nil {
		local, err = s.mergeIntoMatched(dbc, source, matched, finalDescription, descOverridden, opts)
	} else {
		local, err = s.createLinkedCopy(dbc, source, projectID, branchID, finalDescription, descOverridden)
	}
	if err != nil {
		return nil, err
	}

	warnings = append(warnings, s.handleImage(dbc, source, local, finalDescription, opts)...)

	if err := s.bus.Publish(dbc.Ctx, redisclient.AssetEvent{
		Kind:           redisclient.EventAssetCloned,
		LocalAssetID:   &local.ID,
		LibraryAssetID: &source.ID,
		ProjectID:      &local.ProjectID,
		BranchID:       &local.BranchID,
	}); err != nil {
		s.log.Warn("Asset event publish failed", "error", err)
	}

	return &CloneResult{Local: local, Warnings: warnings}, nil
}

func (s *cloneService) resolveDescription(dbc dbctx.Context, source *domain.LibraryAsset, matched *domain.LocalAsset, opts CloneOptions) (desc string, overridden bool, warning string) {
	if opts.OverrideDescription != nil {
		return *opts.OverrideDescription, true, ""
	}

	strategy := opts.DescriptionStrategy
	if strategy == "" {
		if matched != nil {
			strategy = DescriptionMerge
		} else {
			strategy = DescriptionUseLibrary
		}
	}

	switch strategy {
	case DescriptionUseLocal:
		if matched != nil {
			return matched.Description, false, ""
		}
		return source.Description, false, ""
	case DescriptionMerge:
		if matched == nil {
			return source.Description, false, ""
		}
		merged, err := s.merger.Merge(dbc.Ctx, source.Description, matched.Description)
		if err != nil {
			s.log.Warn("Description merge failed, falling back to library text", "error", err)
			return source.Description, false, fmt.Sprintf("description merge unavailable: %v", domain.ExternalError(err))
		}
		return merged, false, ""
	default:
		return source.Description, false, ""
	}
}

func (s *cloneService) mergeIntoMatched(dbc dbctx.Context, source *domain.LibraryAsset, matched *domain.LocalAsset, finalDescription string, descOverridden bool, opts CloneOptions) (*domain.LocalAsset, error) {
	name, err := s.resolveName(source, matched, opts)
	if err != nil {
		return nil, err
	}

	matched.SourceAssetID = &source.ID
	matched.SourceVersion = source.Version
	matched.Name = name
	matched.Description = finalDescription
	if matched.ImagePrompt == "" || opts.DescriptionStrategy != DescriptionUseLocal {
		matched.ImagePrompt = source.ImagePrompt
	}
	if matched.VisualStyleID == nil {
		matched.VisualStyleID = source.VisualStyleID
	}
	if descOverridden {
		matched.OverriddenFields = matched.OverriddenFields.Union(domain.NewFieldSet(domain.FieldDescription))
	}

	if err := s.localRepo.Update(dbc, matched); err != nil {
		return nil, err
	}
	return matched, nil
}

func (s *cloneService) createLinkedCopy(dbc dbctx.Context, source *domain.LibraryAsset, projectID, branchID uuid.UUID, finalDescription string, descOverridden bool) (*domain.LocalAsset, error) {
	overridden := domain.FieldSet{}
	if descOverridden {
		overridden = domain.NewFieldSet(domain.FieldDescription)
	}

	now := time.Now().UTC()
	local := &domain.LocalAsset{
		ID:               uuid.New(),
		ProjectID:        projectID,
		BranchID:         branchID,
		Name:             source.Name,
		Type:             source.Type,
		Description:      finalDescription,
		ImagePrompt:      source.ImagePrompt,
		VisualStyleID:    source.VisualStyleID,
		SourceAssetID:    &source.ID,
		SourceVersion:    source.Version,
		OverriddenFields: overridden,
		LastSyncedAt:     &now,
		Metadata:         datatypes.JSON([]byte("{}")),
	}

	created, err := s.localRepo.Create(dbc, []*domain.LocalAsset{local})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *cloneService) resolveName(source *domain.LibraryAsset, matched *domain.LocalAsset, opts CloneOptions) (string, error) {
	switch opts.NameStrategy {
	case NameUseLibrary:
		return source.Name, nil
	case NameCustom:
		if opts.CustomName == "" {
			return "", domain.ValidationError("custom name required for nameStrategy=custom")
		}
		return opts.CustomName, nil
	default:
		return matched.Name, nil
	}
}

// handleImage runs the delegated image step. Failures degrade to warnings so
// the metadata clone always survives a broken image backend.
func (s *cloneService) handleImage(dbc dbctx.Context, source *domain.LibraryAsset, local *domain.LocalAsset, finalDescription string, opts CloneOptions) []string {
	if source.ImageURL == nil || *source.ImageURL == "" {
		return nil
	}

	if opts.RegenerateImage {
		_, err := s.generator.Generate(dbc.Ctx, ImageJob{
			LocalAssetID:      local.ID,
			ProjectID:         local.ProjectID,
			BranchID:          local.BranchID,
			Prompt:            finalDescription,
			StyleID:           local.VisualStyleID,
			ReferenceImageURL: source.ImageURL,
		})
		if err != nil {
			return []string{fmt.Sprintf("image regeneration not started: %v", domain.ExternalError(err))}
		}
		return nil
	}

	url, err := s.localizer.Copy(dbc.Ctx, *source.ImageURL, local.ProjectID, local.BranchID)
	if err != nil {
		return []string{fmt.Sprintf("image localization failed: %v", domain.ExternalError(err))}
	}
	local.ImageURL = &url
	if err := s.localRepo.UpdateFields(dbc, local.ID, map[string]interface{}{"image_url": url}); err != nil {
		return []string{fmt.Sprintf("image url update failed: %v", err)}
	}
	return nil
}
