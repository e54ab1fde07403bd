package services

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	redisclient "github.com/dlopezkluever/wizardirector/internal/clients/redis"
	"github.com/dlopezkluever/wizardirector/internal/data/repos"
	"github.com/dlopezkluever/wizardirector/internal/domain"
	"github.com/dlopezkluever/wizardirector/internal/platform/dbctx"
	"github.com/dlopezkluever/wizardirector/internal/platform/keylock"
	"github.com/dlopezkluever/wizardirector/internal/platform/logger"
)

type SyncMode string

const (
	// SyncRespectOverrides skips customized fields.
	SyncRespectOverrides SyncMode = "respectOverrides"
	// SyncForceAll accepts the library value everywhere and clears the
	// override flags of the fields it overwrote.
	SyncForceAll SyncMode = "forceAll"
)

func ParseSyncMode(raw string) (SyncMode, error) {
	switch SyncMode(raw) {
	case SyncRespectOverrides, SyncForceAll:
		return SyncMode(raw), nil
	}
	return "", domain.ValidationError(fmt.Sprintf("unknown sync mode %q", raw))
}

// DriftEntry reports a local copy whose library source has advanced.
type DriftEntry struct {
	LocalID       uuid.UUID `json:"local_id"`
	SourceID      uuid.UUID `json:"source_id"`
	LocalVersion  int       `json:"local_version"`
	SourceVersion int       `json:"source_version"`
}

type SyncResult struct {
	Local        *domain.LocalAsset `json:"local"`
	SyncedFields domain.FieldSet    `json:"synced_fields"`
	Warnings     []string           `json:"warnings,omitempty"`
}

type SyncService interface {
	CheckDrift(dbc dbctx.Context, projectID, branchID uuid.UUID) ([]DriftEntry, error)
	Sync(dbc dbctx.Context, localID uuid.UUID, mode SyncMode) (*SyncResult, error)
}

type syncService struct {
	db          *gorm.DB
	log         *logger.Logger
	libraryRepo repos.LibraryAssetRepo
	localRepo   repos.LocalAssetRepo
	localizer   ImageLocalizer
	bus         redisclient.EventBus
	locks       *keylock.KeyLock
}

func NewSyncService(
	db *gorm.DB,
	log *logger.Logger,
	libraryRepo repos.LibraryAssetRepo,
	localRepo repos.LocalAssetRepo,
	localizer ImageLocalizer,
	bus redisclient.EventBus,
	locks *keylock.KeyLock,
) SyncService {
	return &syncService{
		db:          db,
		log:         log.With("service", "SyncService"),
		libraryRepo: libraryRepo,
		localRepo:   localRepo,
		localizer:   localizer,
		bus:         bus,
		locks:       locks,
	}
}

const driftFetchChunk = 200

func (s *syncService) CheckDrift(dbc dbctx.Context, projectID, branchID uuid.UUID) ([]DriftEntry, error) {
	locals, err := s.localRepo.GetByProjectBranch(dbc, projectID, branchID, repos.LinkLinked)
	if err != nil {
		return nil, err
	}
	if len(locals) == 0 {
		return []DriftEntry{}, nil
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

	sourcesByID, err := s.fetchSources(dbc, sourceIDs)
	if err != nil {
		return nil, err
	}

	entries := driftOf(locals, sourcesByID)
	for i := range entries {
		e := entries[i]
		if err := s.bus.Publish(dbc.Ctx, redisclient.AssetEvent{
			Kind:           redisclient.EventAssetDrifted,
			LocalAssetID:   &e.LocalID,
			LibraryAssetID: &e.SourceID,
			ProjectID:      &projectID,
			BranchID:       &branchID,
		}); err != nil {
			s.log.Warn("Asset event publish failed", "error", err)
			break
		}
	}
	return entries, nil
}

func (s *syncService) fetchSources(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.LibraryAsset, error) {
	chunks := make([][]uuid.UUID, 0, len(ids)/driftFetchChunk+1)
	for len(ids) > 0 {
		n := driftFetchChunk
		if n > len(ids) {
			n = len(ids)
		}
		chunks = append(chunks, ids[:n])
		ids = ids[n:]
	}

	results := make([][]*domain.LibraryAsset, len(chunks))
	g, gctx := errgroup.WithContext(dbc.Ctx)
	g.SetLimit(4)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			rows, err := s.libraryRepo.GetByIDs(dbctx.Context{Ctx: gctx, Tx: dbc.Tx}, chunk)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]*domain.LibraryAsset)
	for _, rows := range results {
		for _, a := range rows {
			out[a.ID] = a
		}
	}
	return out, nil
}

// driftOf is the pure drift rule: linked copies whose source still exists
// and has a newer version. Deleted sources are orphans, not drift, and are
// excluded silently.
func driftOf(locals []*domain.LocalAsset, sourcesByID map[uuid.UUID]*domain.LibraryAsset) []DriftEntry {
	entries := []DriftEntry{}
	for _, l := range locals {
		if !l.Linked() {
			continue
		}
		source, ok := sourcesByID[*l.SourceAssetID]
		if !ok || source == nil {
			continue
		}
		if source.Version > l.SourceVersion {
			entries = append(entries, DriftEntry{
				LocalID:       l.ID,
				SourceID:      source.ID,
				LocalVersion:  l.SourceVersion,
				SourceVersion: source.Version,
			})
		}
	}
	return entries
}

func (s *syncService) Sync(dbc dbctx.Context, localID uuid.UUID, mode SyncMode) (*SyncResult, error) {
	if _, err := ParseSyncMode(string(mode)); err != nil {
		return nil, err
	}

	s.locks.Lock(localID.String())
	defer s.locks.Unlock(localID.String())

	local, err := s.localRepo.GetByID(dbc, localID)
	if err != nil {
		return nil, err
	}
	if local == nil {
		return nil, domain.NotFoundError("local asset not found")
	}
	if local.Locked {
		return nil, domain.ConflictError("asset is locked")
	}
	if !local.Linked() {
		return nil, domain.ValidationError("asset is not linked to a library source")
	}

	source, err := s.libraryRepo.GetByID(dbc, *local.SourceAssetID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, domain.NotFoundError("library source no longer exists")
	}

	localize := func(url string) (string, error) {
		return s.localizer.Copy(dbc.Ctx, url, local.ProjectID, local.BranchID)
	}
	synced, warnings := applySync(local, source, mode, localize, time.Now().UTC())

	if err := s.localRepo.Update(dbc, local); err != nil {
		return nil, err
	}

	if err := s.bus.Publish(dbc.Ctx, redisclient.AssetEvent{
		Kind:           redisclient.EventAssetSynced,
		LocalAssetID:   &local.ID,
		LibraryAssetID: &source.ID,
		ProjectID:      &local.ProjectID,
		BranchID:       &local.BranchID,
	}); err != nil {
		s.log.Warn("Asset event publish failed", "error", err)
	}

	return &SyncResult{Local: local, SyncedFields: synced, Warnings: warnings}, nil
}

// applySync is the field-level forward-sync rule. It mutates local in place
// and returns the set of fields that were synced plus non-fatal warnings.
//
// One pass always advances SourceVersion to the source's, even when
// overridden fields were skipped: the version records "has seen this
// version", not "is identical to it" — otherwise deliberately customized
// copies would reappear as outdated forever.
func applySync(local *domain.LocalAsset, source *domain.LibraryAsset, mode SyncMode, localize func(string) (string, error), now time.Time) (domain.FieldSet, []string) {
	synced := domain.FieldSet{}
	var warnings []string

	for _, f := range domain.SyncableFields {
		if local.OverriddenFields.Has(f) && mode == SyncRespectOverrides {
			continue
		}

		if f == domain.FieldImageURL {
			ok, warn := syncImageURL(local, source, localize)
			if warn != "" {
				warnings = append(warnings, warn)
			}
			if !ok {
				continue
			}
			synced[f] = struct{}{}
			continue
		}

		switch f {
		case domain.FieldName:
			local.Name = source.Name
		case domain.FieldDescription:
			local.Description = source.Description
		case domain.FieldImagePrompt:
			local.ImagePrompt = source.ImagePrompt
		case domain.FieldVisualStyleID:
			local.VisualStyleID = copyUUIDPtr(source.VisualStyleID)
		}
		synced[f] = struct{}{}
	}

	if mode == SyncForceAll {
		local.OverriddenFields = local.OverriddenFields.Without(synced)
	}
	local.SourceVersion = source.Version
	local.LastSyncedAt = &now

	return synced, warnings
}

// syncImageURL localizes the source image into project storage before
// adopting it. A localization failure leaves the prior value in place and
// the field unsynced.
func syncImageURL(local *domain.LocalAsset, source *domain.LibraryAsset, localize func(string) (string, error)) (bool, string) {
	if source.ImageURL == nil || *source.ImageURL == "" {
		local.ImageURL = nil
		return true, ""
	}
	if !imageStale(local.ImageURL, *source.ImageURL) {
		return true, ""
	}
	url, err := localize(*source.ImageURL)
	if err != nil {
		return false, fmt.Sprintf("image localization failed: %v", domain.ExternalError(err))
	}
	local.ImageURL = &url
	return true, ""
}

// imageStale compares images by object base name: a localized copy keeps
// its source's file name, so equal base names mean the same image even
// though the URLs differ.
func imageStale(localURL *string, sourceURL string) bool {
	if localURL == nil || *localURL == "" {
		return true
	}
	return path.Base(strings.TrimSuffix(*localURL, "/")) != path.Base(strings.TrimSuffix(sourceURL, "/"))
}

func copyUUIDPtr(p *uuid.UUID) *uuid.UUID {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
