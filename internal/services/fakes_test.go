package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dlopezkluever/wizardirector/internal/data/repos"
	"github.com/dlopezkluever/wizardirector/internal/domain"
	"github.com/dlopezkluever/wizardirector/internal/platform/dbctx"
	"github.com/dlopezkluever/wizardirector/internal/platform/keylock"
	"github.com/dlopezkluever/wizardirector/internal/platform/logger"
)

func testLogger() *logger.Logger {
	l, _ := logger.New("test")
	return l
}

func testLocks() *keylock.KeyLock { return keylock.New() }

func nowPtr() *time.Time {
	t := time.Now().UTC()
	return &t
}

// fakeLibraryRepo is an in-memory LibraryAssetRepo. Soft delete hides rows
// from reads the way the Postgres repo does.
type fakeLibraryRepo struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]*domain.LibraryAsset
	deleted map[uuid.UUID]bool
}

func newFakeLibraryRepo(rows ...*domain.LibraryAsset) *fakeLibraryRepo {
	r := &fakeLibraryRepo{
		rows:    map[uuid.UUID]*domain.LibraryAsset{},
		deleted: map[uuid.UUID]bool{},
	}
	for _, row := range rows {
		cp := *row
		r.rows[row.ID] = &cp
	}
	return r
}

func (r *fakeLibraryRepo) Create(dbc dbctx.Context, rows []*domain.LibraryAsset) ([]*domain.LibraryAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range rows {
		for _, existing := range r.rows {
			if !r.deleted[existing.ID] && existing.OwnerID == row.OwnerID &&
				existing.Name == row.Name && existing.Type == row.Type {
				return nil, domain.ConflictError("library asset with this name already exists")
			}
		}
		cp := *row
		r.rows[row.ID] = &cp
	}
	return rows, nil
}

func (r *fakeLibraryRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.LibraryAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || r.deleted[id] {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (r *fakeLibraryRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.LibraryAsset, error) {
	out := []*domain.LibraryAsset{}
	for _, id := range ids {
		row, err := r.GetByID(dbc, id)
		if err != nil {
			return nil, err
		}
		if row != nil {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeLibraryRepo) GetByOwner(dbc dbctx.Context, ownerID uuid.UUID, assetTypes []domain.AssetType) ([]*domain.LibraryAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.LibraryAsset{}
	for _, row := range r.rows {
		if r.deleted[row.ID] || row.OwnerID != ownerID {
			continue
		}
		if len(assetTypes) > 0 {
			match := false
			for _, t := range assetTypes {
				if row.Type == t {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeLibraryRepo) Update(dbc dbctx.Context, row *domain.LibraryAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[row.ID]; !ok || r.deleted[row.ID] {
		return domain.NotFoundError("library asset not found")
	}
	cp := *row
	r.rows[row.ID] = &cp
	return nil
}

func (r *fakeLibraryRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || r.deleted[id] {
		return domain.NotFoundError("library asset not found")
	}
	for k, v := range updates {
		switch k {
		case "version":
			row.Version = v.(int)
		case "description":
			row.Description = v.(string)
		case "image_prompt":
			row.ImagePrompt = v.(string)
		case "image_url":
			s := v.(string)
			row.ImageURL = &s
		case "visual_style_id":
			id := v.(uuid.UUID)
			row.VisualStyleID = &id
		default:
			return fmt.Errorf("fakeLibraryRepo: unhandled column %q", k)
		}
	}
	return nil
}

func (r *fakeLibraryRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		r.deleted[id] = true
	}
	return nil
}

// fakeLocalRepo is an in-memory LocalAssetRepo.
type fakeLocalRepo struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]*domain.LocalAsset
	deleted map[uuid.UUID]bool
}

func newFakeLocalRepo(rows ...*domain.LocalAsset) *fakeLocalRepo {
	r := &fakeLocalRepo{
		rows:    map[uuid.UUID]*domain.LocalAsset{},
		deleted: map[uuid.UUID]bool{},
	}
	for _, row := range rows {
		cp := *row
		r.rows[row.ID] = &cp
	}
	return r
}

func (r *fakeLocalRepo) Create(dbc dbctx.Context, rows []*domain.LocalAsset) ([]*domain.LocalAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range rows {
		cp := *row
		r.rows[row.ID] = &cp
	}
	return rows, nil
}

func (r *fakeLocalRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.LocalAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || r.deleted[id] {
		return nil, nil
	}
	cp := *row
	cp.OverriddenFields = row.OverriddenFields.Clone()
	return &cp, nil
}

func (r *fakeLocalRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.LocalAsset, error) {
	out := []*domain.LocalAsset{}
	for _, id := range ids {
		row, err := r.GetByID(dbc, id)
		if err != nil {
			return nil, err
		}
		if row != nil {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeLocalRepo) GetByProjectBranch(dbc dbctx.Context, projectID, branchID uuid.UUID, filter repos.LinkFilter) ([]*domain.LocalAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.LocalAsset{}
	for _, row := range r.rows {
		if r.deleted[row.ID] || row.ProjectID != projectID || row.BranchID != branchID {
			continue
		}
		switch filter {
		case repos.LinkLinked:
			if !row.Linked() {
				continue
			}
		case repos.LinkUnlinked:
			if row.Linked() {
				continue
			}
		}
		cp := *row
		cp.OverriddenFields = row.OverriddenFields.Clone()
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeLocalRepo) GetBySourceAssetIDs(dbc dbctx.Context, sourceIDs []uuid.UUID) ([]*domain.LocalAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[uuid.UUID]struct{}{}
	for _, id := range sourceIDs {
		want[id] = struct{}{}
	}
	out := []*domain.LocalAsset{}
	for _, row := range r.rows {
		if r.deleted[row.ID] || !row.Linked() {
			continue
		}
		if _, ok := want[*row.SourceAssetID]; !ok {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeLocalRepo) Update(dbc dbctx.Context, row *domain.LocalAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[row.ID]; !ok || r.deleted[row.ID] {
		return domain.NotFoundError("local asset not found")
	}
	cp := *row
	cp.OverriddenFields = row.OverriddenFields.Clone()
	r.rows[row.ID] = &cp
	return nil
}

func (r *fakeLocalRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || r.deleted[id] {
		return domain.NotFoundError("local asset not found")
	}
	for k, v := range updates {
		switch k {
		case "locked":
			row.Locked = v.(bool)
		case "deferred":
			row.Deferred = v.(bool)
		case "image_url":
			s := v.(string)
			row.ImageURL = &s
		default:
			return fmt.Errorf("fakeLocalRepo: unhandled column %q", k)
		}
	}
	return nil
}

func (r *fakeLocalRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		r.deleted[id] = true
	}
	return nil
}

// fakeMerger returns a deterministic combination, or errors when told to.
type fakeMerger struct {
	err   error
	calls int
}

func (m *fakeMerger) Merge(ctx context.Context, baseText, additionalText string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return baseText + " | " + additionalText, nil
}

// fakeLocalizer maps source URLs to project-local ones while keeping the
// base file name, like the bucket-backed localizer does.
type fakeLocalizer struct {
	err   error
	calls []string
}

func (l *fakeLocalizer) Copy(ctx context.Context, sourceURL string, projectID, branchID uuid.UUID) (string, error) {
	l.calls = append(l.calls, sourceURL)
	if l.err != nil {
		return "", l.err
	}
	base := sourceURL
	for i := len(sourceURL) - 1; i >= 0; i-- {
		if sourceURL[i] == '/' {
			base = sourceURL[i+1:]
			break
		}
	}
	return fmt.Sprintf("https://cdn.test/projects/%s/%s/%s", projectID, branchID, base), nil
}

type fakeGenerator struct {
	err  error
	jobs []ImageJob
}

func (g *fakeGenerator) Generate(ctx context.Context, job ImageJob) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.jobs = append(g.jobs, job)
	return "job-" + job.LocalAssetID.String(), nil
}
