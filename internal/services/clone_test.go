package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	redisclient "github.com/dlopezkluever/wizardirector/internal/clients/redis"
	"github.com/dlopezkluever/wizardirector/internal/domain"
	"github.com/dlopezkluever/wizardirector/internal/platform/dbctx"
)

type cloneFixture struct {
	libRepo   *fakeLibraryRepo
	localRepo *fakeLocalRepo
	merger    *fakeMerger
	generator *fakeGenerator
	localizer *fakeLocalizer
	svc       CloneService

	owner   uuid.UUID
	project uuid.UUID
	branch  uuid.UUID
	source  *domain.LibraryAsset
}

func newCloneFixture(t *testing.T) *cloneFixture {
	t.Helper()
	f := &cloneFixture{
		libRepo:   newFakeLibraryRepo(),
		localRepo: newFakeLocalRepo(),
		merger:    &fakeMerger{},
		generator: &fakeGenerator{},
		localizer: &fakeLocalizer{},
		owner:     uuid.New(),
		project:   uuid.New(),
		branch:    uuid.New(),
	}
	f.source = &domain.LibraryAsset{
		ID:          uuid.New(),
		OwnerID:     f.owner,
		Name:        "G-1",
		Type:        domain.AssetTypeCharacter,
		Description: "A robot",
		ImagePrompt: "robot, full body",
		ImageURL:    strptr("https://cdn.test/library/robot.png"),
		Version:     3,
	}
	f.libRepo.rows[f.source.ID] = f.source
	f.svc = NewCloneService(nil, testLogger(), f.libRepo, f.localRepo, f.merger, f.generator, f.localizer, redisclient.NopEventBus{}, testLocks())
	return f
}

func TestCloneCreatesLinkedCopy(t *testing.T) {
	f := newCloneFixture(t)

	res, err := f.svc.Clone(dbctx.Background(), f.owner, f.source.ID, f.project, f.branch, CloneOptions{})
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	local := res.Local
	if local.Name != "G-1" || local.Description != "A robot" || local.ImagePrompt != "robot, full body" {
		t.Fatalf("clone did not copy fields: %+v", local)
	}
	if !local.Linked() || *local.SourceAssetID != f.source.ID || local.SourceVersion != 3 {
		t.Fatalf("clone not linked at source version: %+v", local)
	}
	if local.OverriddenFields.Len() != 0 {
		t.Fatalf("fresh clone has overrides %v", local.OverriddenFields.Sorted())
	}
	if local.LastSyncedAt == nil {
		t.Fatal("LastSyncedAt not set")
	}
	if local.ImageURL == nil {
		t.Fatal("image was not localized")
	}
	if len(f.localizer.calls) != 1 || f.localizer.calls[0] != *f.source.ImageURL {
		t.Fatalf("unexpected localizer calls %v", f.localizer.calls)
	}
	if f.merger.calls != 0 {
		t.Fatal("merger ran without a match target")
	}
}

func TestCloneOwnerMismatchHidesAsset(t *testing.T) {
	f := newCloneFixture(t)

	_, err := f.svc.Clone(dbctx.Background(), uuid.New(), f.source.ID, f.project, f.branch, CloneOptions{})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCloneMatchMergesDescriptions(t *testing.T) {
	f := newCloneFixture(t)

	matched := &domain.LocalAsset{
		ID:               uuid.New(),
		ProjectID:        f.project,
		BranchID:         f.branch,
		Name:             "Robo",
		Type:             domain.AssetTypeCharacter,
		Description:      "now with custom paint",
		OverriddenFields: domain.FieldSet{},
	}
	f.localRepo.rows[matched.ID] = matched

	res, err := f.svc.Clone(dbctx.Background(), f.owner, f.source.ID, f.project, f.branch, CloneOptions{
		MatchWithID: &matched.ID,
	})
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if res.Local.ID != matched.ID {
		t.Fatal("match should reuse the existing row")
	}
	if res.Local.Description != "A robot | now with custom paint" {
		t.Fatalf("description = %q, want merged text", res.Local.Description)
	}
	// The default strategy keeps the extracted name.
	if res.Local.Name != "Robo" {
		t.Fatalf("name = %q, want local name kept", res.Local.Name)
	}
	if !res.Local.Linked() || res.Local.SourceVersion != 3 {
		t.Fatalf("match not linked: %+v", res.Local)
	}
}

func TestCloneMergeFailureFallsBackWithWarning(t *testing.T) {
	f := newCloneFixture(t)
	f.merger.err = errors.New("model overloaded")

	matched := &domain.LocalAsset{
		ID:               uuid.New(),
		ProjectID:        f.project,
		BranchID:         f.branch,
		Name:             "Robo",
		Type:             domain.AssetTypeCharacter,
		Description:      "custom paint",
		OverriddenFields: domain.FieldSet{},
	}
	f.localRepo.rows[matched.ID] = matched

	res, err := f.svc.Clone(dbctx.Background(), f.owner, f.source.ID, f.project, f.branch, CloneOptions{
		MatchWithID: &matched.ID,
	})
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if res.Local.Description != "A robot" {
		t.Fatalf("description = %q, want library fallback", res.Local.Description)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected a merge fallback warning")
	}
}

func TestCloneMatchGuards(t *testing.T) {
	f := newCloneFixture(t)

	otherProject := &domain.LocalAsset{
		ID: uuid.New(), ProjectID: uuid.New(), BranchID: f.branch,
		Name: "Elsewhere", Type: domain.AssetTypeCharacter,
		OverriddenFields: domain.FieldSet{},
	}
	locked := &domain.LocalAsset{
		ID: uuid.New(), ProjectID: f.project, BranchID: f.branch,
		Name: "Locked", Type: domain.AssetTypeCharacter, Locked: true,
		OverriddenFields: domain.FieldSet{},
	}
	src2 := uuid.New()
	alreadyLinked := &domain.LocalAsset{
		ID: uuid.New(), ProjectID: f.project, BranchID: f.branch,
		Name: "Taken", Type: domain.AssetTypeCharacter,
		SourceAssetID: &src2, SourceVersion: 1,
		OverriddenFields: domain.FieldSet{},
	}
	for _, l := range []*domain.LocalAsset{otherProject, locked, alreadyLinked} {
		f.localRepo.rows[l.ID] = l
	}

	cases := []struct {
		name    string
		matchID uuid.UUID
		want    error
	}{
		{"missing", uuid.New(), domain.ErrNotFound},
		{"wrong project", otherProject.ID, domain.ErrValidation},
		{"locked", locked.ID, domain.ErrConflict},
		{"already linked", alreadyLinked.ID, domain.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Clone(dbctx.Background(), f.owner, f.source.ID, f.project, f.branch, CloneOptions{
				MatchWithID: &tc.matchID,
			})
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCloneOverrideDescriptionIsRecorded(t *testing.T) {
	f := newCloneFixture(t)

	res, err := f.svc.Clone(dbctx.Background(), f.owner, f.source.ID, f.project, f.branch, CloneOptions{
		OverrideDescription: strptr("Script-specific robot"),
	})
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if res.Local.Description != "Script-specific robot" {
		t.Fatalf("description = %q", res.Local.Description)
	}
	if !res.Local.OverriddenFields.Has(domain.FieldDescription) {
		t.Fatal("override not recorded")
	}
}

func TestCloneRegenerateImageQueuesJob(t *testing.T) {
	f := newCloneFixture(t)

	res, err := f.svc.Clone(dbctx.Background(), f.owner, f.source.ID, f.project, f.branch, CloneOptions{
		RegenerateImage: true,
	})
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if len(f.localizer.calls) != 0 {
		t.Fatal("regeneration should not localize the library image")
	}
	if len(f.generator.jobs) != 1 {
		t.Fatalf("generator jobs = %d, want 1", len(f.generator.jobs))
	}
	job := f.generator.jobs[0]
	if job.LocalAssetID != res.Local.ID || job.Prompt != "A robot" {
		t.Fatalf("unexpected job %+v", job)
	}
	if job.ReferenceImageURL == nil || *job.ReferenceImageURL != *f.source.ImageURL {
		t.Fatal("job missing reference image")
	}
}

func TestCloneCustomNameRequiresName(t *testing.T) {
	f := newCloneFixture(t)

	matched := &domain.LocalAsset{
		ID: uuid.New(), ProjectID: f.project, BranchID: f.branch,
		Name: "Robo", Type: domain.AssetTypeCharacter,
		OverriddenFields: domain.FieldSet{},
	}
	f.localRepo.rows[matched.ID] = matched

	_, err := f.svc.Clone(dbctx.Background(), f.owner, f.source.ID, f.project, f.branch, CloneOptions{
		MatchWithID:  &matched.ID,
		NameStrategy: NameCustom,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
