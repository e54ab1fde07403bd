package assets

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/dlopezkluever/wizardirector/internal/data/repos/testutil"
	"github.com/dlopezkluever/wizardirector/internal/domain"
	"github.com/dlopezkluever/wizardirector/internal/platform/dbctx"
)

func TestLibraryAssetRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewLibraryAssetRepo(db, testutil.Logger(t))

	owner1 := uuid.New()
	owner2 := uuid.New()

	a1 := testutil.SeedLibraryAsset(t, ctx, tx, owner1, "Robot", 3)
	a2 := testutil.SeedLibraryAsset(t, ctx, tx, owner1, "Warehouse", 1)
	testutil.SeedLibraryAsset(t, ctx, tx, owner2, "Other", 1)

	if got, err := repo.GetByID(dbc, a1.ID); err != nil || got == nil || got.Version != 3 {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}
	if got, err := repo.GetByIDs(dbc, []uuid.UUID{a1.ID, a2.ID}); err != nil || len(got) != 2 {
		t.Fatalf("GetByIDs: len=%d err=%v", len(got), err)
	}
	if got, err := repo.GetByOwner(dbc, owner1, nil); err != nil || len(got) != 2 {
		t.Fatalf("GetByOwner: len=%d err=%v", len(got), err)
	}
	if got, err := repo.GetByOwner(dbc, owner1, []domain.AssetType{domain.AssetTypeProp}); err != nil || len(got) != 0 {
		t.Fatalf("GetByOwner type filter: len=%d err=%v", len(got), err)
	}

	a1.Description = "updated"
	a1.Version = 4
	if err := repo.Update(dbc, a1); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, _ := repo.GetByID(dbc, a1.ID); got.Description != "updated" || got.Version != 4 {
		t.Fatalf("Update not persisted: %+v", got)
	}

	if err := repo.SoftDeleteByIDs(dbc, []uuid.UUID{a2.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	if got, err := repo.GetByID(dbc, a2.ID); err != nil || got != nil {
		t.Fatalf("soft-deleted asset still visible: got=%+v err=%v", got, err)
	}
}

func TestLibraryAssetRepoUniqueName(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewLibraryAssetRepo(db, testutil.Logger(t))

	owner := uuid.New()
	testutil.SeedLibraryAsset(t, ctx, tx, owner, "Robot", 1)

	dup := &domain.LibraryAsset{
		ID:      uuid.New(),
		OwnerID: owner,
		Name:    "Robot",
		Type:    domain.AssetTypeCharacter,
		Version: 1,
	}
	_, err := repo.Create(dbc, []*domain.LibraryAsset{dup})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate create: want ErrConflict, got %v", err)
	}
}
