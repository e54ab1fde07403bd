package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dlopezkluever/wizardirector/internal/domain"
)

func SeedLibraryAsset(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string, version int) *domain.LibraryAsset {
	tb.Helper()
	a := &domain.LibraryAsset{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        name,
		Type:        domain.AssetTypeCharacter,
		Description: "seed description",
		ImagePrompt: "seed prompt",
		Version:     version,
		Metadata:    datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed library asset: %v", err)
	}
	return a
}

func SeedLocalAsset(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID, branchID uuid.UUID, name string) *domain.LocalAsset {
	tb.Helper()
	a := &domain.LocalAsset{
		ID:               uuid.New(),
		ProjectID:        projectID,
		BranchID:         branchID,
		Name:             name,
		Type:             domain.AssetTypeCharacter,
		Description:      "seed description",
		ImagePrompt:      "seed prompt",
		OverriddenFields: domain.FieldSet{},
		Metadata:         datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed local asset: %v", err)
	}
	return a
}

func SeedLinkedLocalAsset(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID, branchID uuid.UUID, source *domain.LibraryAsset) *domain.LocalAsset {
	tb.Helper()
	a := &domain.LocalAsset{
		ID:               uuid.New(),
		ProjectID:        projectID,
		BranchID:         branchID,
		Name:             source.Name,
		Type:             source.Type,
		Description:      source.Description,
		ImagePrompt:      source.ImagePrompt,
		SourceAssetID:    &source.ID,
		SourceVersion:    source.Version,
		OverriddenFields: domain.FieldSet{},
		Metadata:         datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed linked local asset: %v", err)
	}
	return a
}
