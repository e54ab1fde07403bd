package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/dlopezkluever/wizardirector/internal/domain"
)

func TestRecordEditUnlinkedPassesThrough(t *testing.T) {
	local := &domain.LocalAsset{
		ID:               uuid.New(),
		OverriddenFields: domain.FieldSet{},
	}
	changed := domain.NewFieldSet(domain.FieldDescription)

	got := RecordEdit(local, changed)
	if got.Len() != 0 {
		t.Fatalf("unlinked edit should not record overrides, got %v", got.Sorted())
	}
}

func TestRecordEditAccumulates(t *testing.T) {
	src := uuid.New()
	local := &domain.LocalAsset{
		ID:               uuid.New(),
		SourceAssetID:    &src,
		OverriddenFields: domain.NewFieldSet(domain.FieldName),
	}

	got := RecordEdit(local, domain.NewFieldSet(domain.FieldDescription))
	want := domain.NewFieldSet(domain.FieldName, domain.FieldDescription)
	if !got.Equal(want) {
		t.Fatalf("overrides = %v, want %v", got.Sorted(), want.Sorted())
	}

	// Re-editing an already overridden field changes nothing.
	got = RecordEdit(&domain.LocalAsset{ID: local.ID, SourceAssetID: &src, OverriddenFields: got}, domain.NewFieldSet(domain.FieldName))
	if !got.Equal(want) {
		t.Fatalf("repeat edit changed overrides: %v", got.Sorted())
	}
}

func TestRecordEditIgnoresNonSyncable(t *testing.T) {
	src := uuid.New()
	local := &domain.LocalAsset{
		ID:               uuid.New(),
		SourceAssetID:    &src,
		OverriddenFields: domain.FieldSet{},
	}

	got := RecordEdit(local, domain.NewFieldSet(domain.Field("locked"), domain.FieldName))
	if !got.Equal(domain.NewFieldSet(domain.FieldName)) {
		t.Fatalf("overrides = %v, want only name", got.Sorted())
	}
}
