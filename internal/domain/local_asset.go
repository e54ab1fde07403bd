package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LocalAsset is a project-and-branch-scoped copy of an asset. A non-nil
// SourceAssetID makes the copy "linked": SourceVersion then records the
// library version last seen, and OverriddenFields tracks which fields the
// user customized and sync must not silently overwrite.
type LocalAsset struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index:idx_local_asset_project_branch,priority:1" json:"project_id"`
	BranchID  uuid.UUID `gorm:"type:uuid;not null;index:idx_local_asset_project_branch,priority:2" json:"branch_id"`

	Name string    `gorm:"type:text;not null" json:"name"`
	Type AssetType `gorm:"type:text;not null;index" json:"type"`

	Description string `gorm:"type:text;not null;default:''" json:"description"`
	ImagePrompt string `gorm:"type:text;not null;default:''" json:"image_prompt"`

	ImageURL      *string    `gorm:"type:text" json:"image_url,omitempty"`
	VisualStyleID *uuid.UUID `gorm:"type:uuid" json:"visual_style_id,omitempty"`

	Locked   bool `gorm:"not null;default:false" json:"locked"`
	Deferred bool `gorm:"not null;default:false" json:"deferred"`

	SourceAssetID    *uuid.UUID `gorm:"type:uuid;index" json:"source_asset_id,omitempty"`
	SourceVersion    int        `gorm:"not null;default:0" json:"source_version"`
	OverriddenFields FieldSet   `gorm:"type:jsonb;not null;default:'[]'" json:"overridden_fields"`
	LastSyncedAt     *time.Time `json:"last_synced_at,omitempty"`

	Metadata datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LocalAsset) TableName() string { return "local_asset" }

func (a *LocalAsset) Linked() bool {
	return a != nil && a.SourceAssetID != nil && *a.SourceAssetID != uuid.Nil
}
