package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AssetType string

const (
	AssetTypeCharacter AssetType = "character"
	AssetTypeProp      AssetType = "prop"
	AssetTypeLocation  AssetType = "location"
)

func IsAssetType(t AssetType) bool {
	switch t {
	case AssetTypeCharacter, AssetTypeProp, AssetTypeLocation:
		return true
	}
	return false
}

// LibraryAsset is a user-owned, cross-project asset definition. Version is
// strictly increasing and is the only drift signal local copies rely on;
// reads never bump it, only creation and explicit republish do.
type LibraryAsset struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index;index:idx_library_asset_owner_name,unique,priority:1" json:"owner_id"`

	Name string    `gorm:"type:text;not null;index:idx_library_asset_owner_name,unique,priority:2" json:"name"`
	Type AssetType `gorm:"type:text;not null;index;index:idx_library_asset_owner_name,unique,priority:3" json:"type"`

	Description string `gorm:"type:text;not null;default:''" json:"description"`
	ImagePrompt string `gorm:"type:text;not null;default:''" json:"image_prompt"`

	ImageURL      *string    `gorm:"type:text" json:"image_url,omitempty"`
	VisualStyleID *uuid.UUID `gorm:"type:uuid" json:"visual_style_id,omitempty"`

	Version int `gorm:"not null;default:1" json:"version"`

	PromotedFromProjectID *uuid.UUID `gorm:"type:uuid;index" json:"promoted_from_project_id,omitempty"`

	Metadata datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LibraryAsset) TableName() string { return "library_asset" }
