package assets

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dlopezkluever/wizardirector/internal/domain"
	"github.com/dlopezkluever/wizardirector/internal/platform/dbctx"
	"github.com/dlopezkluever/wizardirector/internal/platform/logger"
)

type LibraryAssetRepo interface {
	Create(dbc dbctx.Context, rows []*domain.LibraryAsset) ([]*domain.LibraryAsset, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.LibraryAsset, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.LibraryAsset, error)
	GetByOwner(dbc dbctx.Context, ownerID uuid.UUID, assetTypes []domain.AssetType) ([]*domain.LibraryAsset, error)

	Update(dbc dbctx.Context, row *domain.LibraryAsset) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error

	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type libraryAssetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLibraryAssetRepo(db *gorm.DB, baseLog *logger.Logger) LibraryAssetRepo {
	return &libraryAssetRepo{db: db, log: baseLog.With("repo", "LibraryAssetRepo")}
}

func (r *libraryAssetRepo) Create(dbc dbctx.Context, rows []*domain.LibraryAsset) ([]*domain.LibraryAsset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*domain.LibraryAsset{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ConflictError("library asset with this name already exists")
		}
		return nil, err
	}
	return rows, nil
}

func (r *libraryAssetRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.LibraryAsset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.LibraryAsset
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *libraryAssetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.LibraryAsset, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *libraryAssetRepo) GetByOwner(dbc dbctx.Context, ownerID uuid.UUID, assetTypes []domain.AssetType) ([]*domain.LibraryAsset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Where("owner_id = ?", ownerID)
	if len(assetTypes) > 0 {
		q = q.Where("type IN ?", assetTypes)
	}
	var out []*domain.LibraryAsset
	if err := q.Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *libraryAssetRepo) Update(dbc dbctx.Context, row *domain.LibraryAsset) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.ID == uuid.Nil {
		return domain.ValidationError("library asset id required")
	}
	if err := t.WithContext(dbc.Ctx).Save(row).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ConflictError("library asset with this name already exists")
		}
		return err
	}
	return nil
}

func (r *libraryAssetRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&domain.LibraryAsset{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *libraryAssetRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id IN ?", ids).Delete(&domain.LibraryAsset{}).Error
}
