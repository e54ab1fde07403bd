package assets

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dlopezkluever/wizardirector/internal/domain"
	"github.com/dlopezkluever/wizardirector/internal/platform/dbctx"
	"github.com/dlopezkluever/wizardirector/internal/platform/logger"
)

// LinkFilter narrows project/branch listings by linkage state.
type LinkFilter string

const (
	LinkAny      LinkFilter = "any"
	LinkLinked   LinkFilter = "linked"
	LinkUnlinked LinkFilter = "unlinked"
)

type LocalAssetRepo interface {
	Create(dbc dbctx.Context, rows []*domain.LocalAsset) ([]*domain.LocalAsset, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.LocalAsset, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.LocalAsset, error)
	GetByProjectBranch(dbc dbctx.Context, projectID, branchID uuid.UUID, filter LinkFilter) ([]*domain.LocalAsset, error)
	GetBySourceAssetIDs(dbc dbctx.Context, sourceIDs []uuid.UUID) ([]*domain.LocalAsset, error)

	Update(dbc dbctx.Context, row *domain.LocalAsset) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error

	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type localAssetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLocalAssetRepo(db *gorm.DB, baseLog *logger.Logger) LocalAssetRepo {
	return &localAssetRepo{db: db, log: baseLog.With("repo", "LocalAssetRepo")}
}

func (r *localAssetRepo) Create(dbc dbctx.Context, rows []*domain.LocalAsset) ([]*domain.LocalAsset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*domain.LocalAsset{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *localAssetRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.LocalAsset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.LocalAsset
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *localAssetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.LocalAsset, error) {
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

func (r *localAssetRepo) GetByProjectBranch(dbc dbctx.Context, projectID, branchID uuid.UUID, filter LinkFilter) ([]*domain.LocalAsset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Where("project_id = ? AND branch_id = ?", projectID, branchID)
	switch filter {
	case LinkLinked:
		q = q.Where("source_asset_id IS NOT NULL")
	case LinkUnlinked:
		q = q.Where("source_asset_id IS NULL")
	}
	var out []*domain.LocalAsset
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *localAssetRepo) GetBySourceAssetIDs(dbc dbctx.Context, sourceIDs []uuid.UUID) ([]*domain.LocalAsset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.LocalAsset
	if len(sourceIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("source_asset_id IN ?", sourceIDs).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *localAssetRepo) Update(dbc dbctx.Context, row *domain.LocalAsset) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.ID == uuid.Nil {
		return domain.ValidationError("local asset id required")
	}
	return t.WithContext(dbc.Ctx).Save(row).Error
}

func (r *localAssetRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&domain.LocalAsset{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *localAssetRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id IN ?", ids).Delete(&domain.LocalAsset{}).Error
}
