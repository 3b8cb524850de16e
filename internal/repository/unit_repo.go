package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/AlvaritoMP/OpsFlow-sub000/internal/model"
)

// UnitRepository 运营单位数据访问接口
type UnitRepository interface {
	Create(ctx context.Context, unit *model.Unit) error
	GetByID(ctx context.Context, id string) (*model.Unit, error)
	List(ctx context.Context, onlyActive bool) ([]model.Unit, error)
	Update(ctx context.Context, unit *model.Unit) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type unitRepo struct {
	db *gorm.DB
}

func NewUnitRepo(db *gorm.DB) UnitRepository {
	return &unitRepo{db: db}
}

func (r *unitRepo) Create(ctx context.Context, unit *model.Unit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *unitRepo) GetByID(ctx context.Context, id string) (*model.Unit, error) {
	var unit model.Unit
	err := r.db.WithContext(ctx).
		Where("unit_id = ?", id).
		First(&unit).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *unitRepo) List(ctx context.Context, onlyActive bool) ([]model.Unit, error) {
	var units []model.Unit
	q := r.db.WithContext(ctx).Order("name ASC")
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&units).Error
	return units, err
}

func (r *unitRepo) Update(ctx context.Context, unit *model.Unit) error {
	return r.db.WithContext(ctx).Save(unit).Error
}

func (r *unitRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Unit{}).
		Where("unit_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"deleted_by": deletedBy,
		}).Error
}
