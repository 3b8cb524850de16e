package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/AlvaritoMP/OpsFlow-sub000/internal/model"
)

// ResourceRepository 人员资源数据访问接口
type ResourceRepository interface {
	Create(ctx context.Context, res *model.Resource) error
	GetByID(ctx context.Context, id string) (*model.Resource, error)
	ListByUnit(ctx context.Context, unitID string, onlyActive bool) ([]model.Resource, error)
	// ListInTraining 列出培训中且未生成合同的在职人员（合同预警扫描用）
	ListInTraining(ctx context.Context) ([]model.Resource, error)
	Update(ctx context.Context, res *model.Resource) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type resourceRepo struct {
	db *gorm.DB
}

func NewResourceRepo(db *gorm.DB) ResourceRepository {
	return &resourceRepo{db: db}
}

func (r *resourceRepo) Create(ctx context.Context, res *model.Resource) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *resourceRepo) GetByID(ctx context.Context, id string) (*model.Resource, error) {
	var res model.Resource
	err := r.db.WithContext(ctx).
		Preload("Unit").
		Where("resource_id = ?", id).
		First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *resourceRepo) ListByUnit(ctx context.Context, unitID string, onlyActive bool) ([]model.Resource, error) {
	var resources []model.Resource
	q := r.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("full_name ASC")
	if onlyActive {
		q = q.Where("status = ?", model.ResourceStatusActivo)
	}
	err := q.Find(&resources).Error
	return resources, err
}

func (r *resourceRepo) ListInTraining(ctx context.Context) ([]model.Resource, error) {
	var resources []model.Resource
	err := r.db.WithContext(ctx).
		Preload("Unit").
		Where("status = ?", model.ResourceStatusActivo).
		Where("in_training = ?", true).
		Where("contract_generated = ?", false).
		Where("training_start_date IS NOT NULL").
		Find(&resources).Error
	return resources, err
}

func (r *resourceRepo) Update(ctx context.Context, res *model.Resource) error {
	return r.db.WithContext(ctx).Save(res).Error
}

func (r *resourceRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Resource{}).
		Where("resource_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"deleted_by": deletedBy,
		}).Error
}
