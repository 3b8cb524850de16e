package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/AlvaritoMP/OpsFlow-sub000/internal/model"
	pkgerrors "github.com/AlvaritoMP/OpsFlow-sub000/pkg/errors"
)

// CallRepository 点名电话数据访问接口
type CallRepository interface {
	Create(ctx context.Context, call *model.Call) error
	GetByID(ctx context.Context, id string) (*model.Call, error)
	ListByShift(ctx context.Context, shiftID string) ([]model.Call, error)
	// FindBySlot 按 (shift_id, worker_id, call_number) 查找
	FindBySlot(ctx context.Context, shiftID, workerID string, callNumber int) (*model.Call, error)
	Update(ctx context.Context, call *model.Call) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type callRepo struct {
	db *gorm.DB
}

func NewCallRepo(db *gorm.DB) CallRepository {
	return &callRepo{db: db}
}

func (r *callRepo) Create(ctx context.Context, call *model.Call) error {
	return r.db.WithContext(ctx).Create(call).Error
}

func (r *callRepo) GetByID(ctx context.Context, id string) (*model.Call, error) {
	var call model.Call
	err := r.db.WithContext(ctx).
		Where("call_id = ?", id).
		First(&call).Error
	if err != nil {
		return nil, err
	}
	return &call, nil
}

func (r *callRepo) ListByShift(ctx context.Context, shiftID string) ([]model.Call, error) {
	var calls []model.Call
	err := r.db.WithContext(ctx).
		Where("shift_id = ?", shiftID).
		Order("worker_name ASC, call_number ASC").
		Find(&calls).Error
	return calls, err
}

func (r *callRepo) FindBySlot(ctx context.Context, shiftID, workerID string, callNumber int) (*model.Call, error) {
	var call model.Call
	err := r.db.WithContext(ctx).
		Where("shift_id = ? AND worker_id = ? AND call_number = ?", shiftID, workerID, callNumber).
		First(&call).Error
	if err != nil {
		return nil, err
	}
	return &call, nil
}

func (r *callRepo) Update(ctx context.Context, call *model.Call) error {
	oldVersion := call.Version
	result := r.db.WithContext(ctx).
		Model(call).
		Where("call_id = ? AND version = ?", call.CallID, oldVersion).
		Updates(map[string]interface{}{
			"actual_time":         call.ActualTime,
			"answered":            call.Answered,
			"photo_received":      call.PhotoReceived,
			"photo_url":           call.PhotoURL,
			"on_rest":             call.OnRest,
			"notes":               call.Notes,
			"non_conformity":      call.NonConformity,
			"non_conformity_desc": call.NonConformityDesc,
			"updated_by":          call.UpdatedBy,
			"version":             oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	call.Version = oldVersion + 1
	return nil
}

func (r *callRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Call{}).
		Where("call_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"deleted_by": deletedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
