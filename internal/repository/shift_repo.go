package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/AlvaritoMP/OpsFlow-sub000/internal/model"
	pkgerrors "github.com/AlvaritoMP/OpsFlow-sub000/pkg/errors"
)

// ShiftFilter 班次列表过滤条件（全部条件取交集）
// DateFrom / DateTo 为日历键（YYYY-MM-DD），闭区间，按字典序比较
type ShiftFilter struct {
	DateFrom     string
	DateTo       string
	UnitID       string
	SupervisorID string
	Status       string
}

// ShiftRepository 班次数据访问接口
type ShiftRepository interface {
	// CreateWithCalls 单事务创建班次及其全部点名记录
	CreateWithCalls(ctx context.Context, shift *model.Shift, calls []model.Call) error
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	// GetDetail 返回带全部子记录的班次
	GetDetail(ctx context.Context, id string) (*model.Shift, error)
	// FindActive 查找同 (日期, 单位, 监督员) 的未删除班次；不存在返回 gorm.ErrRecordNotFound
	FindActive(ctx context.Context, dateKey, unitID, supervisorID string) (*model.Shift, error)
	List(ctx context.Context, filter ShiftFilter, offset, limit int) ([]model.Shift, int64, error)
	// ListRange 历史聚合用：范围内全部班次，预加载点名与摄像头复查
	ListRange(ctx context.Context, dateFrom, dateTo, unitID string) ([]model.Shift, error)
	Update(ctx context.Context, shift *model.Shift) error
	// SetCompletion 持久化派生的完成度与状态；已取消的班次不回写
	SetCompletion(ctx context.Context, shiftID string, pct int, status string) error
	// Delete 级联软删除班次及其点名、摄像头复查，并硬删除其告警
	Delete(ctx context.Context, id string, deletedBy string) error
}

type shiftRepo struct {
	db *gorm.DB
}

func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) CreateWithCalls(ctx context.Context, shift *model.Shift, calls []model.Call) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(shift).Error; err != nil {
			return err
		}
		for i := range calls {
			calls[i].ShiftID = shift.ShiftID
		}
		if len(calls) > 0 {
			if err := tx.Create(&calls).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *shiftRepo) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Preload("Unit").
		Preload("Supervisor").
		Where("shift_id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) GetDetail(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Preload("Unit").
		Preload("Supervisor").
		Preload("Calls", func(db *gorm.DB) *gorm.DB {
			return db.Order("worker_name ASC, call_number ASC")
		}).
		Preload("CameraReviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("review_number ASC")
		}).
		Where("shift_id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) FindActive(ctx context.Context, dateKey, unitID, supervisorID string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Where("date_key = ? AND unit_id = ? AND supervisor_id = ?", dateKey, unitID, supervisorID).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) List(ctx context.Context, filter ShiftFilter, offset, limit int) ([]model.Shift, int64, error) {
	var shifts []model.Shift
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Shift{})
	if filter.DateFrom != "" {
		q = q.Where("date_key >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		q = q.Where("date_key <= ?", filter.DateTo)
	}
	if filter.UnitID != "" {
		q = q.Where("unit_id = ?", filter.UnitID)
	}
	if filter.SupervisorID != "" {
		q = q.Where("supervisor_id = ?", filter.SupervisorID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Unit").Preload("Supervisor").
		Order("date_key DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&shifts).Error
	return shifts, total, err
}

func (r *shiftRepo) ListRange(ctx context.Context, dateFrom, dateTo, unitID string) ([]model.Shift, error) {
	var shifts []model.Shift
	q := r.db.WithContext(ctx).
		Preload("Unit").
		Preload("Calls").
		Preload("CameraReviews").
		Where("date_key >= ? AND date_key <= ?", dateFrom, dateTo)
	if unitID != "" {
		q = q.Where("unit_id = ?", unitID)
	}
	err := q.Order("date_key ASC").Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) Update(ctx context.Context, shift *model.Shift) error {
	oldVersion := shift.Version
	result := r.db.WithContext(ctx).
		Model(shift).
		Where("shift_id = ? AND version = ?", shift.ShiftID, oldVersion).
		Updates(map[string]interface{}{
			"shift_start": shift.ShiftStart,
			"shift_end":   shift.ShiftEnd,
			"status":      shift.Status,
			"notes":       shift.Notes,
			"updated_by":  shift.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	shift.Version = oldVersion + 1
	return nil
}

func (r *shiftRepo) SetCompletion(ctx context.Context, shiftID string, pct int, status string) error {
	// 取消可能发生在重算的读与写之间，谓词兜底：已取消的班次状态不回写
	return r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("shift_id = ? AND status <> ?", shiftID, model.ShiftStatusCancelada).
		Updates(map[string]interface{}{
			"completion_pct": pct,
			"status":         status,
		}).Error
}

func (r *shiftRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	now := gorm.Expr("CURRENT_TIMESTAMP")
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Call{}).
			Where("shift_id = ?", id).
			Updates(map[string]interface{}{"deleted_at": now, "deleted_by": deletedBy}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.CameraReview{}).
			Where("shift_id = ?", id).
			Updates(map[string]interface{}{"deleted_at": now, "deleted_by": deletedBy}).Error; err != nil {
			return err
		}
		// 告警没有软删除语义，随班次一起物理删除
		if err := tx.Where("shift_id = ?", id).
			Delete(&model.Alert{}).Error; err != nil {
			return err
		}
		result := tx.Model(&model.Shift{}).
			Where("shift_id = ?", id).
			Updates(map[string]interface{}{"deleted_at": now, "deleted_by": deletedBy})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
