package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/AlvaritoMP/OpsFlow-sub000/internal/model"
)

// AlertRepository 告警数据访问接口
type AlertRepository interface {
	Create(ctx context.Context, alert *model.Alert) error
	GetByID(ctx context.Context, id string) (*model.Alert, error)
	ListByShift(ctx context.Context, shiftID string, onlyOpen bool) ([]model.Alert, error)
	// FindOpen 查找同 (shift, type, related_entity) 的未解决告警
	FindOpen(ctx context.Context, shiftID, alertType, relatedEntityID string) (*model.Alert, error)
	// Resolve 将告警标记为已解决
	Resolve(ctx context.Context, id string, resolvedBy string, resolvedAt time.Time) error
}

type alertRepo struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) AlertRepository {
	return &alertRepo{db: db}
}

func (r *alertRepo) Create(ctx context.Context, alert *model.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *alertRepo) GetByID(ctx context.Context, id string) (*model.Alert, error) {
	var alert model.Alert
	err := r.db.WithContext(ctx).
		Where("alert_id = ?", id).
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepo) ListByShift(ctx context.Context, shiftID string, onlyOpen bool) ([]model.Alert, error) {
	var alerts []model.Alert
	q := r.db.WithContext(ctx).
		Where("shift_id = ?", shiftID).
		Order("created_at DESC")
	if onlyOpen {
		q = q.Where("resolved = ?", false)
	}
	err := q.Find(&alerts).Error
	return alerts, err
}

func (r *alertRepo) FindOpen(ctx context.Context, shiftID, alertType, relatedEntityID string) (*model.Alert, error) {
	var alert model.Alert
	err := r.db.WithContext(ctx).
		Where("shift_id = ? AND type = ? AND related_entity_id = ? AND resolved = ?",
			shiftID, alertType, relatedEntityID, false).
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepo) Resolve(ctx context.Context, id string, resolvedBy string, resolvedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Alert{}).
		Where("alert_id = ?", id).
		Updates(map[string]interface{}{
			"resolved":    true,
			"resolved_by": resolvedBy,
			"resolved_at": resolvedAt,
		}).Error
}
