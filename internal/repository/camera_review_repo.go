package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/AlvaritoMP/OpsFlow-sub000/internal/model"
	pkgerrors "github.com/AlvaritoMP/OpsFlow-sub000/pkg/errors"
)

// CameraReviewRepository 摄像头复查数据访问接口
// 槽位按 (shift_id, review_number) 识别；没有删除路径——槽位只能通过
// upsert 修正，或随班次级联删除
type CameraReviewRepository interface {
	Create(ctx context.Context, review *model.CameraReview) error
	GetByID(ctx context.Context, id string) (*model.CameraReview, error)
	// FindBySlot 按 (shift_id, review_number) 查找；不存在返回 gorm.ErrRecordNotFound
	FindBySlot(ctx context.Context, shiftID string, reviewNumber int) (*model.CameraReview, error)
	ListByShift(ctx context.Context, shiftID string) ([]model.CameraReview, error)
	Update(ctx context.Context, review *model.CameraReview) error
}

type cameraReviewRepo struct {
	db *gorm.DB
}

func NewCameraReviewRepo(db *gorm.DB) CameraReviewRepository {
	return &cameraReviewRepo{db: db}
}

func (r *cameraReviewRepo) Create(ctx context.Context, review *model.CameraReview) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *cameraReviewRepo) GetByID(ctx context.Context, id string) (*model.CameraReview, error) {
	var review model.CameraReview
	err := r.db.WithContext(ctx).
		Where("review_id = ?", id).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *cameraReviewRepo) FindBySlot(ctx context.Context, shiftID string, reviewNumber int) (*model.CameraReview, error) {
	var review model.CameraReview
	err := r.db.WithContext(ctx).
		Where("shift_id = ? AND review_number = ?", shiftID, reviewNumber).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *cameraReviewRepo) ListByShift(ctx context.Context, shiftID string) ([]model.CameraReview, error) {
	var reviews []model.CameraReview
	err := r.db.WithContext(ctx).
		Where("shift_id = ?", shiftID).
		Order("review_number ASC").
		Find(&reviews).Error
	return reviews, err
}

func (r *cameraReviewRepo) Update(ctx context.Context, review *model.CameraReview) error {
	oldVersion := review.Version
	result := r.db.WithContext(ctx).
		Model(review).
		Where("review_id = ? AND version = ?", review.ReviewID, oldVersion).
		Updates(map[string]interface{}{
			"actual_time":         review.ActualTime,
			"screenshot_url":      review.ScreenshotURL,
			"cameras_reviewed":    review.CamerasReviewed,
			"notes":               review.Notes,
			"non_conformity":      review.NonConformity,
			"non_conformity_desc": review.NonConformityDesc,
			"updated_by":          review.UpdatedBy,
			"version":             oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	review.Version = oldVersion + 1
	return nil
}
