package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Unit         UnitRepository
	Resource     ResourceRepository
	Shift        ShiftRepository
	Call         CallRepository
	CameraReview CameraReviewRepository
	Alert        AlertRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Unit:         NewUnitRepo(db),
		Resource:     NewResourceRepo(db),
		Shift:        NewShiftRepo(db),
		Call:         NewCallRepo(db),
		CameraReview: NewCameraReviewRepo(db),
		Alert:        NewAlertRepo(db),
	}
}
