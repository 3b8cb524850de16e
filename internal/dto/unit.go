package dto

// ── 运营单位模块 DTO ──

// CreateUnitRequest 创建单位请求
type CreateUnitRequest struct {
	Name        string `json:"name"         binding:"required,min=2,max=150"`
	Address     string `json:"address"      binding:"omitempty,max=300"`
	CameraCount int    `json:"camera_count" binding:"omitempty,min=0"`
}

// UpdateUnitRequest 更新单位请求
type UpdateUnitRequest struct {
	Name        *string `json:"name"         binding:"omitempty,min=2,max=150"`
	Address     *string `json:"address"      binding:"omitempty,max=300"`
	CameraCount *int    `json:"camera_count" binding:"omitempty,min=0"`
	IsActive    *bool   `json:"is_active"`
}

// UnitResponse 单位信息响应
type UnitResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address,omitempty"`
	CameraCount int    `json:"camera_count"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
}
