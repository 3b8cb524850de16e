package dto

// ── 班次模块 DTO ──

// CreateShiftRequest 创建班次请求
// SupervisorID 省略时默认为当前登录用户
type CreateShiftRequest struct {
	Date         string `json:"date"          binding:"required"` // "2025-03-10"
	UnitID       string `json:"unit_id"       binding:"required,uuid"`
	SupervisorID string `json:"supervisor_id" binding:"omitempty,uuid"`
	ShiftStart   string `json:"shift_start"   binding:"required"` // "22:00"
	ShiftEnd     string `json:"shift_end"     binding:"required"` // "07:00"
	Notes        string `json:"notes"         binding:"omitempty,max=2000"`
	// RestWorkerIDs 当晚休息的员工：不为其物化点名
	RestWorkerIDs []string `json:"rest_worker_ids" binding:"omitempty,dive,uuid"`
}

// ShiftListRequest 班次列表过滤请求
type ShiftListRequest struct {
	DateFrom     string `form:"date_from"     binding:"required"`
	DateTo       string `form:"date_to"       binding:"required"`
	UnitID       string `form:"unit_id"       binding:"omitempty,uuid"`
	SupervisorID string `form:"supervisor_id" binding:"omitempty,uuid"`
	Status       string `form:"status"        binding:"omitempty,oneof=en_curso completada incompleta cancelada"`
	PaginationRequest
}

// ShiftResponse 班次信息响应
type ShiftResponse struct {
	ID                   string `json:"id"`
	Date                 string `json:"date"`
	UnitID               string `json:"unit_id"`
	UnitName             string `json:"unit_name,omitempty"`
	SupervisorID         string `json:"supervisor_id"`
	SupervisorName       string `json:"supervisor_name,omitempty"`
	ShiftStart           string `json:"shift_start"`
	ShiftEnd             string `json:"shift_end"`
	Status               string `json:"status"`
	CompletionPercentage int    `json:"completion_percentage"`
	Notes                string `json:"notes,omitempty"`
	CreatedAt            string `json:"created_at"`
}

// ShiftDetailResponse 班次详情（含子记录与告警）
type ShiftDetailResponse struct {
	ShiftResponse
	Calls         []CallResponse         `json:"calls"`
	CameraReviews []CameraReviewResponse `json:"camera_reviews"`
	Alerts        []AlertResponse        `json:"alerts"`
}
