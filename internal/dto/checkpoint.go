package dto

import "time"

// ── 检查点（点名电话 / 摄像头复查）模块 DTO ──

// CreateCallRequest 临时加点请求（计划外点名）
type CreateCallRequest struct {
	WorkerID      string `json:"worker_id"      binding:"required,uuid"`
	CallNumber    int    `json:"call_number"    binding:"required,min=1,max=3"`
	ScheduledTime string `json:"scheduled_time" binding:"required"` // "HH:MM"
	OnRest        bool   `json:"on_rest"`
	Notes         string `json:"notes"          binding:"omitempty,max=2000"`
}

// UpdateCallRequest 点名结果回填请求（patch 语义，nil 字段不动）
type UpdateCallRequest struct {
	ActualTime               *time.Time `json:"actual_time"`
	Answered                 *bool      `json:"answered"`
	PhotoReceived            *bool      `json:"photo_received"`
	PhotoURL                 *string    `json:"photo_url"`
	OnRest                   *bool      `json:"on_rest"`
	Notes                    *string    `json:"notes" binding:"omitempty,max=2000"`
	NonConformity            *bool      `json:"non_conformity"`
	NonConformityDescription *string    `json:"non_conformity_description" binding:"omitempty,max=2000"`
}

// CallResponse 点名记录响应
type CallResponse struct {
	ID                       string     `json:"id"`
	ShiftID                  string     `json:"shift_id"`
	WorkerID                 string     `json:"worker_id"`
	WorkerName               string     `json:"worker_name"`
	WorkerPhone              string     `json:"worker_phone,omitempty"`
	CallNumber               int        `json:"call_number"`
	ScheduledTime            string     `json:"scheduled_time"`
	ActualTime               *time.Time `json:"actual_time,omitempty"`
	Answered                 bool       `json:"answered"`
	PhotoReceived            bool       `json:"photo_received"`
	PhotoURL                 string     `json:"photo_url,omitempty"`
	OnRest                   bool       `json:"on_rest"`
	Notes                    string     `json:"notes,omitempty"`
	NonConformity            bool       `json:"non_conformity"`
	NonConformityDescription string     `json:"non_conformity_description,omitempty"`
}

// UpsertCameraReviewRequest 摄像头复查槽位写入请求
// 同一槽位重复提交时就地更新；ScreenshotURL 为 nil 时保留已有截图
type UpsertCameraReviewRequest struct {
	ActualTime               *time.Time `json:"actual_time"`
	ScreenshotURL            *string    `json:"screenshot_url"`
	CamerasReviewed          []string   `json:"cameras_reviewed"`
	Notes                    *string    `json:"notes" binding:"omitempty,max=2000"`
	NonConformity            *bool      `json:"non_conformity"`
	NonConformityDescription *string    `json:"non_conformity_description" binding:"omitempty,max=2000"`
}

// CameraReviewResponse 摄像头复查响应
type CameraReviewResponse struct {
	ID                       string     `json:"id"`
	ShiftID                  string     `json:"shift_id"`
	ReviewNumber             int        `json:"review_number"`
	ScheduledTime            string     `json:"scheduled_time"`
	ActualTime               *time.Time `json:"actual_time,omitempty"`
	ScreenshotURL            string     `json:"screenshot_url,omitempty"`
	CamerasReviewed          []string   `json:"cameras_reviewed,omitempty"`
	Notes                    string     `json:"notes,omitempty"`
	NonConformity            bool       `json:"non_conformity"`
	NonConformityDescription string     `json:"non_conformity_description,omitempty"`
}
