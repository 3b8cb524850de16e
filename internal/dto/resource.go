package dto

// ── 人员资源模块 DTO ──

// CreateResourceRequest 创建人员请求
type CreateResourceRequest struct {
	UnitID            string  `json:"unit_id"             binding:"required,uuid"`
	FullName          string  `json:"full_name"           binding:"required,min=2,max=150"`
	Phone             string  `json:"phone"               binding:"omitempty,max=30"`
	ShiftLabel        string  `json:"shift_label"         binding:"omitempty,max=50"`
	InTraining        bool    `json:"in_training"`
	TrainingStartDate *string `json:"training_start_date"` // 日历键 YYYY-MM-DD
}

// UpdateResourceRequest 更新人员请求
type UpdateResourceRequest struct {
	FullName          *string `json:"full_name"           binding:"omitempty,min=2,max=150"`
	Phone             *string `json:"phone"               binding:"omitempty,max=30"`
	ShiftLabel        *string `json:"shift_label"         binding:"omitempty,max=50"`
	Status            *string `json:"status"              binding:"omitempty,oneof=activo archivado finiquitado"`
	InTraining        *bool   `json:"in_training"`
	TrainingStartDate *string `json:"training_start_date"`
}

// ResourceResponse 人员信息响应
type ResourceResponse struct {
	ID                string  `json:"id"`
	UnitID            string  `json:"unit_id"`
	UnitName          string  `json:"unit_name,omitempty"`
	FullName          string  `json:"full_name"`
	Phone             string  `json:"phone,omitempty"`
	ShiftLabel        string  `json:"shift_label,omitempty"`
	Status            string  `json:"status"`
	InTraining        bool    `json:"in_training"`
	TrainingStartDate *string `json:"training_start_date,omitempty"`
	ContractGenerated bool    `json:"contract_generated"`
}

// NightWorkerResponse 夜班员工目录条目（创建班次时取数）
type NightWorkerResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Phone             string  `json:"phone,omitempty"`
	InTraining        bool    `json:"in_training"`
	TrainingStartDate *string `json:"training_start_date,omitempty"`
	ContractGenerated bool    `json:"contract_generated"`
}
