package dto

import "time"

// ── 告警模块 DTO ──

// AlertResponse 告警响应
type AlertResponse struct {
	ID                string     `json:"id"`
	ShiftID           string     `json:"shift_id"`
	Type              string     `json:"type"`
	Severity          string     `json:"severity"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	RelatedEntityType string     `json:"related_entity_type"`
	RelatedEntityID   string     `json:"related_entity_id"`
	Resolved          bool       `json:"resolved"`
	ResolvedBy        string     `json:"resolved_by,omitempty"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	CreatedAt         string     `json:"created_at"`
}

// ContractAlertResponse 合同预警（虚拟告警，读时计算，不落库）
// AlertDate 锚定在跨越阈值那一天（培训开始 + 阈值天数），不随查询日漂移
type ContractAlertResponse struct {
	ResourceID        string `json:"resource_id"`
	ResourceName      string `json:"resource_name"`
	UnitID            string `json:"unit_id"`
	UnitName          string `json:"unit_name,omitempty"`
	TrainingStartDate string `json:"training_start_date"`
	DaysInTraining    int    `json:"days_in_training"`
	AlertDate         string `json:"alert_date"`
	Severity          string `json:"severity"`
}
