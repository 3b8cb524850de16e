package model

import "time"

// 告警类型
const (
	AlertTypeMissingCall         = "missing_call"
	AlertTypeMissingPhoto        = "missing_photo"
	AlertTypeMissingCameraReview = "missing_camera_review"
	AlertTypeNonConformity       = "non_conformity"
	AlertTypeContract            = "contract_alert" // 虚拟告警，不落库
)

// 告警级别
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// 告警关联实体类型
const (
	RelatedEntityCall         = "call"
	RelatedEntityCameraReview = "camera_review"
	RelatedEntityResource     = "resource"
)

// Alert 告警表 — 对应 alerts
// 同一(shift_id, type, related_entity_id)最多一条未解决记录（部分唯一索引兜底）；
// 已解决的与同键新告警可以并存，代表新一次发生
type Alert struct {
	AlertID           string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"alert_id"`
	ShiftID           string     `gorm:"type:uuid;not null;index"                       json:"shift_id"`
	Type              string     `gorm:"type:varchar(30);not null"                      json:"type"`
	Severity          string     `gorm:"type:varchar(10);not null"                      json:"severity"`
	Title             string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Description       string     `gorm:"type:text"                                      json:"description,omitempty"`
	RelatedEntityType string     `gorm:"type:varchar(20);not null"                      json:"related_entity_type"` // call | camera_review
	RelatedEntityID   string     `gorm:"type:uuid;not null"                             json:"related_entity_id"`
	Resolved          bool       `gorm:"not null;default:false"                         json:"resolved"`
	ResolvedBy        *string    `gorm:"type:uuid"                                      json:"resolved_by,omitempty"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	BaseModel
}

func (Alert) TableName() string { return "alerts" }
