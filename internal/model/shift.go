package model

import "time"

// 班次状态
const (
	ShiftStatusEnCurso    = "en_curso"
	ShiftStatusCompletada = "completada"
	ShiftStatusIncompleta = "incompleta"
	ShiftStatusCancelada  = "cancelada"
)

// CallsPerWorker 每名夜班员工的固定点名次数
const CallsPerWorker = 3

// ReviewSlots 每个班次的摄像头复查槽位数
const ReviewSlots = 3

// Shift 夜间监督班次表 — 对应 shifts
// 日期保存为日历键字符串（YYYY-MM-DD），不做时区换算，比较按字典序
type Shift struct {
	ShiftID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	DateKey       string `gorm:"column:date_key;type:varchar(10);not null"      json:"date"`
	UnitID        string `gorm:"type:uuid;not null"                             json:"unit_id"`
	SupervisorID  string `gorm:"type:uuid;not null"                             json:"supervisor_id"`
	ShiftStart    string `gorm:"type:varchar(5);not null"                       json:"shift_start"` // HH:MM
	ShiftEnd      string `gorm:"type:varchar(5);not null"                       json:"shift_end"`
	Status        string `gorm:"type:varchar(20);not null;default:'en_curso'"   json:"status"` // en_curso | completada | incompleta | cancelada
	CompletionPct int    `gorm:"column:completion_pct;not null;default:0"       json:"completion_percentage"`
	Notes         string `gorm:"type:text"                                      json:"notes,omitempty"`
	VersionedModel

	// 关联
	Unit          *Unit          `gorm:"foreignKey:UnitID;references:UnitID"       json:"unit,omitempty"`
	Supervisor    *User          `gorm:"foreignKey:SupervisorID;references:UserID" json:"supervisor,omitempty"`
	Calls         []Call         `gorm:"foreignKey:ShiftID"                        json:"calls,omitempty"`
	CameraReviews []CameraReview `gorm:"foreignKey:ShiftID"                        json:"camera_reviews,omitempty"`
}

func (Shift) TableName() string { return "shifts" }

// Call 点名电话表 — 对应 calls
// 每名夜班员工每班固定三次；(shift_id, worker_id, call_number) 唯一
type Call struct {
	CallID            string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"call_id"`
	ShiftID           string     `gorm:"type:uuid;not null;index"                       json:"shift_id"`
	WorkerID          string     `gorm:"type:uuid;not null"                             json:"worker_id"`
	WorkerName        string     `gorm:"type:varchar(150);not null"                     json:"worker_name"` // 冗余快照
	WorkerPhone       string     `gorm:"type:varchar(30)"                               json:"worker_phone,omitempty"`
	CallNumber        int        `gorm:"type:smallint;not null"                         json:"call_number"` // 1 | 2 | 3
	ScheduledTime     string     `gorm:"type:varchar(5);not null"                       json:"scheduled_time"`
	ActualTime        *time.Time `json:"actual_time,omitempty"`
	Answered          bool       `gorm:"not null;default:false"                         json:"answered"`
	PhotoReceived     bool       `gorm:"not null;default:false"                         json:"photo_received"`
	PhotoURL          string     `gorm:"type:text"                                      json:"photo_url,omitempty"`
	OnRest            bool       `gorm:"not null;default:false"                         json:"on_rest"`
	Notes             string     `gorm:"type:text"                                      json:"notes,omitempty"`
	NonConformity     bool       `gorm:"not null;default:false"                         json:"non_conformity"`
	NonConformityDesc string     `gorm:"column:non_conformity_desc;type:text"           json:"non_conformity_description,omitempty"`
	VersionedModel

	// 关联
	Worker *Resource `gorm:"foreignKey:WorkerID;references:ResourceID" json:"worker,omitempty"`
}

func (Call) TableName() string { return "calls" }

// CameraReview 摄像头复查表 — 对应 camera_reviews
// 槽位按 review_number（当夜第 1/2/3 次）识别，惰性创建、按槽位 upsert
type CameraReview struct {
	ReviewID          string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"review_id"`
	ShiftID           string      `gorm:"type:uuid;not null;index"                       json:"shift_id"`
	ReviewNumber      int         `gorm:"type:smallint;not null"                         json:"review_number"` // 1 | 2 | 3
	ScheduledTime     string      `gorm:"type:varchar(5);not null"                       json:"scheduled_time"`
	ActualTime        *time.Time  `json:"actual_time,omitempty"`
	ScreenshotURL     string      `gorm:"type:text"                                      json:"screenshot_url,omitempty"`
	CamerasReviewed   StringArray `gorm:"type:text[]"                                    json:"cameras_reviewed,omitempty"`
	Notes             string      `gorm:"type:text"                                      json:"notes,omitempty"`
	NonConformity     bool        `gorm:"not null;default:false"                         json:"non_conformity"`
	NonConformityDesc string      `gorm:"column:non_conformity_desc;type:text"           json:"non_conformity_description,omitempty"`
	VersionedModel
}

func (CameraReview) TableName() string { return "camera_reviews" }
