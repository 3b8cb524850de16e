package model

// 人员资源状态
const (
	ResourceStatusActivo     = "activo"
	ResourceStatusArchivado  = "archivado"
	ResourceStatusFiniquitado = "finiquitado"
)

// Resource 人员资源表 — 对应 resources
// 被监督的一线员工；夜班资格由 shift_label 与配置的同义词匹配决定
type Resource struct {
	ResourceID        string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"resource_id"`
	UnitID            string  `gorm:"type:uuid;not null;index"                       json:"unit_id"`
	FullName          string  `gorm:"type:varchar(150);not null"                     json:"full_name"`
	Phone             string  `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	ShiftLabel        string  `gorm:"type:varchar(50)"                               json:"shift_label,omitempty"`
	Status            string  `gorm:"type:varchar(20);not null;default:'activo'"     json:"status"` // activo | archivado | finiquitado
	InTraining        bool    `gorm:"not null;default:false"                         json:"in_training"`
	TrainingStartDate *string `gorm:"type:varchar(10)"                               json:"training_start_date,omitempty"` // 日历键 YYYY-MM-DD
	ContractGenerated bool    `gorm:"not null;default:false"                         json:"contract_generated"`
	SoftDeleteModel

	// 关联
	Unit *Unit `gorm:"foreignKey:UnitID;references:UnitID" json:"unit,omitempty"`
}

func (Resource) TableName() string { return "resources" }
