package model

// Unit 运营单位表 — 对应 units
type Unit struct {
	UnitID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"unit_id"`
	Name        string `gorm:"type:varchar(150);not null"                     json:"name"`
	Address     string `gorm:"type:varchar(300)"                              json:"address,omitempty"`
	CameraCount int    `gorm:"not null;default:0"                             json:"camera_count"`
	IsActive    bool   `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel
}

func (Unit) TableName() string { return "units" }
