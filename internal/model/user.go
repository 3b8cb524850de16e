package model

// 系统角色
const (
	RoleAdmin       = "admin"
	RoleOperaciones = "operaciones"
	RoleSupervisor  = "supervisor"
)

// User 系统用户表 — 对应 users
// 监督员通过系统用户登录；人员资源（Resource）是被监督的员工，二者分开建模
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Role         string `gorm:"type:varchar(20);not null;default:'supervisor'" json:"role"` // admin | operaciones | supervisor
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
