package model

import "time"

// 用户角色
const (
	RoleAdmin    = "admin"
	RoleEmployee = "empleado"
	RoleHR       = "rrhh"
	RoleSupport  = "soporte"
)

var UserRoles = []string{RoleAdmin, RoleEmployee, RoleHR, RoleSupport}

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"fecha_creacion"`
	UpdatedAt    time.Time `json:"-"`
	Username     string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Email        string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	FullName     string    `gorm:"size:128;not null" json:"nombre_completo"`
	Role         string    `gorm:"size:16;not null;default:empleado" json:"rol"`
	Active       bool      `gorm:"not null" json:"activo"`
}

func (User) TableName() string {
	return "usuarios"
}

type Department struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `gorm:"size:128;not null" json:"nombre"`
	Description string `gorm:"type:text" json:"descripcion"`
	Active      bool   `gorm:"not null" json:"activo"`
}

func (Department) TableName() string {
	return "departamentos"
}

// Employee 通过 UserID 与登录用户关联，可为空
type Employee struct {
	ID           uint        `gorm:"primarykey" json:"id"`
	UserID       *uint       `gorm:"uniqueIndex" json:"usuario_id"`
	FirstName    string      `gorm:"size:64;not null" json:"nombre"`
	LastName     string      `gorm:"size:64;not null" json:"apellido"`
	Email        string      `gorm:"size:128" json:"email"`
	Phone        string      `gorm:"size:32" json:"telefono"`
	Position     string      `gorm:"size:128" json:"cargo"`
	DepartmentID *uint       `json:"departamento_id"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"departamento,omitempty"`
	HireDate     *time.Time  `gorm:"type:date" json:"fecha_ingreso,omitempty"`
	Active       bool        `gorm:"not null" json:"activo"`
}

func (Employee) TableName() string {
	return "empleados"
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}
