package model

import "time"

const (
	VacationPending   = "pendiente"
	VacationApproved  = "aprobada"
	VacationRejected  = "rechazada"
	VacationCancelled = "cancelada"
)

var (
	VacationStatuses = []string{VacationPending, VacationApproved, VacationRejected, VacationCancelled}
	VacationTypes    = []string{"vacaciones", "permiso", "licencia_medica", "otro"}
)

type Vacation struct {
	ID               uint       `gorm:"primarykey" json:"id"`
	CreatedAt        time.Time  `json:"fecha_solicitud"`
	UpdatedAt        time.Time  `json:"-"`
	EmployeeID       uint       `gorm:"not null;index" json:"empleado_id"`
	Employee         *Employee  `gorm:"foreignKey:EmployeeID" json:"empleado,omitempty"`
	StartDate        time.Time  `gorm:"type:date;not null" json:"fecha_inicio"`
	EndDate          time.Time  `gorm:"type:date;not null" json:"fecha_fin"`
	Days             int        `gorm:"not null" json:"dias_solicitados"`
	Type             string     `gorm:"size:32;not null" json:"tipo"`
	Reason           string     `gorm:"type:text" json:"motivo"`
	Status           string     `gorm:"size:16;not null;index" json:"estado"`
	ApproverID       *uint      `json:"aprobador_id"`
	Approver         *User      `gorm:"foreignKey:ApproverID" json:"aprobador,omitempty"`
	ApproverComments string     `gorm:"type:text" json:"comentarios_aprobador"`
	RespondedAt      *time.Time `json:"fecha_respuesta,omitempty"`
}

func (Vacation) TableName() string {
	return "vacaciones"
}
