package model

import "time"

const (
	TicketOpen       = "abierto"
	TicketInProgress = "en_proceso"
	TicketResolved   = "resuelto"
	TicketClosed     = "cerrado"
)

var (
	TicketStatuses   = []string{TicketOpen, TicketInProgress, TicketResolved, TicketClosed}
	TicketCategories = []string{"ti", "rrhh", "mantenimiento", "administrativo", "otro"}
	TicketPriorities = []string{"baja", "media", "alta", "urgente"}
)

type Ticket struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time  `json:"fecha_creacion"`
	UpdatedAt   time.Time  `json:"fecha_actualizacion"`
	Title       string     `gorm:"size:255;not null" json:"titulo"`
	Description string     `gorm:"type:text;not null" json:"descripcion"`
	Category    string     `gorm:"size:32;not null" json:"categoria"`
	Priority    string     `gorm:"size:16;not null" json:"prioridad"`
	Status      string     `gorm:"size:16;not null;index" json:"estado"`
	RequesterID uint       `gorm:"not null;index" json:"solicitante_id"`
	Requester   *User      `gorm:"foreignKey:RequesterID" json:"solicitante,omitempty"`
	AssigneeID  *uint      `json:"asignado_a"`
	Assignee    *User      `gorm:"foreignKey:AssigneeID" json:"asignado,omitempty"`
	ResolvedAt  *time.Time `json:"fecha_resolucion,omitempty"`
}

func (Ticket) TableName() string {
	return "tickets"
}
