package model

import "time"

var (
	DocumentCategories     = []string{"politicas", "procedimientos", "manuales", "formularios", "otros"}
	AnnouncementTypes      = []string{"general", "urgente", "evento", "comunicado"}
	AnnouncementPriorities = []string{"baja", "media", "alta"}
)

type Document struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"fecha_subida"`
	Title       string    `gorm:"size:255;not null" json:"titulo"`
	Description string    `gorm:"type:text" json:"descripcion"`
	Category    string    `gorm:"size:32;not null;index" json:"categoria"`
	FileName    string    `gorm:"size:255" json:"nombre_archivo"`
	UploadedBy  *uint     `json:"subido_por"`
	Uploader    *User     `gorm:"foreignKey:UploadedBy" json:"subido_por_usuario,omitempty"`
	Active      bool      `gorm:"not null" json:"activo"`
}

func (Document) TableName() string {
	return "documentos"
}

type Announcement struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	CreatedAt time.Time  `json:"fecha_publicacion"`
	Title     string     `gorm:"size:255;not null" json:"titulo"`
	Content   string     `gorm:"type:text;not null" json:"contenido"`
	Type      string     `gorm:"size:16;not null" json:"tipo"`
	Priority  string     `gorm:"size:16;not null" json:"prioridad"`
	AuthorID  uint       `gorm:"not null" json:"autor_id"`
	Author    *User      `gorm:"foreignKey:AuthorID" json:"autor,omitempty"`
	Active    bool       `gorm:"not null;index" json:"activo"`
	ExpiresAt *time.Time `json:"fecha_expiracion,omitempty"`
}

func (Announcement) TableName() string {
	return "anuncios"
}
