package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	InvoicePending = "pendiente"
	InvoicePartial = "parcial"
	InvoicePaid    = "pagada"
	InvoiceOverdue = "vencida"
)

// Client 应收账款客户
type Client struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	Code         string  `gorm:"size:32;not null;uniqueIndex" json:"codigo"`
	BusinessName string  `gorm:"size:255;not null" json:"razon_social"`
	TaxID        string  `gorm:"size:32" json:"rut"`
	Segment      string  `gorm:"size:64" json:"segmento"`
	CreditLimit  float64 `json:"limite_credito"`
	Active       bool    `gorm:"not null" json:"activo"`
}

func (Client) TableName() string {
	return "clientes"
}

type Invoice struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ClientID  uint      `gorm:"not null;index" json:"cliente_id"`
	Number    string    `gorm:"size:32;not null" json:"numero_factura"`
	IssueDate time.Time `gorm:"type:date" json:"fecha_emision"`
	DueDate   time.Time `gorm:"type:date;index" json:"fecha_vencimiento"`
	Amount    float64   `json:"monto_total"`
	Balance   float64   `json:"saldo_pendiente"`
	Status    string    `gorm:"size:16;not null;index" json:"estado"`
}

func (Invoice) TableName() string {
	return "facturas"
}

// CollectionsDashboard 应收账款总览
type CollectionsDashboard struct {
	ClientsWithBalance int64   `json:"total_clientes_con_saldo"`
	PendingInvoices    int64   `json:"total_facturas_pendientes"`
	OverdueInvoices    int64   `json:"facturas_vencidas"`
	PortfolioTotal     float64 `json:"cartera_total"`
	PortfolioOverdue   float64 `json:"cartera_vencida"`
}

// MLClientResult 预先计算好的模型评分，只读展示
type MLClientResult struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	ClientCode  string         `gorm:"size:32;not null;index" json:"cliente_codigo"`
	ModelName   string         `gorm:"size:128;not null" json:"modelo_nombre"`
	ModelType   string         `gorm:"size:64" json:"tipo_modelo"`
	Algorithm   string         `gorm:"size:64" json:"algoritmo"`
	Score       float64        `json:"score"`
	Probability float64        `json:"probabilidad"`
	RiskLevel   string         `gorm:"size:16" json:"nivel_riesgo"`
	Prediction  string         `gorm:"size:64" json:"prediccion"`
	Features    datatypes.JSON `json:"variables,omitempty"`
	ExecutedAt  time.Time      `gorm:"index" json:"fecha_ejecucion"`
}

func (MLClientResult) TableName() string {
	return "ml_resultados_cliente"
}

// PowerBIReport 嵌入式报表，AvailableFilters 记录可用筛选字段
type PowerBIReport struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	CreatedAt        time.Time      `json:"fecha_creacion"`
	Title            string         `gorm:"size:255;not null" json:"titulo"`
	Description      string         `gorm:"type:text" json:"descripcion"`
	EmbedURL         string         `gorm:"type:text;not null" json:"embed_url"`
	Category         string         `gorm:"size:64" json:"categoria"`
	EmbedType        string         `gorm:"size:16;not null" json:"embed_type"`
	AvailableFilters datatypes.JSON `json:"available_filters,omitempty"`
	CreatedBy        uint           `json:"creado_por"`
	Active           bool           `gorm:"not null" json:"activo"`
}

func (PowerBIReport) TableName() string {
	return "powerbi_reports"
}

// SystemStats 管理员统计
type SystemStats struct {
	Users               int64 `json:"total_usuarios"`
	Employees           int64 `json:"total_empleados"`
	Documents           int64 `json:"total_documentos"`
	OpenTickets         int64 `json:"tickets_abiertos"`
	PendingVacations    int64 `json:"vacaciones_pendientes"`
	ActiveAnnouncements int64 `json:"anuncios_activos"`
}
