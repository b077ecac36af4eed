package tools

import (
	"aintranet-backend/model"
	"context"
)

// Repository 工具所需的数据访问，查询不到时返回 (nil, nil)
type Repository interface {
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	UserExists(ctx context.Context, username, email string) (bool, error)
	CreateUser(ctx context.Context, user *model.User) error

	ListEmployees(ctx context.Context) ([]model.Employee, error)
	SearchEmployees(ctx context.Context, term string) ([]model.Employee, error)
	GetEmployeeByUserID(ctx context.Context, userID uint) (*model.Employee, error)
	ListDepartments(ctx context.Context) ([]model.Department, error)

	ListDocuments(ctx context.Context, category string) ([]model.Document, error)
	ListActiveAnnouncements(ctx context.Context, limit int) ([]model.Announcement, error)
	CreateAnnouncement(ctx context.Context, announcement *model.Announcement) error

	ListVacationsByEmployee(ctx context.Context, employeeID uint) ([]model.Vacation, error)
	ListVacations(ctx context.Context, status string) ([]model.Vacation, error)
	CreateVacation(ctx context.Context, vacation *model.Vacation) error
	RespondVacation(ctx context.Context, id uint, status string, approverID uint, comments string) (bool, error)

	ListTicketsByRequester(ctx context.Context, userID uint) ([]model.Ticket, error)
	ListTickets(ctx context.Context, status string) ([]model.Ticket, error)
	GetTicketByID(ctx context.Context, id uint) (*model.Ticket, error)
	CreateTicket(ctx context.Context, ticket *model.Ticket) error
	UpdateTicketStatus(ctx context.Context, id uint, status string, assigneeID *uint) (bool, error)

	GetCollectionsDashboard(ctx context.Context) (*model.CollectionsDashboard, error)
	GetClientByCode(ctx context.Context, code string) (*model.Client, error)
	ListMLResults(ctx context.Context, clientCode string, limit int) ([]model.MLClientResult, error)
	ListReports(ctx context.Context) ([]model.PowerBIReport, error)
	GetReportByID(ctx context.Context, id uint) (*model.PowerBIReport, error)

	GetSystemStats(ctx context.Context) (*model.SystemStats, error)
}

// ReportCapturer 报表截图，返回 base64
type ReportCapturer interface {
	Enabled() bool
	Capture(ctx context.Context, embedURL string) (string, error)
}
