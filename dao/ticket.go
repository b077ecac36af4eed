package dao

import (
	"aintranet-backend/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

func (s *Store) ListTicketsByRequester(ctx context.Context, userID uint) ([]model.Ticket, error) {
	var tickets []model.Ticket
	if err := s.DB.WithContext(ctx).
		Where("requester_id = ?", userID).
		Order("created_at DESC").
		Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

// ListTickets status 为空时返回全部
func (s *Store) ListTickets(ctx context.Context, status string) ([]model.Ticket, error) {
	query := s.DB.WithContext(ctx).Preload("Requester").Preload("Assignee")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var tickets []model.Ticket
	if err := query.Order("created_at DESC").Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (s *Store) GetTicketByID(ctx context.Context, id uint) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := s.DB.WithContext(ctx).First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

func (s *Store) CreateTicket(ctx context.Context, ticket *model.Ticket) error {
	return s.DB.WithContext(ctx).Create(ticket).Error
}

// UpdateTicketStatus assigneeID 非空时同时改派，返回是否命中记录
func (s *Store) UpdateTicketStatus(ctx context.Context, id uint, status string, assigneeID *uint) (bool, error) {
	updates := map[string]any{"status": status}
	if assigneeID != nil {
		updates["assignee_id"] = *assigneeID
	}
	if status == model.TicketResolved || status == model.TicketClosed {
		updates["resolved_at"] = time.Now()
	}

	res := s.DB.WithContext(ctx).
		Model(&model.Ticket{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
