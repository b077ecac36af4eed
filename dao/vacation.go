package dao

import (
	"aintranet-backend/model"
	"context"
	"time"
)

func (s *Store) ListVacationsByEmployee(ctx context.Context, employeeID uint) ([]model.Vacation, error) {
	var vacations []model.Vacation
	if err := s.DB.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&vacations).Error; err != nil {
		return nil, err
	}
	return vacations, nil
}

// ListVacations status 为空时返回全部
func (s *Store) ListVacations(ctx context.Context, status string) ([]model.Vacation, error) {
	query := s.DB.WithContext(ctx).Preload("Employee")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var vacations []model.Vacation
	if err := query.Order("created_at DESC").Find(&vacations).Error; err != nil {
		return nil, err
	}
	return vacations, nil
}

func (s *Store) CreateVacation(ctx context.Context, vacation *model.Vacation) error {
	return s.DB.WithContext(ctx).Create(vacation).Error
}

// RespondVacation 审批或拒绝，返回是否命中记录
func (s *Store) RespondVacation(ctx context.Context, id uint, status string, approverID uint, comments string) (bool, error) {
	now := time.Now()
	res := s.DB.WithContext(ctx).
		Model(&model.Vacation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":            status,
			"approver_id":       approverID,
			"approver_comments": comments,
			"responded_at":      now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
