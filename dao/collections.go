package dao

import (
	"aintranet-backend/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// GetCollectionsDashboard 汇总未结清发票
func (s *Store) GetCollectionsDashboard(ctx context.Context) (*model.CollectionsDashboard, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var dashboard model.CollectionsDashboard
	err := s.DB.WithContext(ctx).
		Model(&model.Invoice{}).
		Select(`COUNT(DISTINCT client_id) AS clients_with_balance,
			COUNT(id) AS pending_invoices,
			COALESCE(SUM(CASE WHEN status = ? OR due_date < ? THEN 1 ELSE 0 END), 0) AS overdue_invoices,
			COALESCE(SUM(balance), 0) AS portfolio_total,
			COALESCE(SUM(CASE WHEN status = ? OR due_date < ? THEN balance ELSE 0 END), 0) AS portfolio_overdue`,
			model.InvoiceOverdue, today, model.InvoiceOverdue, today).
		Where("status IN ?", []string{model.InvoicePending, model.InvoicePartial, model.InvoiceOverdue}).
		Scan(&dashboard).Error
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *Store) GetClientByCode(ctx context.Context, code string) (*model.Client, error) {
	var client model.Client
	if err := s.DB.WithContext(ctx).
		Where("code = ?", code).
		First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

// ListMLResults 客户最近的模型评分
func (s *Store) ListMLResults(ctx context.Context, clientCode string, limit int) ([]model.MLClientResult, error) {
	var results []model.MLClientResult
	if err := s.DB.WithContext(ctx).
		Where("client_code = ?", clientCode).
		Order("executed_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) ListReports(ctx context.Context) ([]model.PowerBIReport, error) {
	var reports []model.PowerBIReport
	if err := s.DB.WithContext(ctx).
		Where("active = ?", true).
		Order("title").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *Store) GetReportByID(ctx context.Context, id uint) (*model.PowerBIReport, error) {
	var report model.PowerBIReport
	if err := s.DB.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}
