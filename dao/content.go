package dao

import (
	"aintranet-backend/model"
	"context"
	"time"
)

// ListDocuments category 为空时返回全部分类
func (s *Store) ListDocuments(ctx context.Context, category string) ([]model.Document, error) {
	query := s.DB.WithContext(ctx).Where("active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var documents []model.Document
	if err := query.Order("created_at DESC").Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

// ListActiveAnnouncements 未过期的有效公告
func (s *Store) ListActiveAnnouncements(ctx context.Context, limit int) ([]model.Announcement, error) {
	var announcements []model.Announcement
	if err := s.DB.WithContext(ctx).
		Where("active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Order("created_at DESC").
		Limit(limit).
		Find(&announcements).Error; err != nil {
		return nil, err
	}
	return announcements, nil
}

func (s *Store) CreateAnnouncement(ctx context.Context, announcement *model.Announcement) error {
	return s.DB.WithContext(ctx).Create(announcement).Error
}
