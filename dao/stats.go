package dao

import (
	"aintranet-backend/model"
	"context"
)

func (s *Store) GetSystemStats(ctx context.Context) (*model.SystemStats, error) {
	db := s.DB.WithContext(ctx)
	var stats model.SystemStats

	counts := []struct {
		dst   *int64
		model any
		where string
		args  []any
	}{
		{&stats.Users, &model.User{}, "active = ?", []any{true}},
		{&stats.Employees, &model.Employee{}, "active = ?", []any{true}},
		{&stats.Documents, &model.Document{}, "active = ?", []any{true}},
		{&stats.OpenTickets, &model.Ticket{}, "status IN ?", []any{[]string{model.TicketOpen, model.TicketInProgress}}},
		{&stats.PendingVacations, &model.Vacation{}, "status = ?", []any{model.VacationPending}},
		{&stats.ActiveAnnouncements, &model.Announcement{}, "active = ?", []any{true}},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Where(c.where, c.args...).Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return &stats, nil
}
