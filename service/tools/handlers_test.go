package tools

import (
	"aintranet-backend/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// limitRepo 记录传入的 limit，其余方法未实现
type limitRepo struct {
	Repository
	limits []int
}

func (r *limitRepo) ListActiveAnnouncements(_ context.Context, limit int) ([]model.Announcement, error) {
	r.limits = append(r.limits, limit)
	return nil, nil
}

func (r *limitRepo) GetClientByCode(_ context.Context, code string) (*model.Client, error) {
	return &model.Client{Code: code}, nil
}

func (r *limitRepo) ListMLResults(_ context.Context, _ string, limit int) ([]model.MLClientResult, error) {
	r.limits = append(r.limits, limit)
	return nil, nil
}

// 处理函数本身也校验角色，不依赖 Execute 的前置检查
func TestBackOfficeHandlersCheckRole(t *testing.T) {
	r := &Registry{}
	ctx := context.Background()
	caller := Caller{UserID: 1, Role: model.RoleEmployee}

	tests := []struct {
		name    string
		call    func() Result
		wantErr string
	}{
		{"get_collections_dashboard", func() Result {
			return r.getCollectionsDashboard(ctx, caller, noArgs{})
		}, deniedCollections},
		{"get_client_ml_scores", func() Result {
			return r.getClientMLScores(ctx, caller, mlScoresArgs{ClientCode: "C001"})
		}, deniedCollections},
		{"list_reports", func() Result {
			return r.listReports(ctx, caller, noArgs{})
		}, deniedReports},
		{"analyze_report", func() Result {
			return r.analyzeReport(ctx, caller, analyzeReportArgs{ReportID: 1})
		}, deniedReports},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res Result
			require.NotPanics(t, func() { res = tt.call() })
			assert.False(t, res.Success)
			assert.Equal(t, tt.wantErr, res.Error)
		})
	}
}

func TestLimitsAreCapped(t *testing.T) {
	repo := &limitRepo{}
	r := &Registry{repo: repo}
	ctx := context.Background()
	hr := Caller{UserID: 2, Role: model.RoleHR}

	require.True(t, r.getAnnouncements(ctx, hr, announcementsArgs{Limit: 10000}).Success)
	require.True(t, r.getAnnouncements(ctx, hr, announcementsArgs{}).Success)
	require.True(t, r.getClientMLScores(ctx, hr, mlScoresArgs{ClientCode: "C001", Limit: 10000}).Success)
	require.True(t, r.getClientMLScores(ctx, hr, mlScoresArgs{ClientCode: "C001", Limit: 2}).Success)

	assert.Equal(t, []int{maxAnnouncements, defaultAnnouncements, maxMLResults, 2}, repo.limits)
}
