package chat

import (
	"aintranet-backend/config"
	"aintranet-backend/dao"
	"aintranet-backend/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// DefaultHistoryLimit 未指定条数时读取的最近消息数
	DefaultHistoryLimit = 50

	truncationMarker = "\n\n[... contenido truncado por longitud ...]"
)

// Store 会话与消息的持久化，每次调用都带有独立的超时
type Store struct {
	DB  *gorm.DB
	cfg config.ChatConfig
}

func NewStore(db *gorm.DB, cfg config.ChatConfig) *Store {
	if db == nil {
		db = dao.DB
	}
	return &Store{
		DB:  db,
		cfg: cfg.WithDefaults(),
	}
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, s.cfg.PersistTimeout)
}

// ActiveSession 返回用户最近活跃的会话，不存在时返回 (nil, nil)
func (s *Store) ActiveSession(ctx context.Context, userID uint) (*model.ChatSession, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var session model.ChatSession
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("last_message_at DESC").
		Order("id DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	return &session, nil
}

func (s *Store) GetOrCreateActiveSession(ctx context.Context, userID uint) (*model.ChatSession, error) {
	session, err := s.ActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session != nil {
		return session, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return createSession(s.DB.WithContext(ctx), userID)
}

// StartNewSession 停用用户当前的会话并创建新会话
func (s *Store) StartNewSession(ctx context.Context, userID uint) (*model.ChatSession, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var session *model.ChatSession
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ChatSession{}).
			Where("user_id = ? AND active = ?", userID, true).
			Update("active", false).Error; err != nil {
			return err
		}

		var err error
		session, err = createSession(tx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start new session: %w", err)
	}

	slog.Info("Started new chat session", "user_id", userID, "session_key", session.SessionKey)
	return session, nil
}

func createSession(db *gorm.DB, userID uint) (*model.ChatSession, error) {
	session := &model.ChatSession{
		UserID:        userID,
		SessionKey:    uuid.NewString(),
		Active:        true,
		LastMessageAt: time.Now(),
	}
	if err := db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// AppendTurn 追加一条消息并刷新会话的最后活跃时间，返回消息 ID
func (s *Store) AppendTurn(ctx context.Context, sessionID uint, role, content string,
	toolCalls []model.ToolCall, metadata *model.MessageMetadata) (uint, error) {
	role, err := NormalizeRole(role)
	if err != nil {
		return 0, err
	}

	msg := model.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   s.truncate(content),
	}
	if len(toolCalls) > 0 {
		data, err := json.Marshal(toolCalls)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal tool calls: %w", err)
		}
		msg.ToolCalls = datatypes.JSON(data)
	}
	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		msg.Metadata = datatypes.JSON(data)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.ChatSession{}).
			Where("id = ?", sessionID).
			Update("last_message_at", msg.CreatedAt).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to append %s turn: %w", role, err)
	}
	return msg.ID, nil
}

// truncate 超长内容按字符截断并追加标记
func (s *Store) truncate(content string) string {
	limit := s.cfg.MaxContentLength
	if utf8.RuneCountInString(content) <= limit {
		return content
	}
	return string([]rune(content)[:limit]) + truncationMarker
}

// GetHistory 返回最近 limit 条消息，按写入顺序升序排列
func (s *Store) GetHistory(ctx context.Context, sessionID uint, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var turns []model.ChatMessage
	err := s.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id DESC").
		Limit(limit).
		Find(&turns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	slices.Reverse(turns)
	return turns, nil
}

// RepairIncompleteToolSequences 删除缺少工具结果的 assistant 消息及其部分结果，返回删除条数
func (s *Store) RepairIncompleteToolSequences(ctx context.Context, sessionID uint) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var turns []model.ChatMessage
	err := s.DB.WithContext(ctx).
		Select("id", "role", "tool_calls", "metadata").
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&turns).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load turns for repair: %w", err)
	}

	items := make([]sequenceItem, len(turns))
	for i := range turns {
		items[i] = turnItem(&turns[i])
	}

	indexes := incompleteToolSequences(items, false)
	if len(indexes) == 0 {
		return 0, nil
	}

	ids := make([]uint, 0, len(indexes))
	for _, i := range indexes {
		ids = append(ids, turns[i].ID)
	}

	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Delete(&model.ChatMessage{}).Error; err != nil {
		return 0, fmt.Errorf("failed to delete incomplete turns: %w", err)
	}

	slog.Warn("Removed incomplete tool call sequences",
		"session_id", sessionID,
		"message_ids", ids)
	return len(ids), nil
}

func turnItem(turn *model.ChatMessage) sequenceItem {
	item := sequenceItem{role: turn.Role}
	switch turn.Role {
	case model.RoleAssistant:
		calls, err := turn.DecodeToolCalls()
		if err != nil {
			slog.Warn("Failed to decode tool calls", "message_id", turn.ID, "err", err)
		}
		item.callIDs = callIDs(calls)
	case model.RoleTool:
		meta, err := turn.DecodeMetadata()
		if err != nil {
			slog.Warn("Failed to decode metadata", "message_id", turn.ID, "err", err)
		}
		item.toolCallID = meta.ToolCallID
	}
	return item
}

// ClearHistory 删除会话的消息与执行记录，会话保持活跃
func (s *Store) ClearHistory(ctx context.Context, sessionID uint) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&model.ChatMessage{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		if err := tx.Where("session_id = ?", sessionID).Delete(&model.ChatAction{}).Error; err != nil {
			return fmt.Errorf("failed to delete actions: %w", err)
		}
		return nil
	})
}

func (s *Store) RecordAction(ctx context.Context, action *model.ChatAction) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.DB.WithContext(ctx).Create(action).Error; err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}
	return nil
}

func (s *Store) CountTurns(ctx context.Context, sessionID uint) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var count int64
	err := s.DB.WithContext(ctx).
		Model(&model.ChatMessage{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

// ActionStat 按工具名聚合的执行统计
type ActionStat struct {
	Type       string `json:"type"`
	Count      int64  `json:"count"`
	Successful int64  `json:"successful"`
}

func (s *Store) ActionStats(ctx context.Context, sessionID uint) ([]ActionStat, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	stats := []ActionStat{}
	err := s.DB.WithContext(ctx).
		Model(&model.ChatAction{}).
		Select("action_type AS type, COUNT(*) AS count, " +
			"SUM(CASE WHEN success THEN 1 ELSE 0 END) AS successful").
		Where("session_id = ?", sessionID).
		Group("action_type").
		Order("action_type").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get action stats: %w", err)
	}
	return stats, nil
}

// SessionInfo 会话列表中的一项
type SessionInfo struct {
	SessionKey    string    `json:"session_id"`
	Started       time.Time `json:"started"`
	LastMessageAt time.Time `json:"last_message"`
	Active        bool      `json:"active"`
	MessageCount  int64     `json:"message_count"`
}

// ListSessions 返回用户最近创建的 limit 个会话及其消息数
func (s *Store) ListSessions(ctx context.Context, userID uint, limit int) ([]SessionInfo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var sessions []model.ChatSession
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	infos := make([]SessionInfo, 0, len(sessions))
	if len(sessions) == 0 {
		return infos, nil
	}

	ids := make([]uint, 0, len(sessions))
	for _, session := range sessions {
		ids = append(ids, session.ID)
	}

	var counts []struct {
		SessionID uint
		Count     int64
	}
	err = s.DB.WithContext(ctx).
		Model(&model.ChatMessage{}).
		Select("session_id, COUNT(*) AS count").
		Where("session_id IN ?", ids).
		Group("session_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count session messages: %w", err)
	}

	countBySession := make(map[uint]int64, len(counts))
	for _, c := range counts {
		countBySession[c.SessionID] = c.Count
	}

	for _, session := range sessions {
		infos = append(infos, SessionInfo{
			SessionKey:    session.SessionKey,
			Started:       session.CreatedAt,
			LastMessageAt: session.LastMessageAt,
			Active:        session.Active,
			MessageCount:  countBySession[session.ID],
		})
	}
	return infos, nil
}
