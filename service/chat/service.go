package chat

import (
	"aintranet-backend/config"
	"aintranet-backend/model"
	"aintranet-backend/service/llm"
	"aintranet-backend/service/tools"
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	summaryHistoryLimit = 200
	sessionStatsLimit   = 10
)

// Service 聊天助手的对外入口
type Service struct {
	store     *Store
	formatter *Formatter
	registry  *tools.Registry
	gateway   llm.Gateway
	cfg       config.ChatConfig

	// 按会话 ID 串行化请求，仅在 SerializeSessions 开启时使用
	locks sync.Map
}

func NewService(store *Store, registry *tools.Registry, gateway llm.Gateway, cfg config.ChatConfig) *Service {
	cfg = cfg.WithDefaults()
	return &Service{
		store:     store,
		formatter: NewFormatter(cfg),
		registry:  registry,
		gateway:   gateway,
		cfg:       cfg,
	}
}

type Reply struct {
	Response   string `json:"response"`
	SessionKey string `json:"session_id"`
}

type turnOptions struct {
	observer Observer
}

type TurnOption func(*turnOptions)

func WithObserver(o Observer) TurnOption {
	return func(opts *turnOptions) {
		if o != nil {
			opts.observer = o
		}
	}
}

// HandleChatMessage 处理一条用户消息并返回助手的最终回复
func (s *Service) HandleChatMessage(ctx context.Context, caller tools.Caller, text string, opts ...TurnOption) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	options := turnOptions{observer: SimpleObserver{}}
	for _, opt := range opts {
		opt(&options)
	}

	session, err := s.store.GetOrCreateActiveSession(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	if s.cfg.SerializeSessions {
		unlock := s.lockSession(session.ID)
		defer unlock()
	}

	if _, err := s.store.AppendTurn(ctx, session.ID, model.RoleUser, text, nil, nil); err != nil {
		return nil, err
	}

	if _, err := s.store.RepairIncompleteToolSequences(ctx, session.ID); err != nil {
		return nil, err
	}

	history, err := s.store.GetHistory(ctx, session.ID, s.cfg.HistoryLimit)
	if err != nil {
		return nil, err
	}

	system, err := BuildSystemPrompt(caller, s.registry.Names(caller.Role))
	if err != nil {
		return nil, err
	}

	t := &turn{
		session:  session,
		caller:   caller,
		observer: options.observer,
		messages: s.formatter.Build(system, history, text),
		specs:    s.toolSpecs(caller.Role),
	}

	answer, err := s.runLoop(ctx, t)
	if err != nil {
		slog.Error("Chat turn aborted",
			"session_id", session.ID,
			"user_id", caller.UserID,
			"err", err)
		return nil, err
	}

	if _, err := s.store.AppendTurn(ctx, session.ID, model.RoleAssistant, answer, nil, nil); err != nil {
		return nil, err
	}
	options.observer.HandleFinalAnswer(ctx, answer)

	return &Reply{
		Response:   answer,
		SessionKey: session.SessionKey,
	}, nil
}

func (s *Service) lockSession(sessionID uint) func() {
	v, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) toolSpecs(role string) []llm.ToolSpec {
	ops := s.registry.ListAvailableOperations(role)
	specs := make([]llm.ToolSpec, 0, len(ops))
	for _, op := range ops {
		specs = append(specs, llm.ToolSpec{
			Name:        op.Name,
			Description: op.Description,
			Parameters:  op.Parameters.Map(),
		})
	}
	return specs
}

func (s *Service) StartNewSession(ctx context.Context, userID uint) (*model.ChatSession, error) {
	return s.store.StartNewSession(ctx, userID)
}

type HistoryEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type History struct {
	SessionKey string         `json:"session_id,omitempty"`
	Messages   []HistoryEntry `json:"messages"`
}

// History 返回活跃会话中用户可见的消息，不含工具调用过程
func (s *Service) History(ctx context.Context, userID uint) (*History, error) {
	history := &History{Messages: []HistoryEntry{}}

	session, err := s.store.ActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return history, nil
	}
	history.SessionKey = session.SessionKey

	if _, err := s.store.RepairIncompleteToolSequences(ctx, session.ID); err != nil {
		return nil, err
	}

	turns, err := s.store.GetHistory(ctx, session.ID, DefaultHistoryLimit)
	if err != nil {
		return nil, err
	}

	for _, msg := range turns {
		if msg.Role != model.RoleUser && msg.Role != model.RoleAssistant {
			continue
		}
		if msg.Role == model.RoleAssistant && len(msg.ToolCalls) > 0 && msg.Content == "" {
			continue
		}
		history.Messages = append(history.Messages, HistoryEntry{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.CreatedAt,
		})
	}
	return history, nil
}

// ClearHistory 清空活跃会话的消息，返回会话标识
func (s *Service) ClearHistory(ctx context.Context, userID uint) (string, error) {
	session, err := s.store.ActiveSession(ctx, userID)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", ErrNoActiveSession
	}

	if err := s.store.ClearHistory(ctx, session.ID); err != nil {
		return "", err
	}
	slog.Info("Cleared chat history", "session_id", session.ID, "user_id", userID)
	return session.SessionKey, nil
}

type SessionStatus struct {
	SessionKey   string `json:"session_id"`
	MessageCount int64  `json:"message_count"`
	Active       bool   `json:"active"`
}

type Status struct {
	LLM     llm.Info       `json:"llm_config"`
	Session *SessionStatus `json:"session"`
}

func (s *Service) Status(ctx context.Context, userID uint) (*Status, error) {
	status := &Status{LLM: s.gateway.Info()}

	session, err := s.store.ActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return status, nil
	}

	count, err := s.store.CountTurns(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	status.Session = &SessionStatus{
		SessionKey:   session.SessionKey,
		MessageCount: count,
		Active:       session.Active,
	}
	return status, nil
}

type Summary struct {
	Active            bool         `json:"active"`
	Message           string       `json:"message,omitempty"`
	SessionKey        string       `json:"session_id,omitempty"`
	Started           *time.Time   `json:"started,omitempty"`
	LastMessage       *time.Time   `json:"last_message,omitempty"`
	TotalMessages     int          `json:"total_messages"`
	UserMessages      int          `json:"user_messages"`
	AssistantMessages int          `json:"assistant_messages"`
	SystemMessages    int          `json:"system_messages"`
	EstimatedTokens   int          `json:"estimated_tokens"`
	ActionsExecuted   []ActionStat `json:"actions_executed"`
}

// SessionSummary 统计活跃会话的消息构成、估算 token 数与工具执行情况
func (s *Service) SessionSummary(ctx context.Context, userID uint) (*Summary, error) {
	session, err := s.store.ActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return &Summary{Message: "No hay sesión activa"}, nil
	}

	turns, err := s.store.GetHistory(ctx, session.ID, summaryHistoryLimit)
	if err != nil {
		return nil, err
	}

	actions, err := s.store.ActionStats(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Active:          true,
		SessionKey:      session.SessionKey,
		Started:         &session.CreatedAt,
		LastMessage:     &session.LastMessageAt,
		TotalMessages:   len(turns),
		EstimatedTokens: s.formatter.EstimateTokens(s.formatter.Format("", turns)),
		ActionsExecuted: actions,
	}
	for _, msg := range turns {
		switch msg.Role {
		case model.RoleUser:
			summary.UserMessages++
		case model.RoleAssistant:
			summary.AssistantMessages++
		case model.RoleSystem:
			summary.SystemMessages++
		}
	}
	return summary, nil
}

// SessionStats 用户最近的会话列表
func (s *Service) SessionStats(ctx context.Context, userID uint) ([]SessionInfo, error) {
	return s.store.ListSessions(ctx, userID, sessionStatsLimit)
}

type ToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Tools 角色可用的工具目录
func (s *Service) Tools(role string) []ToolInfo {
	specs := s.toolSpecs(role)
	infos := make([]ToolInfo, 0, len(specs))
	for _, spec := range specs {
		infos = append(infos, ToolInfo(spec))
	}
	return infos
}
