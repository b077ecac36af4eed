package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// 会话消息角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// ChatSession 每个用户同一时间至多一个活跃会话
type ChatSession struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	UserID        uint           `gorm:"not null;index:idx_user_active" json:"user_id"`
	SessionKey    string         `gorm:"size:64;not null;uniqueIndex" json:"session_key"`
	Active        bool           `gorm:"not null;index:idx_user_active" json:"active"`
	LastMessageAt time.Time      `json:"last_message_at"`
	Metadata      datatypes.JSON `json:"metadata"`
}

func (ChatSession) TableName() string {
	return "chatbot_session"
}

// ChatMessage 追加写入，按 ID 顺序即为时间顺序
type ChatMessage struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	SessionID uint           `gorm:"not null;index" json:"session_id"`
	Role      string         `gorm:"size:16;not null" json:"role"`
	Content   string         `gorm:"type:mediumtext;not null" json:"content"`
	ToolCalls datatypes.JSON `json:"tool_calls"`
	Metadata  datatypes.JSON `json:"metadata"`
}

func (ChatMessage) TableName() string {
	return "chatbot_message"
}

// ToolCall 由模型生成的工具调用请求，ID 原样回传
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// MessageMetadata tool 消息携带的来源调用信息
type MessageMetadata struct {
	ToolCallID string `json:"tool_call_id,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`
}

func (m *ChatMessage) DecodeToolCalls() ([]ToolCall, error) {
	if len(m.ToolCalls) == 0 || string(m.ToolCalls) == "null" {
		return nil, nil
	}
	var calls []ToolCall
	if err := json.Unmarshal(m.ToolCalls, &calls); err != nil {
		return nil, err
	}
	return calls, nil
}

func (m *ChatMessage) DecodeMetadata() (MessageMetadata, error) {
	var meta MessageMetadata
	if len(m.Metadata) == 0 || string(m.Metadata) == "null" {
		return meta, nil
	}
	err := json.Unmarshal(m.Metadata, &meta)
	return meta, err
}

// ChatAction 工具执行审计记录，不回放给模型
type ChatAction struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	SessionID    uint           `gorm:"not null;index" json:"session_id"`
	MessageID    uint           `gorm:"index" json:"message_id"`
	ActionType   string         `gorm:"size:64;not null;index" json:"action_type"`
	ActionParams datatypes.JSON `json:"action_params"`
	ActionResult datatypes.JSON `json:"action_result"`
	Success      bool           `gorm:"not null" json:"success"`
	ErrorMessage string         `gorm:"type:text" json:"error_message"`
	DurationMs   int64          `json:"duration_ms"`
}

func (ChatAction) TableName() string {
	return "chatbot_action"
}
