package response

import (
	"aintranet-backend/service/chat"
	"aintranet-backend/service/llm"
)

type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type SessionResponse struct {
	Message   string `json:"message,omitempty"`
	SessionID string `json:"session_id"`
}

type UserInfo struct {
	Name string `json:"nombre"`
	Role string `json:"rol"`
}

type StatusResponse struct {
	LLMConfig llm.Info            `json:"llm_config"`
	Session   *chat.SessionStatus `json:"session"`
	User      UserInfo            `json:"user"`
}

type SessionSummaryResponse struct {
	Summary *chat.Summary `json:"summary"`
}

type SessionStatsResponse struct {
	TotalSessions int                `json:"total_sessions"`
	Sessions      []chat.SessionInfo `json:"sessions"`
}

type ToolsResponse struct {
	Role  string          `json:"rol"`
	Tools []chat.ToolInfo `json:"tools"`
}
