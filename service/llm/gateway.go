package llm

import (
	"aintranet-backend/config"
	"aintranet-backend/model"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	ToolChoiceAuto = "auto"

	ModeProduction  = "production"
	ModeDevelopment = "development"
)

var ErrGateway = errors.New("llm gateway request failed")

// Message 发送给模型的一条消息，Role 取 model.Role* 常量
type Message struct {
	Role       string
	Content    string
	ToolCalls  []model.ToolCall
	ToolCallID string
	// Name tool 消息对应的工具名
	Name string
	// Images base64 编码的 PNG，仅 user 消息使用
	Images []string
}

type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

type Response struct {
	Content   string
	ToolCalls []model.ToolCall
}

// Info 供状态接口展示
type Info struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	APIBase    string `json:"api_base"`
	Configured bool   `json:"api_configured"`
	Mode       string `json:"mode"`
}

type Gateway interface {
	Complete(ctx context.Context, messages []Message, tools []ToolSpec, toolChoice string) (*Response, error)
	Info() Info
}

// Error 网关调用失败，errors.Is(err, ErrGateway) 恒成立
type Error struct {
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("llm request failed with status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("llm request failed: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrGateway
}

// New 未配置 API Key 时返回本地模拟网关
func New(cfg config.LLMConfig) (Gateway, error) {
	cfg = cfg.WithDefaults()
	if !cfg.Configured() {
		slog.Warn("LLM_API_KEY not configured, using mock gateway")
		return NewMockGateway(cfg), nil
	}

	switch strings.ToLower(cfg.Provider) {
	case "compatible":
		return NewCompatibleGateway(cfg)
	case "openai", "":
		return NewOpenAIGateway(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// IsReasoningModel gpt-5.1 系列使用 verbosity/reasoning_effort 参数，不支持 temperature
func IsReasoningModel(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "gpt-5.1") || strings.Contains(name, "gpt-5-1")
}

func imageDataURL(b64 string) string {
	return "data:image/png;base64," + b64
}
