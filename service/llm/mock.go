package llm

import (
	"aintranet-backend/config"
	"aintranet-backend/model"
	"context"
	"fmt"
)

// MockGateway 开发模式下的本地回显，不发起网络请求
type MockGateway struct {
	cfg config.LLMConfig
}

func NewMockGateway(cfg config.LLMConfig) *MockGateway {
	return &MockGateway{cfg: cfg}
}

func (g *MockGateway) Info() Info {
	return Info{
		Provider:   g.cfg.Provider,
		Model:      g.cfg.Model,
		APIBase:    g.cfg.APIBase,
		Configured: false,
		Mode:       ModeDevelopment,
	}
}

func (g *MockGateway) Complete(_ context.Context, messages []Message, _ []ToolSpec, _ string) (*Response, error) {
	var last string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == model.RoleUser {
			last = messages[i].Content
			break
		}
	}
	return &Response{
		Content: fmt.Sprintf("Respuesta simulada para: \"%s\". Este es el modo de desarrollo. Configura LLM_API_KEY para usar un LLM real.", last),
	}, nil
}
