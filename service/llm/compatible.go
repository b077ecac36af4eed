package llm

import (
	"aintranet-backend/config"
	"aintranet-backend/model"
	"aintranet-backend/utils"
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// CompatibleGateway 通过 langchaingo 访问 OpenAI 兼容接口（DashScope、DeepSeek、本地服务等）
// 只使用 temperature/max_tokens 参数
type CompatibleGateway struct {
	llm llms.Model
	cfg config.LLMConfig
}

func NewCompatibleGateway(cfg config.LLMConfig) (*CompatibleGateway, error) {
	cfg = cfg.WithDefaults()
	llm, err := openai.New(
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
		openai.WithBaseURL(cfg.APIBase),
		openai.WithHTTPClient(utils.NewHTTPClient(utils.WithTimeout(cfg.Timeout))),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}
	return NewCompatibleGatewayWithModel(llm, cfg), nil
}

func NewCompatibleGatewayWithModel(llm llms.Model, cfg config.LLMConfig) *CompatibleGateway {
	return &CompatibleGateway{llm: llm, cfg: cfg.WithDefaults()}
}

func (g *CompatibleGateway) Info() Info {
	return Info{
		Provider:   "compatible",
		Model:      g.cfg.Model,
		APIBase:    g.cfg.APIBase,
		Configured: true,
		Mode:       ModeProduction,
	}
}

func (g *CompatibleGateway) Complete(ctx context.Context, messages []Message, tools []ToolSpec, toolChoice string) (*Response, error) {
	content, err := toMessageContents(messages)
	if err != nil {
		return nil, &Error{Err: err}
	}

	opts := []llms.CallOption{
		llms.WithTemperature(g.cfg.TemperatureValue()),
		llms.WithMaxTokens(g.cfg.MaxTokens),
	}
	if len(tools) > 0 {
		if toolChoice == "" {
			toolChoice = ToolChoiceAuto
		}
		opts = append(opts, llms.WithTools(toLLMTools(tools)), llms.WithToolChoice(toolChoice))
	}

	resp, err := g.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		return nil, &Error{Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Err: errors.New("response contains no choices")}
	}

	choice := resp.Choices[0]
	out := &Response{Content: choice.Content}
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		out.ToolCalls = append(out.ToolCalls, model.ToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: model.ToolCallFunction{
				Name:      tc.FunctionCall.Name,
				Arguments: tc.FunctionCall.Arguments,
			},
		})
	}
	return out, nil
}

func toMessageContents(messages []Message) ([]llms.MessageContent, error) {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case model.RoleSystem:
			out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		case model.RoleUser:
			msg := llms.TextParts(llms.ChatMessageTypeHuman, m.Content)
			for _, img := range m.Images {
				msg.Parts = append(msg.Parts, llms.ImageURLContent{URL: imageDataURL(img), Detail: "high"})
			}
			out = append(out, msg)
		case model.RoleAssistant:
			msg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
			if m.Content != "" || len(m.ToolCalls) == 0 {
				msg.Parts = append(msg.Parts, llms.TextContent{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				msg.Parts = append(msg.Parts, llms.ToolCall{
					ID:   tc.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				})
			}
			out = append(out, msg)
		case model.RoleTool:
			out = append(out, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: m.ToolCallID,
					Name:       m.Name,
					Content:    m.Content,
				}},
			})
		default:
			return nil, fmt.Errorf("unsupported message role %q", m.Role)
		}
	}
	return out, nil
}

func toLLMTools(tools []ToolSpec) []llms.Tool {
	out := make([]llms.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}
