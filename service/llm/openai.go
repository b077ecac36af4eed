package llm

import (
	"aintranet-backend/config"
	"aintranet-backend/model"
	"aintranet-backend/utils"
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIGateway 直连 OpenAI Chat Completions
type OpenAIGateway struct {
	client *openai.Client
	cfg    config.LLMConfig
}

func NewOpenAIGateway(cfg config.LLMConfig, opts ...option.RequestOption) *OpenAIGateway {
	cfg = cfg.WithDefaults()
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.APIBase),
		option.WithHTTPClient(utils.NewHTTPClient(utils.WithTimeout(cfg.Timeout))),
		option.WithMaxRetries(1),
	}
	client := openai.NewClient(append(base, opts...)...)
	return &OpenAIGateway{client: &client, cfg: cfg}
}

func (g *OpenAIGateway) Info() Info {
	return Info{
		Provider:   "openai",
		Model:      g.cfg.Model,
		APIBase:    g.cfg.APIBase,
		Configured: true,
		Mode:       ModeProduction,
	}
}

func (g *OpenAIGateway) Complete(ctx context.Context, messages []Message, tools []ToolSpec, toolChoice string) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(g.cfg.Model),
		Messages:            toOpenAIMessages(messages),
		MaxCompletionTokens: openai.Int(int64(g.cfg.MaxTokens)),
	}

	var reqOpts []option.RequestOption
	if IsReasoningModel(g.cfg.Model) {
		reqOpts = append(reqOpts, option.WithJSONSet("verbosity", g.cfg.Verbosity))
		if effort := strings.ToLower(g.cfg.ReasoningEffort); effort != "" && effort != "none" {
			params.ReasoningEffort = shared.ReasoningEffort(effort)
		}
	} else {
		params.Temperature = openai.Float(g.cfg.TemperatureValue())
	}

	if len(tools) > 0 {
		params.Tools = toOpenAITools(tools)
		if toolChoice == "" {
			toolChoice = ToolChoiceAuto
		}
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String(toolChoice),
		}
	}

	completion, err := g.client.Chat.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &Error{Status: apiErr.StatusCode, Body: apiErr.RawJSON(), Err: err}
		}
		return nil, &Error{Err: err}
	}
	if len(completion.Choices) == 0 {
		return nil, &Error{Err: errors.New("response contains no choices")}
	}

	msg := completion.Choices[0].Message
	resp := &Response{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, model.ToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: model.ToolCallFunction{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return resp, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case model.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case model.RoleUser:
			if len(m.Images) == 0 {
				out = append(out, openai.UserMessage(m.Content))
				continue
			}
			parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(m.Content)}
			for _, img := range m.Images {
				parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL:    imageDataURL(img),
					Detail: "high",
				}))
			}
			out = append(out, openai.UserMessage(parts))
		case model.RoleAssistant:
			if len(m.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				assistant.Content.OfString = openai.String(m.Content)
			}
			for _, tc := range m.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: tc.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case model.RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		}
	}
	return out
}

func toOpenAITools(tools []ToolSpec) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  shared.FunctionParameters(t.Parameters),
			},
		})
	}
	return out
}
