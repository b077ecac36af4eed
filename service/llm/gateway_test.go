package llm

import (
	"aintranet-backend/config"
	"aintranet-backend/model"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type scriptedModel struct {
	messages []llms.MessageContent
	opts     llms.CallOptions
	resp     *llms.ContentResponse
	err      error
}

func (m *scriptedModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, opt := range options {
		opt(&m.opts)
	}
	return m.resp, m.err
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestNewSelectsGateway(t *testing.T) {
	gw, err := New(config.LLMConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MockGateway{}, gw)
	assert.Equal(t, ModeDevelopment, gw.Info().Mode)
	assert.False(t, gw.Info().Configured)

	gw, err = New(config.LLMConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIGateway{}, gw)
	assert.Equal(t, ModeProduction, gw.Info().Mode)

	gw, err = New(config.LLMConfig{APIKey: "sk-test", Provider: "compatible", APIBase: "http://localhost:11434/v1"})
	require.NoError(t, err)
	assert.IsType(t, &CompatibleGateway{}, gw)

	_, err = New(config.LLMConfig{APIKey: "sk-test", Provider: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestMockGatewayEchoesLastUserMessage(t *testing.T) {
	gw := NewMockGateway(config.LLMConfig{})
	resp, err := gw.Complete(context.Background(), []Message{
		{Role: model.RoleSystem, Content: "sys"},
		{Role: model.RoleUser, Content: "primero"},
		{Role: model.RoleAssistant, Content: "ok"},
		{Role: model.RoleUser, Content: "hola"},
	}, nil, "")
	require.NoError(t, err)

	assert.Equal(t, `Respuesta simulada para: "hola". Este es el modo de desarrollo. Configura LLM_API_KEY para usar un LLM real.`, resp.Content)
	assert.Empty(t, resp.ToolCalls)
}

func TestCompatibleGatewayConvertsMessages(t *testing.T) {
	fake := &scriptedModel{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{
		ToolCalls: []llms.ToolCall{
			{ID: "call_9", Type: "function", FunctionCall: &llms.FunctionCall{Name: "get_announcements", Arguments: `{"limit":2}`}},
			{ID: "broken"},
		},
	}}}}
	temperature := 0.3
	gw := NewCompatibleGatewayWithModel(fake, config.LLMConfig{Model: "qwen-plus", Temperature: &temperature})

	resp, err := gw.Complete(context.Background(), sampleMessages(), sampleTools(), "")
	require.NoError(t, err)

	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call_9", resp.ToolCalls[0].ID)
	assert.Equal(t, `{"limit":2}`, resp.ToolCalls[0].Function.Arguments)

	require.Len(t, fake.messages, 4)
	assert.Equal(t, llms.ChatMessageTypeSystem, fake.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, fake.messages[2].Role)
	require.Len(t, fake.messages[2].Parts, 1)
	call := fake.messages[2].Parts[0].(llms.ToolCall)
	assert.Equal(t, "call_0", call.ID)

	toolMsg := fake.messages[3]
	assert.Equal(t, llms.ChatMessageTypeTool, toolMsg.Role)
	require.Len(t, toolMsg.Parts, 1)
	assert.Equal(t, "call_0", toolMsg.Parts[0].(llms.ToolCallResponse).ToolCallID)

	assert.InDelta(t, 0.3, fake.opts.Temperature, 1e-9)
	assert.Equal(t, 2000, fake.opts.MaxTokens)
	assert.Equal(t, "auto", fake.opts.ToolChoice)
	require.Len(t, fake.opts.Tools, 1)
	assert.Equal(t, "get_my_tickets", fake.opts.Tools[0].Function.Name)
}

func TestCompatibleGatewayWrapsErrors(t *testing.T) {
	gw := NewCompatibleGatewayWithModel(&scriptedModel{err: errors.New("connection refused")}, config.LLMConfig{})
	_, err := gw.Complete(context.Background(), sampleMessages()[:2], nil, "")
	assert.ErrorIs(t, err, ErrGateway)

	gw = NewCompatibleGatewayWithModel(&scriptedModel{resp: &llms.ContentResponse{}}, config.LLMConfig{})
	_, err = gw.Complete(context.Background(), sampleMessages()[:2], nil, "")
	assert.ErrorIs(t, err, ErrGateway)
}
