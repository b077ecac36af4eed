package chat

import (
	"aintranet-backend/config"
	"aintranet-backend/model"
	"aintranet-backend/service/llm"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

const testSystem = "Eres un asistente"

func userTurn(content string) model.ChatMessage {
	return model.ChatMessage{Role: model.RoleUser, Content: content}
}

func answerTurn(content string) model.ChatMessage {
	return model.ChatMessage{Role: model.RoleAssistant, Content: content}
}

func callTurn(t *testing.T, ids ...string) model.ChatMessage {
	t.Helper()
	calls := make([]model.ToolCall, 0, len(ids))
	for _, id := range ids {
		calls = append(calls, model.ToolCall{
			ID:       id,
			Type:     "function",
			Function: model.ToolCallFunction{Name: "get_my_tickets", Arguments: "{}"},
		})
	}
	data, err := json.Marshal(calls)
	require.NoError(t, err)
	return model.ChatMessage{Role: model.RoleAssistant, ToolCalls: datatypes.JSON(data)}
}

func resultTurn(t *testing.T, id string) model.ChatMessage {
	t.Helper()
	data, err := json.Marshal(model.MessageMetadata{ToolCallID: id, ToolName: "get_my_tickets"})
	require.NoError(t, err)
	return model.ChatMessage{Role: model.RoleTool, Content: `{"success":true}`, Metadata: datatypes.JSON(data)}
}

func roles(messages []llm.Message) []string {
	out := make([]string, 0, len(messages))
	for _, msg := range messages {
		out = append(out, msg.Role)
	}
	return out
}

func TestFormat(t *testing.T) {
	f := NewFormatter(config.ChatConfig{})
	turns := []model.ChatMessage{
		{Role: model.RoleSystem, Content: "antiguo"},
		userTurn("hola"),
		callTurn(t, "call_1"),
		resultTurn(t, "call_1"),
		answerTurn("listo"),
	}

	messages := f.Format(testSystem, turns)
	require.Len(t, messages, 5)
	assert.Equal(t, []string{"system", "user", "assistant", "tool", "assistant"}, roles(messages))
	assert.Equal(t, testSystem, messages[0].Content)
	require.Len(t, messages[2].ToolCalls, 1)
	assert.Equal(t, "call_1", messages[2].ToolCalls[0].ID)
	assert.Equal(t, "call_1", messages[3].ToolCallID)
	assert.Equal(t, "get_my_tickets", messages[3].Name)

	// 不提供 system 时保留持久化的 system 消息
	assert.Len(t, f.Format("", turns), 5)
	assert.Equal(t, "antiguo", f.Format("", turns)[0].Content)
}

func TestCleanIncompleteToolCalls(t *testing.T) {
	f := NewFormatter(config.ChatConfig{})
	messages := f.Format(testSystem, []model.ChatMessage{
		resultTurn(t, "orphan"),
		userTurn("primera"),
		callTurn(t, "a", "b"),
		resultTurn(t, "a"),
		userTurn("segunda"),
		callTurn(t, "c"),
		resultTurn(t, "c"),
		answerTurn("respuesta"),
	})

	cleaned := f.CleanIncompleteToolCalls(messages)
	assert.Equal(t, []string{"system", "user", "user", "assistant", "tool", "assistant"}, roles(cleaned))
	assert.Equal(t, "c", cleaned[4].ToolCallID)
}

func TestEstimateTokens(t *testing.T) {
	f := NewFormatter(config.ChatConfig{})
	messages := []llm.Message{
		{Role: model.RoleUser, Content: strings.Repeat("a", 40)},
		{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{{
			ID:       "x",
			Function: model.ToolCallFunction{Name: "abcd", Arguments: "1234"},
		}}},
		{Role: model.RoleUser, Content: "ññññ"},
	}
	assert.Equal(t, (40+8+4)/4, f.EstimateTokens(messages))
	assert.Zero(t, f.EstimateTokens(nil))

	f = NewFormatter(config.ChatConfig{TokenDivisor: 2})
	assert.Equal(t, 26, f.EstimateTokens(messages))
}

func alternating(n, size int) []llm.Message {
	messages := []llm.Message{{Role: model.RoleSystem, Content: testSystem}}
	for i := range n {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: strings.Repeat("x", size)})
	}
	return messages
}

func TestTrimUnderBudget(t *testing.T) {
	f := NewFormatter(config.ChatConfig{})
	messages := alternating(10, 100)
	assert.Equal(t, messages, f.Trim(messages))
}

func TestTrimKeepsRecentWindow(t *testing.T) {
	f := NewFormatter(config.ChatConfig{MaxTokens: 1000, KeepRecent: 20})
	messages := alternating(200, 400)

	trimmed := f.Trim(messages)
	require.NotEmpty(t, trimmed)
	assert.Equal(t, model.RoleSystem, trimmed[0].Role)
	assert.LessOrEqual(t, len(trimmed)-1, 20)
	assert.LessOrEqual(t, f.EstimateTokens(trimmed), 1000)
	assert.Equal(t, messages[len(messages)-1], trimmed[len(trimmed)-1])
}

func TestTrimRespectsFloor(t *testing.T) {
	f := NewFormatter(config.ChatConfig{MaxTokens: 10, KeepRecent: 20, MinMessages: 3})
	trimmed := f.Trim(alternating(6, 400))
	assert.Len(t, trimmed, 3)
	assert.Equal(t, model.RoleSystem, trimmed[0].Role)
}

func TestTrimNegativeSettingsFallBackToDefaults(t *testing.T) {
	f := NewFormatter(config.ChatConfig{MaxTokens: 1, KeepRecent: -1, MinMessages: -1, TokenDivisor: -4})
	messages := alternating(30, 400)

	var trimmed []llm.Message
	require.NotPanics(t, func() { trimmed = f.Trim(messages) })
	assert.Len(t, trimmed, 3)
	assert.Equal(t, model.RoleSystem, trimmed[0].Role)
	assert.Positive(t, f.EstimateTokens(messages))
}

func TestRebudget(t *testing.T) {
	f := NewFormatter(config.ChatConfig{MaxTokens: 300})

	small := alternating(2, 40)
	assert.Equal(t, small, f.Rebudget(small))

	messages := []llm.Message{
		{Role: model.RoleSystem, Content: testSystem},
		{Role: model.RoleUser, Content: "hola"},
		{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{{ID: "a", Function: model.ToolCallFunction{Name: "get_my_tickets"}}}},
		{Role: model.RoleTool, ToolCallID: "a", Content: strings.Repeat("x", 800)},
		{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{{ID: "b", Function: model.ToolCallFunction{Name: "get_my_tickets"}}}},
		{Role: model.RoleTool, ToolCallID: "b", Content: strings.Repeat("y", 800)},
	}
	rebudgeted := f.Rebudget(messages)
	assert.LessOrEqual(t, f.EstimateTokens(rebudgeted), 300)
	assert.Equal(t, []string{model.RoleSystem, model.RoleAssistant, model.RoleTool}, roles(rebudgeted))
	assert.Equal(t, "b", rebudgeted[2].ToolCallID)
}

func TestTrimBudgetProperty(t *testing.T) {
	for _, budget := range []int{50, 200, 1000, 5000} {
		for _, n := range []int{1, 5, 30, 120} {
			for _, size := range []int{10, 333, 2000} {
				t.Run(fmt.Sprintf("budget=%d/n=%d/size=%d", budget, n, size), func(t *testing.T) {
					f := NewFormatter(config.ChatConfig{MaxTokens: budget})
					trimmed := f.Trim(alternating(n, size))
					if f.EstimateTokens(trimmed) > budget {
						assert.LessOrEqual(t, len(trimmed), 3)
					}
					assert.Equal(t, model.RoleSystem, trimmed[0].Role)
				})
			}
		}
	}
}

func TestTrimDropsOrphanedToolResults(t *testing.T) {
	f := NewFormatter(config.ChatConfig{MaxTokens: 100, KeepRecent: 3})
	messages := f.Format(testSystem, []model.ChatMessage{
		userTurn(strings.Repeat("a", 500)),
		callTurn(t, "a", "b"),
		resultTurn(t, "a"),
		resultTurn(t, "b"),
		userTurn("hola"),
	})

	trimmed := f.Trim(messages)
	assert.Equal(t, []string{"system", "user"}, roles(trimmed))
}

func TestBuild(t *testing.T) {
	f := NewFormatter(config.ChatConfig{})

	t.Run("empty history falls back", func(t *testing.T) {
		messages := f.Build(testSystem, nil, "hola")
		assert.Equal(t, []string{"system", "user"}, roles(messages))
		assert.Equal(t, "hola", messages[1].Content)
	})

	t.Run("only broken sequences falls back", func(t *testing.T) {
		messages := f.Build(testSystem, []model.ChatMessage{callTurn(t, "a"), resultTurn(t, "zzz")}, "hola")
		assert.Equal(t, []string{"system", "user"}, roles(messages))
	})

	t.Run("history is kept", func(t *testing.T) {
		turns := []model.ChatMessage{
			userTurn("hola"),
			answerTurn("¿en qué te ayudo?"),
			callTurn(t, "a"),
			userTurn("mis tickets"),
		}
		messages := f.Build(testSystem, turns, "mis tickets")
		assert.Equal(t, []string{"system", "user", "assistant", "user"}, roles(messages))
	})

	t.Run("non empty for any history", func(t *testing.T) {
		for n := range 12 {
			turns := make([]model.ChatMessage, 0, n)
			for i := range n {
				switch i % 3 {
				case 0:
					turns = append(turns, callTurn(t, fmt.Sprintf("c%d", i)))
				case 1:
					turns = append(turns, resultTurn(t, fmt.Sprintf("c%d", i)))
				default:
					turns = append(turns, answerTurn("ok"))
				}
			}
			assert.GreaterOrEqual(t, len(f.Build(testSystem, turns, "hola")), 2)
		}
	})
}
