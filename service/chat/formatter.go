package chat

import (
	"aintranet-backend/config"
	"aintranet-backend/model"
	"aintranet-backend/service/llm"
	"log/slog"
	"unicode/utf8"
)

// Formatter 把持久化的消息整理成发送给模型的有界序列
type Formatter struct {
	cfg config.ChatConfig
}

func NewFormatter(cfg config.ChatConfig) *Formatter {
	return &Formatter{cfg: cfg.WithDefaults()}
}

// Format system 非空时置于首位，并丢弃持久化的 system 消息
func (f *Formatter) Format(system string, turns []model.ChatMessage) []llm.Message {
	messages := make([]llm.Message, 0, len(turns)+1)
	if system != "" {
		messages = append(messages, llm.Message{Role: model.RoleSystem, Content: system})
	}

	for i := range turns {
		turn := &turns[i]
		if system != "" && turn.Role == model.RoleSystem {
			continue
		}

		msg := llm.Message{
			Role:    turn.Role,
			Content: turn.Content,
		}
		switch turn.Role {
		case model.RoleAssistant:
			calls, err := turn.DecodeToolCalls()
			if err != nil {
				slog.Warn("Failed to decode tool calls", "message_id", turn.ID, "err", err)
			}
			msg.ToolCalls = calls
		case model.RoleTool:
			meta, err := turn.DecodeMetadata()
			if err != nil {
				slog.Warn("Failed to decode metadata", "message_id", turn.ID, "err", err)
			}
			msg.ToolCallID = meta.ToolCallID
			msg.Name = meta.ToolName
		}
		messages = append(messages, msg)
	}
	return messages
}

// CleanIncompleteToolCalls 移除未完整配对的工具调用序列与孤立的 tool 消息
func (f *Formatter) CleanIncompleteToolCalls(messages []llm.Message) []llm.Message {
	items := make([]sequenceItem, len(messages))
	for i, msg := range messages {
		items[i] = sequenceItem{
			role:       msg.Role,
			callIDs:    callIDs(msg.ToolCalls),
			toolCallID: msg.ToolCallID,
		}
	}

	drop := incompleteToolSequences(items, true)
	if len(drop) == 0 {
		return messages
	}

	slog.Warn("Dropped incomplete tool call messages from context", "count", len(drop))

	dropped := make(map[int]struct{}, len(drop))
	for _, i := range drop {
		dropped[i] = struct{}{}
	}
	cleaned := make([]llm.Message, 0, len(messages)-len(drop))
	for i, msg := range messages {
		if _, ok := dropped[i]; !ok {
			cleaned = append(cleaned, msg)
		}
	}
	return cleaned
}

// EstimateTokens 粗略估算：字符数除以 TokenDivisor
func (f *Formatter) EstimateTokens(messages []llm.Message) int {
	chars := 0
	for _, msg := range messages {
		chars += utf8.RuneCountInString(msg.Content)
		for _, call := range msg.ToolCalls {
			chars += utf8.RuneCountInString(call.Function.Name)
			chars += utf8.RuneCountInString(call.Function.Arguments)
		}
	}
	return chars / f.cfg.TokenDivisor
}

// Trim 超出预算时保留 system 与最近 KeepRecent 条消息，再逐条丢弃最早的消息
func (f *Formatter) Trim(messages []llm.Message) []llm.Message {
	if f.EstimateTokens(messages) <= f.cfg.MaxTokens {
		return messages
	}

	var (
		system    *llm.Message
		remaining []llm.Message
	)
	for i := range messages {
		if messages[i].Role == model.RoleSystem {
			if system == nil {
				system = &messages[i]
			}
			continue
		}
		remaining = append(remaining, messages[i])
	}

	if len(remaining) > f.cfg.KeepRecent {
		remaining = remaining[len(remaining)-f.cfg.KeepRecent:]
	}
	remaining = dropLeadingTools(remaining)

	trimmed := make([]llm.Message, 0, len(remaining)+1)
	if system != nil {
		trimmed = append(trimmed, *system)
	}
	trimmed = append(trimmed, remaining...)

	head := 0
	if system != nil {
		head = 1
	}
	for len(trimmed) > f.cfg.MinMessages && len(trimmed) > head && f.EstimateTokens(trimmed) > f.cfg.MaxTokens {
		rest := dropLeadingTools(trimmed[head+1:])
		trimmed = append(trimmed[:head], rest...)
	}

	return trimmed
}

// dropLeadingTools 截断后位于开头的 tool 消息已失去对应的 assistant
func dropLeadingTools(messages []llm.Message) []llm.Message {
	for len(messages) > 0 && messages[0].Role == model.RoleTool {
		messages = messages[1:]
	}
	return messages
}

// Rebudget 循环中追加工具结果后重新裁剪，裁剪后只剩 system 时保留原序列
func (f *Formatter) Rebudget(messages []llm.Message) []llm.Message {
	if f.EstimateTokens(messages) <= f.cfg.MaxTokens {
		return messages
	}

	trimmed := f.CleanIncompleteToolCalls(f.Trim(messages))
	for _, msg := range trimmed {
		if msg.Role != model.RoleSystem {
			return trimmed
		}
	}
	return messages
}

// Build 完整的上下文构建流程，结果至少包含 system 与当前用户消息
func (f *Formatter) Build(system string, turns []model.ChatMessage, userMessage string) []llm.Message {
	messages := f.Format(system, turns)
	messages = f.CleanIncompleteToolCalls(messages)
	messages = f.Trim(messages)
	messages = f.CleanIncompleteToolCalls(messages)

	for _, msg := range messages {
		if msg.Role != model.RoleSystem {
			return messages
		}
	}

	slog.Warn("Context is empty after trimming, falling back to current message")
	return []llm.Message{
		{Role: model.RoleSystem, Content: system},
		{Role: model.RoleUser, Content: userMessage},
	}
}
