package chat

import (
	"aintranet-backend/model"
	"aintranet-backend/service/llm"
	"aintranet-backend/service/tools"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	// FallbackResponse 达到迭代上限仍未得到最终答案时的回复
	FallbackResponse = "Lo siento, he tenido problemas para procesar tu solicitud. ¿Podrías reformular tu pregunta?"

	reportImagePrompt = "Capturas de los reportes solicitados. Analízalas para responder a la consulta."
)

// turn 一次用户请求在编排循环中的状态
type turn struct {
	session  *model.ChatSession
	caller   tools.Caller
	observer Observer

	messages []llm.Message
	specs    []llm.ToolSpec
}

// runLoop 最多调用模型 MaxIterations 次，每次调用前按预算裁剪上下文
func (s *Service) runLoop(ctx context.Context, t *turn) (string, error) {
	for iteration := 1; iteration <= s.cfg.MaxIterations; iteration++ {
		if tokens := s.formatter.EstimateTokens(t.messages); tokens > s.cfg.MaxTokens {
			slog.Warn("Context over token budget, trimming",
				"session_id", t.session.ID,
				"iteration", iteration,
				"estimated_tokens", tokens,
				"max_tokens", s.cfg.MaxTokens)
			t.messages = s.formatter.Rebudget(t.messages)
		}

		slog.Debug("Calling llm",
			"session_id", t.session.ID,
			"iteration", iteration,
			"messages", len(t.messages),
			"estimated_tokens", s.formatter.EstimateTokens(t.messages))

		resp, err := s.gateway.Complete(ctx, t.messages, t.specs, llm.ToolChoiceAuto)
		if err != nil {
			return "", fmt.Errorf("failed to get completion: %w", err)
		}

		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}

		if err := s.executeToolCalls(ctx, t, resp); err != nil {
			return "", err
		}
	}

	slog.Warn("Reached max iterations without final answer",
		"session_id", t.session.ID,
		"max_iterations", s.cfg.MaxIterations)
	return FallbackResponse, nil
}

// executeToolCalls 先持久化 assistant 的调用请求，再按顺序执行每个调用并写入结果
func (s *Service) executeToolCalls(ctx context.Context, t *turn, resp *llm.Response) error {
	t.messages = append(t.messages, llm.Message{
		Role:      model.RoleAssistant,
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
	})
	messageID, err := s.store.AppendTurn(ctx, t.session.ID, model.RoleAssistant, resp.Content, resp.ToolCalls, nil)
	if err != nil {
		return err
	}

	var images []string
	for _, call := range resp.ToolCalls {
		t.observer.HandleToolCall(ctx, call)

		result, elapsed := s.executeTool(ctx, t.caller, call)
		s.recordAction(ctx, t.session.ID, messageID, call, result, elapsed)

		content := result.JSON()
		t.messages = append(t.messages, llm.Message{
			Role:       model.RoleTool,
			Content:    content,
			ToolCallID: call.ID,
			Name:       call.Function.Name,
		})
		meta := &model.MessageMetadata{
			ToolCallID: call.ID,
			ToolName:   call.Function.Name,
		}
		if _, err := s.store.AppendTurn(ctx, t.session.ID, model.RoleTool, content, nil, meta); err != nil {
			return err
		}

		t.observer.HandleToolResult(ctx, call, result)
		images = append(images, result.Images...)
	}

	// 截图只在本轮上下文中使用，不写入历史
	if len(images) > 0 {
		t.messages = append(t.messages, llm.Message{
			Role:    model.RoleUser,
			Content: reportImagePrompt,
			Images:  images,
		})
	}
	return nil
}

func (s *Service) executeTool(ctx context.Context, caller tools.Caller, call model.ToolCall) (tools.Result, time.Duration) {
	start := time.Now()

	var result tools.Result
	args := strings.TrimSpace(call.Function.Arguments)
	if args != "" && !json.Valid([]byte(args)) {
		result = tools.Failuref("Los argumentos de \"%s\" no son un JSON válido", call.Function.Name)
	} else {
		result = s.registry.Execute(ctx, caller, call.Function.Name, json.RawMessage(args))
	}

	elapsed := time.Since(start)
	slog.Info("Executed tool",
		"tool_name", call.Function.Name,
		"tool_call_id", call.ID,
		"success", result.Success,
		"duration", elapsed)
	return result, elapsed
}

// recordAction 审计记录写入失败只记录日志，不影响本轮对话
func (s *Service) recordAction(ctx context.Context, sessionID, messageID uint, call model.ToolCall,
	result tools.Result, elapsed time.Duration) {
	action := &model.ChatAction{
		SessionID:    sessionID,
		MessageID:    messageID,
		ActionType:   call.Function.Name,
		ActionParams: actionParams(call.Function.Arguments),
		Success:      result.Success,
		ErrorMessage: result.Error,
		DurationMs:   elapsed.Milliseconds(),
	}
	if result.Success && result.Data != nil {
		if data, err := json.Marshal(result.Data); err == nil {
			action.ActionResult = datatypes.JSON(data)
		}
	}

	if err := s.store.RecordAction(ctx, action); err != nil {
		slog.Error("Failed to record tool action",
			"session_id", sessionID,
			"tool_name", call.Function.Name,
			"err", err)
	}
}

func actionParams(arguments string) datatypes.JSON {
	arguments = strings.TrimSpace(arguments)
	switch {
	case arguments == "":
		return datatypes.JSON("{}")
	case json.Valid([]byte(arguments)):
		return datatypes.JSON(arguments)
	default:
		// 非法 JSON 以字符串形式保存
		data, _ := json.Marshal(arguments)
		return datatypes.JSON(data)
	}
}
