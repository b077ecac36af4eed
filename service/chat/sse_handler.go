package chat

import (
	"aintranet-backend/model"
	"aintranet-backend/service/tools"
	"aintranet-backend/utils"
	"context"

	"github.com/gin-gonic/gin"
)

// GinSSEObserver 基于 Gin 的观察者，使用 SSE 推送工具调用进度与最终答案
type GinSSEObserver struct {
	Ctx *gin.Context
}

var _ Observer = &GinSSEObserver{}

type toolCallEvent struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type toolResultEvent struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func NewGinSSEObserver(c *gin.Context) *GinSSEObserver {
	return &GinSSEObserver{Ctx: c}
}

func (h *GinSSEObserver) HandleToolCall(_ context.Context, call model.ToolCall) {
	utils.SendSSEMessage(h.Ctx, utils.EventToolCall, toolCallEvent{
		ID:        call.ID,
		Name:      call.Function.Name,
		Arguments: call.Function.Arguments,
	})
}

func (h *GinSSEObserver) HandleToolResult(_ context.Context, call model.ToolCall, result tools.Result) {
	utils.SendSSEMessage(h.Ctx, utils.EventToolResult, toolResultEvent{
		ID:      call.ID,
		Name:    call.Function.Name,
		Success: result.Success,
		Data:    result.Data,
		Error:   result.Error,
	})
}

func (h *GinSSEObserver) HandleFinalAnswer(_ context.Context, answer string) {
	utils.SendSSEMessage(h.Ctx, utils.EventFinalAnswer, answer)
}
