package chat

import (
	"aintranet-backend/model"
	"aintranet-backend/service/tools"
	"context"
)

// Observer 接收编排循环中的进度事件，回调在循环所在的 goroutine 中同步执行
type Observer interface {
	HandleToolCall(ctx context.Context, call model.ToolCall)
	HandleToolResult(ctx context.Context, call model.ToolCall, result tools.Result)
	HandleFinalAnswer(ctx context.Context, answer string)
}

// SimpleObserver 忽略所有事件，嵌入后只需实现关心的方法
type SimpleObserver struct{}

var _ Observer = SimpleObserver{}

func (SimpleObserver) HandleToolCall(context.Context, model.ToolCall) {}

func (SimpleObserver) HandleToolResult(context.Context, model.ToolCall, tools.Result) {}

func (SimpleObserver) HandleFinalAnswer(context.Context, string) {}
