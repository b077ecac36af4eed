package utils

import "github.com/gin-gonic/gin"

const (
	EventToolCall    = "tool_call"
	EventToolResult  = "tool_result"
	EventFinalAnswer = "final_answer"
	EventError       = "error"
	EventDone        = "done"
)

func SetSSEHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
}

// SendSSEMessage 非字符串的 data 以 JSON 编码发送
func SendSSEMessage(c *gin.Context, event string, data any) {
	c.SSEvent(event, data)
	c.Writer.Flush()
}
