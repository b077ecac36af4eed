package tools

import (
	"encoding/json"
	"fmt"
)

// Result 工具执行结果，失败同样以值的形式返回给模型
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`

	// Images 报表截图等 base64 附件，不写入 JSON
	Images []string `json:"-"`
}

func OK(data any) Result {
	return Result{Success: true, Data: data}
}

func Failure(msg string) Result {
	return Result{Error: msg}
}

func Failuref(format string, a ...any) Result {
	return Result{Error: fmt.Sprintf(format, a...)}
}

// JSON 工具结果唯一的序列化出口
func (r Result) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		fallback, _ := json.Marshal(Result{Error: fmt.Sprintf("No se pudo serializar el resultado: %v", err)})
		return string(fallback)
	}
	return string(data)
}
