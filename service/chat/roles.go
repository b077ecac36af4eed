package chat

import (
	"aintranet-backend/model"
	"fmt"
	"strings"
)

// 旧版本写入的函数调用结果角色
const legacyFunctionRole = "function"

// NormalizeRole 统一消息角色写法，function 视为 tool
func NormalizeRole(role string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(role))
	if normalized == legacyFunctionRole {
		return model.RoleTool, nil
	}

	switch normalized {
	case model.RoleUser, model.RoleAssistant, model.RoleSystem, model.RoleTool:
		return normalized, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
}
