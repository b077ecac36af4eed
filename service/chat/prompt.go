package chat

import (
	"aintranet-backend/model"
	"aintranet-backend/service/tools"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/system.tmpl
var systemPromptText string

var systemPrompt = template.Must(template.New("system").Parse(systemPromptText))

type promptData struct {
	Name     string
	Role     string
	Username string
	Actions  []string
}

// BuildSystemPrompt 渲染包含用户信息与可用操作的系统提示词
func BuildSystemPrompt(caller tools.Caller, toolNames []string) (string, error) {
	data := promptData{
		Name:     caller.FullName,
		Role:     caller.Role,
		Username: caller.Username,
		Actions:  toolNames,
	}
	if data.Name == "" {
		data.Name = "Usuario"
	}
	if data.Role == "" {
		data.Role = model.RoleEmployee
	}

	var sb strings.Builder
	if err := systemPrompt.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render system prompt: %w", err)
	}
	return strings.TrimSpace(sb.String()), nil
}
