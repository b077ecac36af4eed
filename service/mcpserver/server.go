// Package mcpserver 把门户操作注册表以 MCP 工具的形式对外暴露
package mcpserver

import (
	"aintranet-backend/service/tools"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "aintranet"
	serverVersion = "1.0.0"

	imageMIMEType = "image/png"
)

// CallerResolver 从 HTTP 请求中解析调用者身份
type CallerResolver func(r *http.Request) (tools.Caller, error)

type Server struct {
	registry *tools.Registry
	mcp      *server.MCPServer
}

func NewServer(registry *tools.Registry) *Server {
	s := &Server{registry: registry}
	s.mcp = server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithToolFilter(s.filterByRole),
	)

	for _, op := range registry.Operations() {
		s.mcp.AddTool(
			mcp.NewToolWithRawSchema(op.Name, op.Description, op.Parameters.Raw()),
			s.callTool(op.Name),
		)
	}
	return s
}

// filterByRole 工具列表只包含调用者角色可用的操作
func (s *Server) filterByRole(ctx context.Context, all []mcp.Tool) []mcp.Tool {
	caller, ok := tools.CallerFromContext(ctx)
	if !ok {
		return nil
	}

	var allowed []mcp.Tool
	for _, tool := range all {
		if op, ok := s.registry.Lookup(tool.Name); ok && op.AllowedFor(caller.Role) {
			allowed = append(allowed, tool)
		}
	}
	return allowed
}

func (s *Server) callTool(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		caller, ok := tools.CallerFromContext(ctx)
		if !ok {
			return mcp.NewToolResultError("No autenticado"), nil
		}

		args, err := json.Marshal(req.GetRawArguments())
		if err != nil {
			return mcp.NewToolResultErrorFromErr("Argumentos inválidos", err), nil
		}

		result := s.registry.Execute(ctx, caller, name, args)
		slog.Info("MCP tool executed",
			"tool_name", name,
			"user_id", caller.UserID,
			"success", result.Success)

		out := mcp.NewToolResultText(result.JSON())
		out.IsError = !result.Success
		for _, image := range result.Images {
			out.Content = append(out.Content, mcp.NewImageContent(image, imageMIMEType))
		}
		return out, nil
	}
}

// Handler 无状态的 streamable HTTP 端点，未通过认证的请求返回 401
func (s *Server) Handler(path string, resolve CallerResolver) http.Handler {
	streamable := server.NewStreamableHTTPServer(s.mcp,
		server.WithEndpointPath(path),
		server.WithStateLess(true),
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := resolve(r)
		if err != nil {
			slog.Warn("Rejected MCP request", "err", err)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		streamable.ServeHTTP(w, r.WithContext(tools.WithCaller(r.Context(), caller)))
	})
}
