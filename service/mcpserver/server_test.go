package mcpserver

import (
	"aintranet-backend/dao"
	"aintranet-backend/dao/daotest"
	"aintranet-backend/model"
	"aintranet-backend/service/tools"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcResponse struct {
	Result struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func newServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(tools.NewRegistry(dao.NewStore(daotest.NewDB(t))))
}

func handle(t *testing.T, s *Server, caller tools.Caller, message string) rpcResponse {
	t.Helper()
	handler := s.Handler("/mcp", func(*http.Request) (tools.Caller, error) {
		return caller, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(message))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)
	return resp
}

func TestListToolsFollowsRole(t *testing.T) {
	s := newServer(t)
	list := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`

	tests := []struct {
		role  string
		count int
	}{
		{model.RoleEmployee, 8},
		{model.RoleHR, 15},
		{model.RoleAdmin, 21},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			resp := handle(t, s, tools.Caller{UserID: 1, Role: tt.role}, list)
			assert.Len(t, resp.Result.Tools, tt.count)
		})
	}
}

func TestCallToolAppliesPermissions(t *testing.T) {
	s := newServer(t)
	call := `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"get_system_stats","arguments":{}}}`

	denied := handle(t, s, tools.Caller{UserID: 1, Role: model.RoleEmployee}, call)
	assert.True(t, denied.Result.IsError)
	require.Len(t, denied.Result.Content, 1)
	assert.Contains(t, denied.Result.Content[0].Text, "Solo los administradores")

	allowed := handle(t, s, tools.Caller{UserID: 1, Role: model.RoleAdmin}, call)
	assert.False(t, allowed.Result.IsError)
	require.Len(t, allowed.Result.Content, 1)

	var result tools.Result
	require.NoError(t, json.Unmarshal([]byte(allowed.Result.Content[0].Text), &result))
	assert.True(t, result.Success)
}

func TestCallToolWithoutArguments(t *testing.T) {
	s := newServer(t)
	resp := handle(t, s, tools.Caller{UserID: 1, Role: model.RoleEmployee},
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"get_departments_info"}}`)
	assert.False(t, resp.Result.IsError)
}

func TestHandlerRejectsUnauthenticated(t *testing.T) {
	s := newServer(t)
	handler := s.Handler("/mcp", func(r *http.Request) (tools.Caller, error) {
		if r.Header.Get("Authorization") != "Bearer ok" {
			return tools.Caller{}, errors.New("missing token")
		}
		return tools.Caller{UserID: 1, Role: model.RoleEmployee}, nil
	})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`

	resp, err := http.Post(srv.URL+"/mcp", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/mcp", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer ok")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "request_vacation")
	assert.NotContains(t, string(data), "create_user")
}
