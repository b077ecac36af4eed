package router

import (
	"aintranet-backend/config"
	"aintranet-backend/controller"
	"aintranet-backend/dao"
	"aintranet-backend/dao/daotest"
	"aintranet-backend/middleware"
	"aintranet-backend/model"
	"aintranet-backend/service/chat"
	"aintranet-backend/service/llm"
	"aintranet-backend/service/mcpserver"
	"aintranet-backend/service/tools"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prevCfg, prevDB := config.Cfg, dao.DB
	t.Cleanup(func() {
		config.Cfg, dao.DB = prevCfg, prevDB
	})
	config.Cfg = &config.Config{JWT: config.JWTConfig{SecretKey: "test-secret", TTL: time.Hour}}
	dao.DB = daotest.NewDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secreto"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, dao.DB.Create(&model.User{
		Username:     "jperez",
		PasswordHash: string(hash),
		Email:        "jperez@empresa.com",
		FullName:     "Juan Pérez",
		Role:         model.RoleEmployee,
		Active:       true,
	}).Error)

	registry := tools.NewRegistry(dao.NewStore(nil))
	cfg := config.ChatConfig{}.WithDefaults()
	controller.Init(chat.NewService(chat.NewStore(nil, cfg), registry,
		llm.NewMockGateway(config.LLMConfig{Provider: "openai"}), cfg))

	mcp := mcpserver.NewServer(registry).Handler("/mcp", middleware.CallerFromRequest)
	return Register("/mcp", mcp)
}

func do(t *testing.T, r *gin.Engine, method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func login(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/api/user/login", "", `{"username":"jperez","password":"secreto"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var auth struct {
		Token string `json:"token"`
		Role  string `json:"rol"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	assert.Equal(t, model.RoleEmployee, auth.Role)
	require.NotEmpty(t, auth.Token)
	return auth.Token
}

func TestLogin(t *testing.T) {
	r := setupRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/user/login", "", `{"username":"jperez","password":"otra"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, controller.ErrInvalidCredentials.Error(), env.Msg)

	w, _ = do(t, r, http.MethodPost, "/api/user/login", "", `{"username":"nadie","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/user/login", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	login(t, r)
}

func TestChatRequiresToken(t *testing.T) {
	r := setupRouter(t)
	w, _ := do(t, r, http.MethodPost, "/api/chat", "", `{"message":"Hola"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChatLifecycle(t *testing.T) {
	r := setupRouter(t)
	token := login(t, r)

	w, env := do(t, r, http.MethodPost, "/api/chat", token, `{"message":"Hola"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var reply struct {
		Response  string `json:"response"`
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &reply))
	assert.Contains(t, reply.Response, "Respuesta simulada para: \"Hola\"")
	assert.NotEmpty(t, reply.SessionID)

	w, env = do(t, r, http.MethodPost, "/api/chat", token, `{"message":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, controller.ErrEmptyMessage.Error(), env.Msg)

	w, env = do(t, r, http.MethodGet, "/api/chat/history", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var history chat.History
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.Equal(t, reply.SessionID, history.SessionKey)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, model.RoleUser, history.Messages[0].Role)

	w, env = do(t, r, http.MethodGet, "/api/chat/status", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		LLM struct {
			Mode string `json:"mode"`
		} `json:"llm_config"`
		Session struct {
			MessageCount int `json:"message_count"`
		} `json:"session"`
		User struct {
			Name string `json:"nombre"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, llm.ModeDevelopment, status.LLM.Mode)
	assert.Equal(t, 2, status.Session.MessageCount)
	assert.Equal(t, "Juan Pérez", status.User.Name)

	w, _ = do(t, r, http.MethodPost, "/api/chat/clear-history", token, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, r, http.MethodPost, "/api/chat/new-session", token, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var session struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.NotEqual(t, reply.SessionID, session.SessionID)

	w, env = do(t, r, http.MethodGet, "/api/chat/session-stats", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		TotalSessions int `json:"total_sessions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats.TotalSessions)
}

func TestClearHistoryWithoutSession(t *testing.T) {
	r := setupRouter(t)
	token := login(t, r)

	w, env := do(t, r, http.MethodPost, "/api/chat/clear-history", token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, controller.ErrNoSession.Error(), env.Msg)
}

func TestToolsFollowRole(t *testing.T) {
	r := setupRouter(t)
	token := login(t, r)

	w, env := do(t, r, http.MethodGet, "/api/chat/tools", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var catalog struct {
		Tools []chat.ToolInfo `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &catalog))
	assert.Len(t, catalog.Tools, 8)
}

func TestChatStream(t *testing.T) {
	r := setupRouter(t)
	token := login(t, r)

	w, _ := do(t, r, http.MethodPost, "/api/chat/stream", token, `{"message":"Hola"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "event:final_answer")
	assert.Contains(t, body, "Respuesta simulada")
	assert.Contains(t, body, "event:done")
}

func TestMCPEndpoint(t *testing.T) {
	r := setupRouter(t)
	token := login(t, r)

	w, _ := do(t, r, http.MethodPost, "/mcp", "", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "request_vacation")
}
