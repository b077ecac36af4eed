package middleware

import (
	"aintranet-backend/config"
	"aintranet-backend/model"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupConfig(t *testing.T, ttl time.Duration) {
	t.Helper()
	prev := config.Cfg
	config.Cfg = &config.Config{JWT: config.JWTConfig{SecretKey: "test-secret", TTL: ttl}}
	t.Cleanup(func() { config.Cfg = prev })
}

func testUser() *model.User {
	user := &model.User{
		Username: "mlopez",
		FullName: "María López",
		Role:     model.RoleHR,
	}
	user.ID = 7
	return user
}

func TestGenerateAndParseToken(t *testing.T) {
	setupConfig(t, time.Hour)

	token, err := GenerateToken(testUser())
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "mlopez", claims.Username)

	caller := claims.Caller()
	assert.Equal(t, model.RoleHR, caller.Role)
	assert.Equal(t, "María López", caller.FullName)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	setupConfig(t, -time.Minute)

	token, err := GenerateToken(testUser())
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseTokenRejectsOtherSecret(t *testing.T) {
	setupConfig(t, time.Hour)
	token, err := GenerateToken(testUser())
	require.NoError(t, err)

	config.Cfg.JWT.SecretKey = "rotated"
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestCallerFromRequest(t *testing.T) {
	setupConfig(t, time.Hour)
	token, err := GenerateToken(testUser())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		err    error
	}{
		{"missing", "", ErrMissingToken},
		{"no bearer", token, ErrTokenFormat},
		{"basic", "Basic " + token, ErrTokenFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			_, err := CallerFromRequest(req)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	caller, err := CallerFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, uint(7), caller.UserID)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setupConfig(t, time.Hour)
	token, err := GenerateToken(testUser())
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, GetCaller(c).Username)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mlopez", w.Body.String())
}
