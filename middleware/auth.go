package middleware

import (
	"aintranet-backend/config"
	"aintranet-backend/model"
	"aintranet-backend/service/tools"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const contextCaller = "caller"

var (
	ErrMissingToken = errors.New("authorization header required")
	ErrTokenFormat  = errors.New("invalid authorization format")
)

type Claims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"username"`
	FullName string `json:"name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Caller() tools.Caller {
	return tools.Caller{
		UserID:   c.UserID,
		Username: c.Username,
		FullName: c.FullName,
		Role:     c.Role,
	}
}

func GenerateToken(user *model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(config.Cfg.JWT.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	secretKey := []byte(config.Cfg.JWT.SecretKey)
	return token.SignedString(secretKey)
}

func ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(config.Cfg.JWT.SecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token for user %q", claims.Username)
	}
	return claims, nil
}

// CallerFromRequest 解析 Bearer token，供 gin 以外的入口复用
func CallerFromRequest(r *http.Request) (tools.Caller, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return tools.Caller{}, ErrMissingToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return tools.Caller{}, ErrTokenFormat
	}

	claims, err := ParseToken(parts[1])
	if err != nil {
		return tools.Caller{}, err
	}
	return claims.Caller(), nil
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := CallerFromRequest(c.Request)
		if err != nil {
			slog.Info("Unauthorized request", "path", c.FullPath(), "err", err)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(contextCaller, caller)
		c.Request = c.Request.WithContext(tools.WithCaller(c.Request.Context(), caller))
		c.Next()
	}
}

// GetCaller 返回 AuthMiddleware 写入的调用者
func GetCaller(c *gin.Context) tools.Caller {
	caller, _ := c.MustGet(contextCaller).(tools.Caller)
	return caller
}
