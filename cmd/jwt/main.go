package main

import (
	"aintranet-backend/config"
	"aintranet-backend/middleware"
	"aintranet-backend/model"
	"crypto/rand"
	"encoding/base64"
	"flag"
	"log/slog"
)

func generateJWTSecret() (string, error) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(key), nil
}

// 指定 -username 时使用配置中的密钥签发开发用 token
func main() {
	username := flag.String("username", "", "sign a development token for this username")
	userID := flag.Uint("uid", 1, "user id carried by the token")
	role := flag.String("role", model.RoleEmployee, "role carried by the token")
	flag.Parse()

	if *username == "" {
		secret, err := generateJWTSecret()
		if err != nil {
			slog.Error("Error generating secret", "err", err)
			return
		}
		slog.Info("Generated JWT Secret:", "secret", secret)
		return
	}

	if err := config.Init(); err != nil {
		slog.Error("Failed to load config", "err", err)
		return
	}
	if config.Cfg.JWT.SecretKey == "" {
		slog.Error("JWT secret is not configured, set JWT_SECRET")
		return
	}

	token, err := middleware.GenerateToken(&model.User{
		ID:       *userID,
		Username: *username,
		Role:     *role,
	})
	if err != nil {
		slog.Error("Error generating token", "err", err)
		return
	}
	slog.Info("Generated JWT token:", "username", *username, "role", *role, "token", token)
}
