package main

import (
	"aintranet-backend/config"
	"aintranet-backend/dao"
	"aintranet-backend/model"
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// seedAdmin 创建初始管理员，已存在同名用户时跳过
func seedAdmin(ctx context.Context, username, password, email string) error {
	store := dao.NewStore(dao.DB)
	exists, err := store.UserExists(ctx, username, email)
	if err != nil {
		return err
	}
	if exists {
		slog.Info("Admin user already exists, skipping", "username", username)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return store.CreateUser(ctx, &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		FullName:     "Administrador",
		Role:         model.RoleAdmin,
		Active:       true,
	})
}

func main() {
	adminUser := flag.String("admin-user", "", "create an admin account with this username")
	adminPassword := flag.String("admin-password", "", "password for the admin account")
	adminEmail := flag.String("admin-email", "admin@empresa.com", "email for the admin account")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := config.Init(); err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	if err := dao.Init(config.Cfg.MySQL); err != nil {
		slog.Error("Failed to init database", "err", err)
		os.Exit(1)
	}
	if err := dao.Migrate(dao.DB.WithContext(ctx)); err != nil {
		slog.Error("Failed to migrate database", "err", err)
		os.Exit(1)
	}
	slog.Info("Schema migrated", "tables", len(dao.Models()))

	if *adminUser == "" {
		return
	}
	if *adminPassword == "" {
		slog.Error("admin-password is required with admin-user")
		os.Exit(1)
	}
	if err := seedAdmin(ctx, *adminUser, *adminPassword, *adminEmail); err != nil {
		slog.Error("Failed to create admin user", "err", err)
		os.Exit(1)
	}
	slog.Info("Admin user created", "username", *adminUser)
}
