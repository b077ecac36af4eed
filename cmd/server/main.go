package main

import (
	"aintranet-backend/config"
	"aintranet-backend/controller"
	"aintranet-backend/dao"
	"aintranet-backend/middleware"
	"aintranet-backend/router"
	"aintranet-backend/service/chat"
	"aintranet-backend/service/llm"
	"aintranet-backend/service/mcpserver"
	"aintranet-backend/service/report"
	"aintranet-backend/service/tools"
	"aintranet-backend/utils"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := config.Init(); err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := config.Cfg
	utils.InitLogger(cfg.Log)

	if cfg.JWT.SecretKey == "" {
		slog.Error("JWT secret is not configured, set JWT_SECRET")
		os.Exit(1)
	}

	if err := dao.Init(cfg.MySQL); err != nil {
		slog.Error("Failed to init database", "err", err)
		os.Exit(1)
	}
	if err := dao.Migrate(dao.DB); err != nil {
		slog.Error("Failed to migrate database", "err", err)
		os.Exit(1)
	}

	gateway, err := llm.New(cfg.LLM)
	if err != nil {
		slog.Error("Failed to init llm gateway", "err", err)
		os.Exit(1)
	}
	info := gateway.Info()
	slog.Info("LLM gateway ready", "provider", info.Provider, "model", info.Model, "mode", info.Mode)

	registry := tools.NewRegistry(dao.NewStore(dao.DB),
		tools.WithReportCapturer(report.NewClient(cfg.Report)))
	controller.Init(chat.NewService(chat.NewStore(dao.DB, cfg.Chat), registry, gateway, cfg.Chat))

	var mcpHandler http.Handler
	if cfg.MCP.Enabled {
		mcpHandler = mcpserver.NewServer(registry).Handler(cfg.MCP.Path, middleware.CallerFromRequest)
		slog.Info("MCP endpoint enabled", "path", cfg.MCP.Path)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router.Register(cfg.MCP.Path, mcpHandler),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server stopped unexpectedly", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to shutdown server", "err", err)
	}
}
