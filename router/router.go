package router

import (
	"aintranet-backend/controller"
	"aintranet-backend/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Register 注册 HTTP 路由；mcp 为空时不暴露 MCP 端点
func Register(mcpPath string, mcp http.Handler) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if mcp != nil {
		r.Any(mcpPath, gin.WrapH(mcp))
	}

	api := r.Group("/api")
	{
		public := api.Group("/user")
		{
			public.POST("/login", controller.UserLogin)
		}

		protected := api.Group("/chat")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("", controller.Chat)
			protected.POST("/stream", controller.ChatStream)
			protected.GET("/history", controller.GetHistory)
			protected.POST("/new-session", controller.NewSession)
			protected.POST("/clear-history", controller.ClearHistory)
			protected.GET("/status", controller.GetStatus)
			protected.GET("/session-summary", controller.GetSessionSummary)
			protected.GET("/session-stats", controller.GetSessionStats)
			protected.GET("/tools", controller.GetTools)
		}
	}

	return r
}
