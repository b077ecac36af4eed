package controller

import (
	"aintranet-backend/middleware"
	"aintranet-backend/request"
	"aintranet-backend/response"
	"aintranet-backend/service/chat"
	"aintranet-backend/service/llm"
	"aintranet-backend/utils"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// chatService 由 Init 在启动时注入
var chatService *chat.Service

func Init(svc *chat.Service) {
	chatService = svc
}

// chatError 将服务层错误映射为 HTTP 状态码与对外提示
func chatError(err error) (int, error) {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return http.StatusBadRequest, ErrEmptyMessage
	case errors.Is(err, llm.ErrGateway):
		return http.StatusBadGateway, ErrAssistantLLM
	default:
		return http.StatusInternalServerError, ErrCallAssistant
	}
}

func Chat(c *gin.Context) {
	var req request.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	caller := middleware.GetCaller(c)
	reply, err := chatService.HandleChatMessage(c.Request.Context(), caller, req.Message)
	if err != nil {
		status, msg := chatError(err)
		slog.Error(msg.Error(), "user_id", caller.UserID, "err", err)
		c.AbortWithStatusJSON(status, response.Response{
			Msg: msg.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.ChatResponse{
			Response:  reply.Response,
			SessionID: reply.SessionKey,
		},
	})
}

// ChatStream 以 SSE 推送工具调用过程与最终答案
func ChatStream(c *gin.Context) {
	utils.SetSSEHeaders(c)

	var req request.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		utils.SendSSEMessage(c, utils.EventError, ErrParseRequest.Error())
		utils.SendSSEMessage(c, utils.EventDone, "")
		return
	}

	caller := middleware.GetCaller(c)
	_, err := chatService.HandleChatMessage(c.Request.Context(), caller, req.Message,
		chat.WithObserver(chat.NewGinSSEObserver(c)))
	if err != nil {
		_, msg := chatError(err)
		slog.Error(msg.Error(), "user_id", caller.UserID, "err", err)
		utils.SendSSEMessage(c, utils.EventError, msg.Error())
		utils.SendSSEMessage(c, utils.EventDone, "")
		return
	}

	utils.SendSSEMessage(c, utils.EventDone, "")
}

func GetHistory(c *gin.Context) {
	caller := middleware.GetCaller(c)
	history, err := chatService.History(c.Request.Context(), caller.UserID)
	if err != nil {
		slog.Error(ErrGetHistory.Error(), "user_id", caller.UserID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetHistory.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: history,
	})
}

func NewSession(c *gin.Context) {
	caller := middleware.GetCaller(c)
	session, err := chatService.StartNewSession(c.Request.Context(), caller.UserID)
	if err != nil {
		slog.Error(ErrCreateSession.Error(), "user_id", caller.UserID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrCreateSession.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, response.Response{
		Data: response.SessionResponse{
			Message:   "Nueva sesión creada",
			SessionID: session.SessionKey,
		},
	})
}

func ClearHistory(c *gin.Context) {
	caller := middleware.GetCaller(c)
	sessionKey, err := chatService.ClearHistory(c.Request.Context(), caller.UserID)
	if errors.Is(err, chat.ErrNoActiveSession) {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Msg: ErrNoSession.Error(),
		})
		return
	}
	if err != nil {
		slog.Error(ErrClearHistory.Error(), "user_id", caller.UserID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrClearHistory.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.SessionResponse{
			Message:   "Historial limpiado",
			SessionID: sessionKey,
		},
	})
}

func GetStatus(c *gin.Context) {
	caller := middleware.GetCaller(c)
	status, err := chatService.Status(c.Request.Context(), caller.UserID)
	if err != nil {
		slog.Error(ErrGetStatus.Error(), "user_id", caller.UserID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetStatus.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.StatusResponse{
			LLMConfig: status.LLM,
			Session:   status.Session,
			User: response.UserInfo{
				Name: caller.FullName,
				Role: caller.Role,
			},
		},
	})
}

func GetSessionSummary(c *gin.Context) {
	caller := middleware.GetCaller(c)
	summary, err := chatService.SessionSummary(c.Request.Context(), caller.UserID)
	if err != nil {
		slog.Error(ErrSessionSummary.Error(), "user_id", caller.UserID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrSessionSummary.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.SessionSummaryResponse{
			Summary: summary,
		},
	})
}

func GetSessionStats(c *gin.Context) {
	caller := middleware.GetCaller(c)
	sessions, err := chatService.SessionStats(c.Request.Context(), caller.UserID)
	if err != nil {
		slog.Error(ErrSessionStats.Error(), "user_id", caller.UserID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrSessionStats.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.SessionStatsResponse{
			TotalSessions: len(sessions),
			Sessions:      sessions,
		},
	})
}

func GetTools(c *gin.Context) {
	caller := middleware.GetCaller(c)
	c.JSON(http.StatusOK, response.Response{
		Data: response.ToolsResponse{
			Role:  caller.Role,
			Tools: chatService.Tools(caller.Role),
		},
	})
}
