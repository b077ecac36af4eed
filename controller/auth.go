package controller

import (
	"aintranet-backend/dao"
	"aintranet-backend/middleware"
	"aintranet-backend/request"
	"aintranet-backend/response"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func UserLogin(c *gin.Context) {
	var req request.UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	user, err := dao.NewStore(nil).GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		slog.Error(ErrUserLogin.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrUserLogin.Error(),
		})
		return
	}
	if user == nil || !user.Active ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		slog.Info(ErrInvalidCredentials.Error(), "username", req.Username)
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Response{
			Msg: ErrInvalidCredentials.Error(),
		})
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		slog.Error(ErrGenerateToken.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGenerateToken.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.UserAuthResponse{
			ID:       user.ID,
			Username: user.Username,
			FullName: user.FullName,
			Role:     user.Role,
			Token:    token,
		},
	})
}
