package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// TokenRevoker Token注销(redis.TokenBlacklist实现)
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// AuthHandler 认证相关接口
// 登录由统一认证服务负责,这里只提供注销
type AuthHandler struct {
	revoker TokenRevoker
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(revoker TokenRevoker) *AuthHandler {
	return &AuthHandler{revoker: revoker}
}

// Logout 注销当前Token
// @Summary      注销
// @Description  将当前Token的jti加入黑名单,保留到Token过期
// @Tags         认证
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil || claims.ID == "" {
		response.Success(c, nil)
		return
	}

	if err := h.revoker.Revoke(c.Request.Context(), claims.ID, claims.RemainingTTL(time.Now())); err != nil {
		response.Error(c, err)
		return
	}
	slog.InfoContext(c.Request.Context(), "token revoked", "user_id", claims.UserID, "jti", claims.ID)
	response.Success(c, nil)
}
