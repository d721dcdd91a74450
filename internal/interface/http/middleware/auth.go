package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/response"
)

const (
	ctxKeyClaims = "claims"
	ctxKeyUserID = "user_id"
)

// TokenChecker 已注销Token查询(redis.TokenBlacklist实现)
type TokenChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthMiddleware JWT认证中间件
// 本服务不签发Token,只校验签名并取出读者身份
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	revoked    TokenChecker
}

// NewAuthMiddleware 创建认证中间件;revoked为nil时不检查黑名单
func NewAuthMiddleware(jwtManager *jwt.Manager, revoked TokenChecker) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, revoked: revoked}
}

// RequireAuth 要求登录
//
//	authorized := v1.Group("")
//	authorized.Use(auth.RequireAuth())
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, apperrors.ErrUnauthorized)
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, apperrors.New(apperrors.ErrCodeInvalidToken, "Token格式错误"))
			return
		}

		claims, err := m.jwtManager.ParseToken(parts[1])
		if err != nil {
			abort(c, err)
			return
		}

		if m.revoked != nil && claims.ID != "" {
			revoked, err := m.revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				abort(c, err)
				return
			}
			if revoked {
				abort(c, apperrors.New(apperrors.ErrCodeTokenExpired, "Token已失效，请重新登录"))
				return
			}
		}

		c.Set(ctxKeyClaims, claims)
		c.Set(ctxKeyUserID, claims.UserID)
		c.Next()
	}
}

// RequireRole 要求指定角色,须放在RequireAuth之后
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			abort(c, apperrors.ErrUnauthorized)
			return
		}
		if claims.Role != role {
			abort(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}

// GetClaims 当前请求的Claims,未登录返回nil
func GetClaims(c *gin.Context) *jwt.Claims {
	if v, exists := c.Get(ctxKeyClaims); exists {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetUserID 当前登录读者ID,未登录返回0
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get(ctxKeyUserID); exists {
		if uid, ok := userID.(uint); ok {
			return uid
		}
	}
	return 0
}

// MustGetUserID 用于已经通过RequireAuth的Handler
func MustGetUserID(c *gin.Context) uint {
	userID := GetUserID(c)
	if userID == 0 {
		panic("user_id not found in context")
	}
	return userID
}
