package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/fandom-project/back-end/internal/pkg"

	"github.com/gin-gonic/gin"
)

const ContextUserIDKey = "user_id"

// SessionVerifier 校验 token 是否为该用户当前的会话
type SessionVerifier interface {
	Verify(ctx context.Context, userID uint64, token string) error
}

func AuthMiddleware(issuer *pkg.TokenIssuer, sessions SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid authorization format"})
			return
		}
		tokenStr := parts[1]

		claims, err := issuer.ParseAccess(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}

		// 会话校验通过后顺延过期时间
		if sessions != nil {
			if err := sessions.Verify(c.Request.Context(), claims.UserID, tokenStr); err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "account has been logged in elsewhere"})
				return
			}
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// UserID 取出 AuthMiddleware 注入的用户 id
func UserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
