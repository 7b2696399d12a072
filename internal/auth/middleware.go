package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextUserKey = "auth_user"

type Verifier interface {
	Verify(ctx context.Context, token string) (*UserView, error)
}

// RequireAuth rejects requests without a valid bearer session.
func RequireAuth(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearer(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Oturum bulunamadı"})
			return
		}
		user, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Oturum geçersiz veya süresi dolmuş"})
			return
		}
		c.Set(contextUserKey, user)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearer(c); ok {
			if user, err := v.Verify(c.Request.Context(), token); err == nil {
				c.Set(contextUserKey, user)
			}
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*UserView, bool) {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*UserView)
	return u, ok
}

func bearer(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return token, token != ""
}
