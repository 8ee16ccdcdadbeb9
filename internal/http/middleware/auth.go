package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

// TokenParser validates a bearer token and returns who it belongs to.
type TokenParser func(token string) (userID int64, role string, err error)

// Auth requires a valid "Authorization: Bearer <token>" header and stores
// userID and userRole on the context.
func Auth(parse TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		userID, role, err := parse(strings.TrimSpace(token))
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		c.Set(userIDKey, userID)
		c.Set(userRoleKey, role)
		c.Next()
	}
}

// RequireRoles allows only requests whose userRole is in allowedRoles. It
// must run after Auth.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		role := strings.ToLower(strings.TrimSpace(c.GetString(userRoleKey)))
		if role == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "role missing from context")
			return
		}
		if _, ok := allowed[role]; !ok {
			abortAuth(c, http.StatusForbidden, "forbidden", "role not allowed")
			return
		}
		c.Next()
	}
}

func abortAuth(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"code":       code,
		"message":    msg,
		"request_id": GetRequestID(c),
	})
}

// UserID returns the authenticated user id, or 0.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

func UserRole(c *gin.Context) string {
	return c.GetString(userRoleKey)
}
