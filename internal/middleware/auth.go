package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/brightsmile/dental-api/pkg/auth"
)

const (
	ContextAdminID    = "admin_id"
	ContextAdminEmail = "admin_email"
	ContextAdminRole  = "admin_role"
)

type AuthMiddleware struct {
	jwt *auth.JWTService
}

func NewAuthMiddleware(jwt *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// RequireAdmin validates the bearer token and stores the acting identity
// in the request context. The scheduling core receives identity
// explicitly from handlers, never from ambient globals.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "missing or malformed authorization header",
			})
			return
		}

		claims, err := m.jwt.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "invalid or expired token",
			})
			return
		}

		c.Set(ContextAdminID, claims.Subject)
		c.Set(ContextAdminEmail, claims.Email)
		c.Set(ContextAdminRole, claims.Role)
		c.Next()
	}
}
