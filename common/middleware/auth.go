package middleware

import (
	"strings"

	"catalog-service/common/auth"
	apperrors "catalog-service/common/errors"

	"github.com/gin-gonic/gin"
)

// Context keys set by RequireAdmin.
const (
	UserIDKey = "userID"
	RoleKey   = "role"
)

// RequireAdmin admits requests carrying a valid token whose role claim is
// admin. The token is read from the Authorization header, falling back to
// the token cookie set by the gateway.
func RequireAdmin(verifier *auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if token == "" {
			if v, err := c.Cookie("token"); err == nil {
				token = v
			}
		}
		if token == "" {
			apperrors.Respond(c, apperrors.Newf(apperrors.ErrUnauthorized, "missing bearer token"))
			return
		}

		claims, err := verifier.ParseAndValidateToken(token, "")
		if err != nil {
			apperrors.Respond(c, apperrors.Wrap(apperrors.ErrInvalidToken, err))
			return
		}
		role := auth.Role(claims)
		if role != "admin" {
			apperrors.Respond(c, apperrors.Newf(apperrors.ErrForbidden, "admin role required"))
			return
		}

		if userID, ok := claims["user_id"].(string); ok {
			c.Set(UserIDKey, userID)
		}
		c.Set(RoleKey, role)
		c.Next()
	}
}
