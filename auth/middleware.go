package auth

import (
	"strings"

	"social-chat/domain/chat"
	"social-chat/errors"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey = "user_id"
	RolesKey  = "roles"

	tokenQueryParam = "token"
)

// Middleware rejects any request without a valid token and stores the
// caller's identity in the gin context.
// Browsers cannot set headers on a websocket upgrade, hence the ?token= fallback.
func Middleware(authority *TokenAuthority) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c.GetHeader("Authorization"))
		if tokenStr == "" {
			tokenStr = c.Query(tokenQueryParam)
		}
		if tokenStr == "" {
			abort(c, errors.ErrMissingToken)
			return
		}

		claims, err := authority.ValidateToken(tokenStr)
		if err != nil {
			abort(c, errors.ErrInvalidToken)
			return
		}

		c.Set(UserIDKey, chat.UserID(claims.UserID))
		c.Set(RolesKey, claims.Roles)
		c.Next()
	}
}

// UserID returns the identity stored by Middleware.
func UserID(c *gin.Context) (chat.UserID, bool) {
	value, ok := c.Get(UserIDKey)
	if !ok {
		return "", false
	}
	userID, ok := value.(chat.UserID)
	return userID, ok && userID != ""
}

// Roles returns the role claims stored by Middleware.
func Roles(c *gin.Context) []string {
	roles, _ := c.Get(RolesKey)
	r, _ := roles.([]string)
	return r
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abort(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	c.AbortWithStatusJSON(status, gin.H{"status": status, "error": err.Error()})
}
