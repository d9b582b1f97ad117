package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wedding-site/internal/domain"
)

// SessionUserKey is where RequireAdmin stores the *domain.SessionUser
const SessionUserKey = "session_user"

// SessionVerifier resolves a session token into its user
type SessionVerifier interface {
	CurrentUser(token string) (*domain.SessionUser, error)
}

// RequireAdmin rejects requests without a valid admin session. The token is
// read from the session cookie first, then from a Bearer header.
func RequireAdmin(verifier SessionVerifier, cookieName string, logger domain.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			abortUnauthorized(c)
			return
		}

		user, err := verifier.CurrentUser(token)
		if err != nil {
			logger.WithContext(c.Request.Context()).Debug("Admin session rejected", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			abortUnauthorized(c)
			return
		}

		c.Set(SessionUserKey, user)
		c.Next()
	}
}

// SessionToken returns the raw session token of the request, if any
func SessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// CurrentUser returns the user stored by RequireAdmin
func CurrentUser(c *gin.Context) (*domain.SessionUser, bool) {
	value, ok := c.Get(SessionUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*domain.SessionUser)
	return user, ok
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": "No autorizado",
	})
}
