package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/models"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/session"
)

const (
	currentUserKey   = "currentUser"
	sessionSecretKey = "sessionSecret"
)

// SessionChecker resolves a session secret to a user.
type SessionChecker interface {
	Check(ctx context.Context, secret string) session.Status
}

type AuthMiddleware struct {
	cookie    *SessionCookie
	gate      SessionChecker
	loginPath string
	protected []string
}

func NewAuthMiddleware(cookie *SessionCookie, gate SessionChecker, loginPath string, protected []string) *AuthMiddleware {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &AuthMiddleware{
		cookie:    cookie,
		gate:      gate,
		loginPath: loginPath,
		protected: protected,
	}
}

func (m *AuthMiddleware) isProtected(path string) bool {
	for _, p := range m.protected {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// RouteGuard redirects page requests under protected prefixes to the login
// page when the session cookie is missing or invalid.
func (m *AuthMiddleware) RouteGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !m.isProtected(path) {
			c.Next()
			return
		}

		if _, err := m.cookie.Read(c); err != nil {
			query := url.Values{}
			query.Set("redirect", path)
			c.Redirect(http.StatusFound, m.loginPath+"?"+query.Encode())
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSession authenticates API requests. The session is checked against
// Appwrite before any handler runs.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.cookie.Read(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		status := m.gate.Check(c.Request.Context(), claims.Secret)
		if !status.Authenticated {
			m.cookie.Clear(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired, please log in again"})
			c.Abort()
			return
		}

		c.Set(currentUserKey, status.User)
		c.Set(sessionSecretKey, claims.Secret)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireSession.
func CurrentUser(c *gin.Context) (models.CurrentUser, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return models.CurrentUser{}, false
	}
	user, ok := v.(models.CurrentUser)
	return user, ok
}

// SessionSecret returns the Appwrite session secret stored by RequireSession.
func SessionSecret(c *gin.Context) string {
	return c.GetString(sessionSecretKey)
}
