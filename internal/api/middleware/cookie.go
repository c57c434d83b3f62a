package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName is the session envelope cookie checked by the route guard.
	CookieName = "auth_session"
	// CookieExpiration is how long a session envelope stays valid.
	CookieExpiration = 24 * time.Hour
)

// SessionClaims carry the delegated Appwrite session inside the cookie.
type SessionClaims struct {
	Secret string `json:"sec"`
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// SessionCookie signs and verifies the auth_session cookie.
type SessionCookie struct {
	jwtSecret []byte
	secure    bool
}

// NewSessionCookie creates a cookie codec. secure marks cookies HTTPS-only.
func NewSessionCookie(jwtSecret string, secure bool) *SessionCookie {
	return &SessionCookie{jwtSecret: []byte(jwtSecret), secure: secure}
}

// Sign wraps an Appwrite session secret in a signed token.
func (s *SessionCookie) Sign(sessionSecret, userID string) (string, time.Time, error) {
	if len(s.jwtSecret) == 0 {
		return "", time.Time{}, errors.New("JWT secret is not configured")
	}

	expiresAt := time.Now().Add(CookieExpiration)
	claims := SessionClaims{
		Secret: sessionSecret,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signedToken, expiresAt, nil
}

// Parse verifies a token and returns its claims.
func (s *SessionCookie) Parse(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Secret == "" {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// Read returns the claims of the request's cookie.
func (s *SessionCookie) Read(c *gin.Context) (*SessionClaims, error) {
	tokenString, err := c.Cookie(CookieName)
	if err != nil || tokenString == "" {
		return nil, errors.New("no session cookie")
	}
	return s.Parse(tokenString)
}

// Set writes the cookie on the response.
func (s *SessionCookie) Set(c *gin.Context, token string, expiresAt time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(time.Until(expiresAt).Seconds()), "/", "", s.secure, true)
}

// Clear expires the cookie.
func (s *SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", s.secure, true)
}
