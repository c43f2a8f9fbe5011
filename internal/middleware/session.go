package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/pkg/jwt"
	"github.com/gin-gonic/gin"
)

const (
	// SessionContextKey is the key used to store the session in gin context
	SessionContextKey = "session"

	bearerPrefix = "Bearer "
)

var (
	ErrSessionNotFound = errors.New("session not found in context")
	ErrInvalidSession  = errors.New("invalid session type")
)

// SessionMiddleware authenticates the caller from an "Authorization: Bearer"
// header or, failing that, the session cookie.
func SessionMiddleware(tokenManager *jwt.TokenManager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, cookieName)
		if token == "" {
			_ = c.Error(fmt.Errorf("missing session token")) //nolint:errcheck
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		claims, err := tokenManager.ValidateToken(token)
		if err != nil {
			_ = c.Error(fmt.Errorf("invalid session token: %w", err)) //nolint:errcheck

			message := "Unauthorized"
			if errors.Is(err, jwt.ErrExpiredToken) {
				message = "Session expired"
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": message, "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		session := &models.Session{
			UserID: claims.UserID,
			Email:  claims.Email,
			Name:   claims.Name,
		}
		if claims.ExpiresAt != nil {
			session.ExpiresAt = claims.ExpiresAt.Unix()
		}
		if claims.IssuedAt != nil {
			session.IssuedAt = claims.IssuedAt.Unix()
		}

		c.Set(SessionContextKey, session)
		c.Next()
	}
}

func sessionToken(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	}
	if cookieName == "" {
		return ""
	}
	cookie, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie
}

// GetSession extracts the session from context
func GetSession(c *gin.Context) (*models.Session, error) {
	val, exists := c.Get(SessionContextKey)
	if !exists {
		return nil, ErrSessionNotFound
	}

	session, ok := val.(*models.Session)
	if !ok {
		return nil, ErrInvalidSession
	}

	return session, nil
}
