package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"upi-ledger-backend/internal/models"
)

const userContextKey = "current_user"

// SessionStore looks up sessions and their users.
type SessionStore interface {
	FindByToken(token string) (*models.Session, error)
	UserByID(id uuid.UUID) (*models.User, error)
}

// RequireSession validates the session_token cookie against the session
// store and puts the resolved user on the request context.
func RequireSession(sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("session_token")
		if err != nil || token == "" {
			abort(c, http.StatusUnauthorized, "session token not provided")
			return
		}

		session, err := sessions.FindByToken(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid session")
			return
		}
		if session.ExpiresAt.Before(time.Now()) {
			abort(c, http.StatusUnauthorized, "session expired")
			return
		}

		user, err := sessions.UserByID(session.UserID)
		if err != nil {
			abort(c, http.StatusUnauthorized, "user not found")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireAdmin must run after RequireSession.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != "admin" {
			abort(c, http.StatusForbidden, "insufficient permissions")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user resolved by RequireSession, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"status": "error", "message": message})
}
