package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"upi-ledger-backend/internal/models"
)

type fakeSessions struct {
	sessions map[string]*models.Session
	users    map[uuid.UUID]*models.User
}

func (f *fakeSessions) FindByToken(token string) (*models.Session, error) {
	if s, ok := f.sessions[token]; ok {
		return s, nil
	}
	return nil, errors.New("record not found")
}

func (f *fakeSessions) UserByID(id uuid.UUID) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("record not found")
}

func authRouter(store *fakeSessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireSession(store), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": CurrentUser(c).Email})
	})
	r.POST("/admin", RequireSession(store), RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})
	return r
}

func fakeStoreWith(role string) (*fakeSessions, string) {
	userID := uuid.New()
	token := "tok-" + role
	return &fakeSessions{
		sessions: map[string]*models.Session{
			token: {ID: uuid.New(), Token: token, UserID: userID, ExpiresAt: time.Now().Add(time.Hour)},
		},
		users: map[uuid.UUID]*models.User{
			userID: {ID: userID, Email: role + "@example.com", Role: role},
		},
	}, token
}

func do(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireSessionMissingCookie(t *testing.T) {
	store, _ := fakeStoreWith("user")
	if w := do(authRouter(store), http.MethodGet, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireSessionUnknownToken(t *testing.T) {
	store, _ := fakeStoreWith("user")
	if w := do(authRouter(store), http.MethodGet, "/me", "bogus"); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireSessionExpired(t *testing.T) {
	store, token := fakeStoreWith("user")
	store.sessions[token].ExpiresAt = time.Now().Add(-time.Minute)
	if w := do(authRouter(store), http.MethodGet, "/me", token); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireSessionValid(t *testing.T) {
	store, token := fakeStoreWith("user")
	w := do(authRouter(store), http.MethodGet, "/me", token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestRequireAdminForbidsRegularUser(t *testing.T) {
	store, token := fakeStoreWith("user")
	if w := do(authRouter(store), http.MethodPost, "/admin", token); w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	store, token := fakeStoreWith("admin")
	if w := do(authRouter(store), http.MethodPost, "/admin", token); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
