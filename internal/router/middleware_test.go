package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sportline-next/internal/cache"
	"github.com/sportline-next/internal/constants"
	"github.com/sportline-next/internal/models"
	"github.com/sportline-next/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	if strings.TrimSpace(w2.Header().Get(requestIDHeader)) == "" {
		t.Fatalf("generated request id should not be empty")
	}
}

type stubUserRepo struct {
	users map[uint]*models.User
}

func (r *stubUserRepo) WithTx(tx *gorm.DB) repository.UserRepository { return r }

func (r *stubUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (r *stubUserRepo) GetByID(id uint) (*models.User, error) {
	return r.users[id], nil
}

func (r *stubUserRepo) Create(user *models.User) error { return nil }
func (r *stubUserRepo) Update(user *models.User) error { return nil }

func TestSessionAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := cache.NewMemorySessionStore()
	repo := &stubUserRepo{users: map[uint]*models.User{
		1: {ID: 1, Email: "a@example.com", Status: constants.UserStatusActive},
		2: {ID: 2, Email: "b@example.com", Status: constants.UserStatusDisabled},
	}}

	r := gin.New()
	r.GET("/status", SessionAuthMiddleware("sl_session", store, repo), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint("user_id")})
	})

	serve := func(sessionID string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/status", nil)
		if sessionID != "" {
			req.AddCookie(&http.Cookie{Name: "sl_session", Value: sessionID})
		}
		r.ServeHTTP(w, req)
		return w
	}

	readCode := func(t *testing.T, w *httptest.ResponseRecorder) int {
		t.Helper()
		var resp struct {
			StatusCode int `json:"status_code"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response failed: %v", err)
		}
		return resp.StatusCode
	}

	// 无 Cookie
	if code := readCode(t, serve("")); code != 401 {
		t.Fatalf("missing cookie status_code want 401 got %d", code)
	}

	// 未知会话
	if code := readCode(t, serve("no-such-session")); code != 401 {
		t.Fatalf("unknown session status_code want 401 got %d", code)
	}

	// 有效会话
	activeID, err := store.PutUserSession(context.Background(), cache.UserSession{UserID: 1, CreatedAt: time.Now()}, time.Hour)
	if err != nil {
		t.Fatalf("put user session failed: %v", err)
	}
	w := serve(activeID)
	var ok struct {
		UserID uint `json:"user_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ok); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if ok.UserID != 1 {
		t.Fatalf("user_id want 1 got %d", ok.UserID)
	}

	// 禁用账号
	disabledID, err := store.PutUserSession(context.Background(), cache.UserSession{UserID: 2, CreatedAt: time.Now()}, time.Hour)
	if err != nil {
		t.Fatalf("put user session failed: %v", err)
	}
	if code := readCode(t, serve(disabledID)); code != 401 {
		t.Fatalf("disabled user status_code want 401 got %d", code)
	}

	// 用户不存在
	missingID, err := store.PutUserSession(context.Background(), cache.UserSession{UserID: 9, CreatedAt: time.Now()}, time.Hour)
	if err != nil {
		t.Fatalf("put user session failed: %v", err)
	}
	if code := readCode(t, serve(missingID)); code != 401 {
		t.Fatalf("missing user status_code want 401 got %d", code)
	}
}
