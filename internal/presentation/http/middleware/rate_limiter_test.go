package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newLimitedRouter(burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	rl := NewSessionRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         burst,
		CleanupInterval:   time.Hour,
		EntryTTL:          time.Hour,
	})

	router := gin.New()
	sessions := router.Group("/sessions")
	sessions.Use(rl.Middleware())
	sessions.GET("/:id", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	return router
}

func TestSessionRateLimiterRejectsWithEnvelope(t *testing.T) {
	router := newLimitedRouter(1)
	id := uuid.New().String()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/"+id, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first request: status %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/"+id, nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Errorf("Retry-After = %q", w.Header().Get("Retry-After"))
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success {
		t.Errorf("rejection must carry success=false")
	}
	if resp.Message == "" {
		t.Errorf("rejection must carry a message")
	}
}

func TestSessionRateLimiterIsPerSession(t *testing.T) {
	router := newLimitedRouter(1)

	first := uuid.New().String()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/"+first, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first session: status %d", w.Code)
	}

	// A different session has its own bucket.
	other := uuid.New().String()
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/"+other, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("other session: status %d, want 200", w.Code)
	}
}

func TestSessionRateLimiterSkipsNonSessionRoutes(t *testing.T) {
	router := newLimitedRouter(1)

	// Bad IDs pass through; the handler owns that rejection.
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/not-a-uuid", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d, want pass-through", i, w.Code)
		}
	}
}
