package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/api/login", rl.Middleware(KeyByIP), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r
}

func doLogin(r *gin.Engine, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = addr

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	r := limitedRouter(rl)

	for i := 0; i < 3; i++ {
		if w := doLogin(r, "10.0.0.1:4000"); w.Code != http.StatusOK {
			t.Fatalf("request %d got status %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}

	w := doLogin(r, "10.0.0.1:4000")

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("expected a Retry-After header on the throttled response")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	r := limitedRouter(rl)

	if w := doLogin(r, "10.0.0.1:4000"); w.Code != http.StatusOK {
		t.Fatalf("first client got status %d, want %d", w.Code, http.StatusOK)
	}
	if w := doLogin(r, "10.0.0.2:4000"); w.Code != http.StatusOK {
		t.Fatalf("second client got status %d, want %d", w.Code, http.StatusOK)
	}
	if w := doLogin(r, "10.0.0.1:4000"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("throttled client got status %d, want %d", w.Code, http.StatusTooManyRequests)
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)
	r := limitedRouter(rl)

	if w := doLogin(r, "10.0.0.1:4000"); w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	if w := doLogin(r, "10.0.0.1:4000"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	time.Sleep(20 * time.Millisecond)

	if w := doLogin(r, "10.0.0.1:4000"); w.Code != http.StatusOK {
		t.Fatalf("after the window expired got status %d, want %d", w.Code, http.StatusOK)
	}
}
