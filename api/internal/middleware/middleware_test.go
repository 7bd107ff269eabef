package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() { gin.SetMode(gin.TestMode) }

type memCounter struct {
	mu   sync.Mutex
	hits map[string]int64
	err  error
}

func (m *memCounter) Hit(_ context.Context, key string, _ time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hits == nil {
		m.hits = map[string]int64{}
	}
	m.hits[key]++
	return m.hits[key], nil
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })
	return r
}

func do(r http.Handler, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	r := newRouter(RateLimit(&memCounter{}, 2, zap.NewNop()))

	for i := 0; i < 2; i++ {
		if w := do(r, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}
	w := do(r, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := newRouter(RateLimit(&memCounter{err: errors.New("redis down")}, 1, zap.New(core)))
	for i := 0; i < 3; i++ {
		if w := do(r, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}
	if logs.Len() != 3 {
		t.Errorf("got %d warnings, want 3", logs.Len())
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	r := newRouter(RateLimit(nil, 1, zap.NewNop()))
	for i := 0; i < 3; i++ {
		if w := do(r, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}
}

func TestRequestID(t *testing.T) {
	r := newRouter(RequestID())

	w := do(r, nil)
	id := w.Header().Get(RequestIDHeader)
	if len(id) != 36 || w.Body.String() != id {
		t.Errorf("generated id = %q, body = %q", id, w.Body.String())
	}

	w = do(r, map[string]string{RequestIDHeader: "abc-123"})
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("reused id = %q", got)
	}

	w = do(r, map[string]string{RequestIDHeader: strings.Repeat("x", 200)})
	if got := w.Header().Get(RequestIDHeader); len(got) != 36 {
		t.Errorf("oversized id not replaced: %q", got)
	}
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newRouter(RequestID(), Logger(zap.New(core)))
	do(r, map[string]string{RequestIDHeader: "req-1"})

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" || fields["path"] != "/x" || fields["status"] != int64(http.StatusOK) {
		t.Errorf("fields = %v", fields)
	}
}
