package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestCompositeHealthChecker(t *testing.T) {
	t.Run("no checks", func(t *testing.T) {
		status := NewCompositeHealthChecker("v1").Check(context.Background())
		assert.True(t, status.Ready)
		assert.Equal(t, "No health checks registered", status.Message)
	})

	t.Run("all pass", func(t *testing.T) {
		c := NewCompositeHealthChecker("v1")
		c.AddCheck("postgres", NewPingCheck(pinger{}))
		c.AddOptionalCheck("redis", NewPingCheck(pinger{}))

		status := c.Check(context.Background())
		assert.True(t, status.Healthy)
		assert.Equal(t, "All checks passed", status.Message)
		assert.Len(t, status.Checks, 2)
		assert.Equal(t, "v1", status.Version)
	})

	t.Run("optional failure degrades", func(t *testing.T) {
		c := NewCompositeHealthChecker("v1")
		c.AddCheck("postgres", NewPingCheck(pinger{}))
		c.AddOptionalCheck("redis", NewPingCheck(pinger{err: errors.New("refused")}))

		status := c.Check(context.Background())
		assert.True(t, status.Healthy)
		assert.True(t, status.Ready)
		assert.Equal(t, "Degraded: redis", status.Message)
		assert.True(t, status.Checks["redis"].Optional)
		assert.Equal(t, "refused", status.Checks["redis"].Message)
	})

	t.Run("required failure", func(t *testing.T) {
		c := NewCompositeHealthChecker("v1")
		c.AddCheck("postgres", NewPingCheck(pinger{err: errors.New("down")}))
		c.AddCheck("disk", NewPingCheck(pinger{err: errors.New("full")}))

		status := c.Check(context.Background())
		assert.False(t, status.Healthy)
		assert.False(t, status.Ready)
		assert.Equal(t, "Some checks failed: disk, postgres", status.Message)
	})

	t.Run("slow check times out", func(t *testing.T) {
		c := NewCompositeHealthChecker("v1")
		c.SetTimeout(10 * time.Millisecond)
		c.AddCheck("slow", func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})

		status := c.Check(context.Background())
		assert.False(t, status.Ready)
		assert.Equal(t, context.DeadlineExceeded.Error(), status.Checks["slow"].Message)
	})
}

func TestNoopHealthChecker(t *testing.T) {
	status := NewNoopHealthChecker().Check(context.Background())
	assert.True(t, status.Healthy)
	assert.True(t, status.Ready)
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) MiddlewareFunc {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := ChainHandler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mark("outer"), mark("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestTimeoutMiddleware_SetsDeadline(t *testing.T) {
	var deadline time.Time
	var ok bool
	h := TimeoutMiddleware(time.Second)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
}

func TestCacheControlMiddleware(t *testing.T) {
	h := CacheControlMiddleware(90*time.Second, true)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "private, max-age=90", rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	called := false
	h := RequestSizeLimitMiddleware(8)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"too long"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.False(t, called)
	assert.Contains(t, rec.Body.String(), "payload_too_large")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	assert.True(t, called)
}
