package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(checks map[string]ReadinessCheck) http.Handler {
	return NewRouter(RouterConfig{Checks: checks}, HandlerSet{
		Generate: func(w http.ResponseWriter, r *http.Request) {
			JSON(w, http.StatusOK, map[string]string{"content": "ok"})
		},
		Quota: func(w http.ResponseWriter, r *http.Request) {
			JSON(w, http.StatusOK, map[string]any{"quota": nil})
		},
	})
}

func do(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(nil)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec, body := do(t, h, method, "/api/claude")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, CodeMethodNotAllowed, body["code"])
		assert.Equal(t, "Method not allowed", body["error"])
	}
}

func TestRouter_BareOptions(t *testing.T) {
	rec, _ := do(t, newTestRouter(nil), http.MethodOptions, "/api/claude")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRouter_Preflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/claude", nil)
	req.Header.Set("Origin", "https://members.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "X-User-ID, X-User-Token, Content-Type")
	rec := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Routes(t *testing.T) {
	h := newTestRouter(nil)

	rec, body := do(t, h, http.MethodPost, "/api/claude")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["content"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec, _ = do(t, h, http.MethodGet, "/api/quota")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = do(t, h, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, body["code"])

	rec, _ = do(t, h, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "contentproxy_http_requests_total")
}

func TestRouter_Health(t *testing.T) {
	healthy := newTestRouter(map[string]ReadinessCheck{
		"store": func(context.Context) error { return nil },
	})
	rec, body := do(t, healthy, http.MethodGet, "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "healthy", body["store"])

	degraded := newTestRouter(map[string]ReadinessCheck{
		"store": func(context.Context) error { return errors.New("down") },
		"nats":  func(context.Context) error { return nil },
	})
	rec, body = do(t, degraded, http.MethodGet, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "unhealthy", body["store"])
	assert.Equal(t, "healthy", body["nats"])

	rec, _ = do(t, degraded, http.MethodGet, "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_IPRateLimiterOnlyGuardsAPI(t *testing.T) {
	blocked := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	h := NewRouter(RouterConfig{IPRateLimiter: blocked}, HandlerSet{
		Generate: func(w http.ResponseWriter, r *http.Request) {},
		Quota:    func(w http.ResponseWriter, r *http.Request) {},
	})

	rec, _ := do(t, h, http.MethodPost, "/api/claude")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleError(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, NewRateLimitError("zu viel").With("limits", map[string]int{"daily": 20, "current": 20}))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "zu viel", body["error"])
	assert.Equal(t, CodeRateLimitExceeded, body["code"])
	assert.Equal(t, map[string]any{"daily": 20.0, "current": 20.0}, body["limits"])

	rec = httptest.NewRecorder()
	HandleError(rec, errors.New("kaputt"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, CodeInternalError, body["code"])
	assert.Equal(t, "Server-Fehler: kaputt", body["error"])
}

func TestAppErrorWithDoesNotMutate(t *testing.T) {
	base := NewAPIError("x")
	_ = base.With("a", 1)
	assert.Nil(t, base.Extra)
}
