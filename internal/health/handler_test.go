// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func healthy(context.Context) error { return nil }

func TestLiveness(t *testing.T) {
	h := NewHandler()
	router := setupTestRouter(h)

	for _, path := range []string{"/healthz", "/livez"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	h.SetShutdown(true)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "shutting_down")
}

func TestReadiness_AllHealthy(t *testing.T) {
	h := NewHandler().
		AddCheck("database", CheckerFunc(healthy)).
		AddCheck("redis", CheckerFunc(healthy))

	rec := httptest.NewRecorder()
	setupTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	require.Len(t, body.Checks, 2)
	assert.Equal(t, "database", body.Checks[0].Name)
	assert.Equal(t, "redis", body.Checks[1].Name)
}

func TestReadiness_Degraded(t *testing.T) {
	h := NewHandler().
		AddCheck("database", CheckerFunc(healthy)).
		AddCheck("redis", CheckerFunc(func(context.Context) error {
			return errors.New("connection refused")
		})).
		AddCheck("missing", nil)

	rec := httptest.NewRecorder()
	setupTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.True(t, body.Checks[0].Healthy)
	assert.False(t, body.Checks[1].Healthy)
	assert.Equal(t, "ping failed", body.Checks[1].Message)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.False(t, body.Checks[2].Healthy)
}

func TestReadiness_NotReady(t *testing.T) {
	h := NewHandler()
	h.SetReady(false)

	rec := httptest.NewRecorder()
	setupTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_ready")
}
