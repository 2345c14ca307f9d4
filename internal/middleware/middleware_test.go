// AngelaMos | 2026
// middleware_test.go

package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/freelancehub/internal/config"
	"github.com/carterperez-dev/freelancehub/internal/core"
)

// ============================================================================
// Mocks
// ============================================================================

type mockVerifier struct {
	verifyFunc func(ctx context.Context, token string) (*AccessTokenClaims, error)
}

func (m *mockVerifier) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*AccessTokenClaims, error) {
	return m.verifyFunc(ctx, token)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body core.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

// ============================================================================
// Authenticator
// ============================================================================

func TestAuthenticator_MissingToken(t *testing.T) {
	verifier := &mockVerifier{
		verifyFunc: func(context.Context, string) (*AccessTokenClaims, error) {
			t.Fatal("verifier must not be called")
			return nil, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/gigs", nil)
	Authenticator(verifier)(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
}

func TestAuthenticator_MapsVerifierErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"expired", fmt.Errorf("parse: %w", core.ErrTokenExpired), "TOKEN_EXPIRED"},
		{"revoked", core.ErrTokenRevoked, "TOKEN_REVOKED"},
		{"garbage", fmt.Errorf("bad signature"), "TOKEN_INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &mockVerifier{
				verifyFunc: func(context.Context, string) (*AccessTokenClaims, error) {
					return nil, tt.err
				},
			}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/gigs", nil)
			req.Header.Set("Authorization", "Bearer abc")
			Authenticator(verifier)(okHandler()).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestAuthenticator_StoresPrincipal(t *testing.T) {
	verifier := &mockVerifier{
		verifyFunc: func(_ context.Context, token string) (*AccessTokenClaims, error) {
			assert.Equal(t, "good-token", token)
			return &AccessTokenClaims{
				UserID: 9,
				Email:  "ann@example.com",
				Role:   core.RoleClient,
				JTI:    "jti-1",
			}, nil
		},
	}

	var got *core.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetPrincipal(r.Context())
		assert.Equal(t, "jti-1", GetClaims(r.Context()).JTI)
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/gigs", nil)
	req.Header.Set("Authorization", "bearer good-token")
	Authenticator(verifier)(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, int64(9), got.UserID)
	assert.Equal(t, core.RoleClient, got.Role)
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(core.RoleClient)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/gigs", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/gigs", nil)
	req = req.WithContext(WithPrincipal(req.Context(), core.Principal{
		UserID: 2, Role: core.RoleFreelancer,
	}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/gigs", nil)
	req = req.WithContext(WithPrincipal(req.Context(), core.Principal{
		UserID: 1, Role: core.RoleClient,
	}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExtractToken(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"Bearer":          "",
		"Basic dXNlcg==":  "",
		"Bearer  tok ":    "tok",
		"BEARER tok.en.x": "tok.en.x",
	}

	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, ExtractToken(req), header)
	}
}

// ============================================================================
// RequestID, Logger, Recoverer
// ============================================================================

func TestRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	})

	rec := httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	rec = httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, req)
	assert.Equal(t, "upstream-id", seen)
}

func TestLogger_CapturesStatus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	Logger(logger)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestLogger_RecordsAuthenticatedUser(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	verifier := &mockVerifier{
		verifyFunc: func(context.Context, string) (*AccessTokenClaims, error) {
			return &AccessTokenClaims{UserID: 42, Role: core.RoleClient}, nil
		},
	}

	handler := Logger(logger)(Authenticator(verifier)(okHandler()))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), "user_id=42")
}

func TestRecoverer(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	Recoverer(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, rec))
	assert.NotContains(t, rec.Body.String(), "boom")
}

// ============================================================================
// Headers
// ============================================================================

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(true)(okHandler()).ServeHTTP(
		rec,
		httptest.NewRequest(http.MethodGet, "/", nil),
	)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))

	rec = httptest.NewRecorder()
	SecurityHeaders(false)(okHandler()).ServeHTTP(
		rec,
		httptest.NewRequest(http.MethodGet, "/", nil),
	)
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestCORS(t *testing.T) {
	handler := CORS(config.CORSConfig{
		AllowedOrigins:   []string{"https://app.example.com"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/v1/gigs", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/v1/gigs", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

// ============================================================================
// Rate limiting
// ============================================================================

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr:        mr.Addr(),
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRateLimiter_FallsBackWhenRedisDown(t *testing.T) {
	mr, client := setupTestRedis(t)
	mr.Close()

	rl := NewRateLimiter(client, RateLimitConfig{
		Limit:    PerMinute(2, 2),
		FailOpen: true,
	})
	handler := rl.Handler(okHandler())

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)

		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, "RATE_LIMITED", errorCode(t, rec))
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		}
	}

	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestRateLimiter_Bypass(t *testing.T) {
	_, client := setupTestRedis(t)

	rl := NewRateLimiter(client, RateLimitConfig{
		Limit:      PerMinute(1, 1),
		BypassFunc: func(r *http.Request) bool { return r.URL.Path == "/healthz" },
	})
	handler := rl.Handler(okHandler())

	for range 5 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestKeyFunctions(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.4:1234"
	assert.Equal(t, "freelancehub:ratelimit:ip:198.51.100.4", KeyByIP(req))

	req.Header.Set("X-Forwarded-For", "10.0.0.1, 192.0.2.9")
	assert.Equal(t, "freelancehub:ratelimit:ip:198.51.100.4", KeyByIP(req))
	assert.Equal(t, "freelancehub:ratelimit:ip:192.0.2.9", KeyByForwardedIP(req))
	assert.Equal(t, "freelancehub:ratelimit:ip:192.0.2.9:auth", KeyByIPAndPrefix("auth", true)(req))
	assert.Equal(t, "freelancehub:ratelimit:ip:198.51.100.4:auth", KeyByIPAndPrefix("auth", false)(req))

	req = req.WithContext(WithPrincipal(req.Context(), core.Principal{UserID: 12, Role: core.RoleClient}))
	assert.Equal(t, "freelancehub:ratelimit:user:12", KeyByUser(req))
}

func TestClientIP_IgnoresSpoofedHeadersWithoutProxy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/login", nil)
	req.RemoteAddr = "203.0.113.7:5000"

	for i := range 3 {
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.1.1.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("10.2.2.%d", i))
		assert.Equal(t, "203.0.113.7", ClientIP(req, false))
	}

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "10.2.2.2", ClientIP(req, true))
}

func TestAuthLimiter_HeaderRotationDoesNotResetBudget(t *testing.T) {
	_, client := setupTestRedis(t)

	handler := NewRateLimiter(client, RateLimitConfig{
		Limit:   PerMinute(2, 2),
		KeyFunc: KeyByIPAndPrefix("auth", false),
	}).Handler(okHandler())

	codes := make([]int, 0, 4)
	for i := range 4 {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.9.9.%d", i))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, http.StatusTooManyRequests, codes[len(codes)-1])
}

func TestLocalLimiter_ConcurrentAllow(t *testing.T) {
	l := &localLimiter{}
	limit := PerMinute(1000, 1000)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				res, err := l.allow("k", limit)
				assert.NoError(t, err)
				assert.NotNil(t, res)
			}
		}()
	}
	wg.Wait()

	v, ok := l.limiters.Load("k")
	require.True(t, ok)
	entry := v.(*limiterEntry)
	assert.InDelta(t, time.Now().Unix(), entry.lastAccess.Load(), 2)
}
