package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/warden/internal/auth"
	"github.com/gosuda/warden/internal/server/middleware"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// contextHandler captures context values set by middleware so tests can
// assert that the correct actor and role were injected.
type contextHandler struct {
	actorID uuid.UUID
	role    string
	called  bool
}

func (h *contextHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.actorID, _ = middleware.ActorIDFromContext(r.Context())
	h.role, _ = middleware.RoleFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

// okHandler is a simple handler that writes 200 OK.
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

func TestAuth_ValidToken(t *testing.T) {
	t.Parallel()

	actorID := uuid.New()
	token, err := auth.IssueToken(testSecret, actorID, middleware.RoleAdmin, time.Hour)
	require.NoError(t, err)

	captured := &contextHandler{}
	handler := middleware.Auth(testSecret)(captured)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, captured.called)
	assert.Equal(t, actorID, captured.actorID)
	assert.Equal(t, middleware.RoleAdmin, captured.role)
}

func TestAuth_Rejections(t *testing.T) {
	t.Parallel()

	expired, err := auth.IssueToken(testSecret, uuid.New(), middleware.RoleAdmin, -time.Minute)
	require.NoError(t, err)

	wrongKey, err := auth.IssueToken("another-secret-another-secret-xx", uuid.New(), middleware.RoleAdmin, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "not bearer", header: "Basic dXNlcjpwYXNz"},
		{name: "garbage token", header: "Bearer not.a.token"},
		{name: "expired token", header: "Bearer " + expired},
		{name: "wrong signing key", header: "Bearer " + wrongKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			captured := &contextHandler{}
			handler := middleware.Auth(testSecret)(captured)

			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, captured.called)
		})
	}
}

// ---------------------------------------------------------------------------
// Rate limiting
// ---------------------------------------------------------------------------

func TestRateLimitByIP_EnforcesBurst(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimitByIP(ctx, 1, 2)(okHandler)

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.RemoteAddr = "203.0.113.7:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitByIP_IsolatesClients(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimitByIP(ctx, 1, 1)(okHandler)

	// Exhaust one client's budget.
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.RemoteAddr = "203.0.113.7:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different client is unaffected.
	other := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	other.RemoteAddr = "198.51.100.9:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_PerActor(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx, 1, 1)(okHandler)

	withActor := func(id uuid.UUID) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		return req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyActorID, id))
	}

	actorA := uuid.New()
	actorB := uuid.New()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withActor(actorA))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withActor(actorA))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withActor(actorB))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_SkipsWithoutActor(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx, 1, 1)(okHandler)

	for range 5 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
