package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"taskmanager/internal/auth"
	"taskmanager/internal/logger"
	"taskmanager/internal/middleware"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Init(true); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// TestAuthenticate - шлюз пропускает только валидный bearer-токен
// и кладёт личность в контекст
func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret")
	userID := uuid.New()

	validToken, err := tokens.Issue(userID)
	require.NoError(t, err)

	foreignToken, err := auth.NewTokenManager("other-secret").Issue(userID)
	require.NoError(t, err)

	var gotIdentity middleware.Identity
	var gotOk bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdentity, gotOk = middleware.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.Authenticate(tokens)(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + validToken, wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic dXNlcjpwdw==", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not.a.token", wantStatus: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + foreignToken, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotOk = false

			req := httptest.NewRequest(http.MethodGet, "/tasks/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				require.True(t, gotOk)
				assert.Equal(t, userID, gotIdentity.UserID)
			} else {
				assert.False(t, gotOk)
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

// TestIdentityFromContext_Empty - без шлюза личности в контексте нет
func TestIdentityFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := middleware.IdentityFromContext(req.Context())
	assert.False(t, ok)
}

// TestRequestID тестирует генерацию и проброс X-Request-ID
func TestRequestID(t *testing.T) {
	var gotID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = middleware.GetRequestID(r.Context())
	})
	handler := middleware.RequestID(next)

	t.Run("generated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.NotEmpty(t, gotID)
		assert.Equal(t, gotID, rec.Header().Get("X-Request-ID"))
	})

	t.Run("forwarded", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-123")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, "req-123", gotID)
		assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	})
}

// TestRateLimit - сверх лимита в окне приходит 429
func TestRateLimit(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.RateLimit(2)(next)

	doRequest := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:54321"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := doRequest()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	second := doRequest()
	assert.Equal(t, http.StatusOK, second.Code)

	third := doRequest()
	assert.Equal(t, http.StatusTooManyRequests, third.Code)

	// другой клиент считается отдельно
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:54321"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
