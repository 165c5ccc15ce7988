package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestHTTPMiddleware(t *testing.T) {
	svc := newTestJWTService(t)
	token, err := svc.GenerateToken(testIdentity())
	require.NoError(t, err)

	skipHealth := func(r *http.Request) bool { return r.URL.Path == "/healthz" }
	handler := HTTPMiddleware(svc, skipHealth)(okHandler())

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "skipped path", path: "/healthz", want: http.StatusOK},
		{name: "missing header", path: "/api/v1/applications", want: http.StatusUnauthorized},
		{name: "wrong scheme", path: "/api/v1/applications", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "garbage token", path: "/api/v1/applications", header: "Bearer not-a-jwt", want: http.StatusUnauthorized},
		{name: "valid token", path: "/api/v1/applications", header: "Bearer " + token, want: http.StatusOK},
		{name: "lowercase scheme", path: "/api/v1/applications", header: "bearer " + token, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequirePermission(t *testing.T) {
	guarded := RequirePermission("DELETE_LOANS", okHandler())

	t.Run("no claims", func(t *testing.T) {
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/x", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing permission", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/x", nil)
		req = req.WithContext(ContextWithClaims(req.Context(), &Claims{Permissions: []string{"READ_LOANS"}}))
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "DELETE_LOANS")
	})

	t.Run("granted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/x", nil)
		req = req.WithContext(ContextWithClaims(req.Context(), &Claims{Permissions: []string{"DELETE_LOANS"}}))
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
