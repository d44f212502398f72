package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedHandler() http.Handler {
	return SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestSessionMiddlewarePublicPaths(t *testing.T) {
	h := protectedHandler()
	for _, path := range []string{
		"/api/v1/auth/login",
		"/api/v1/auth/status",
		"/api/v1/health",
		"/api/v1/playlists/3/export.m3u",
		"/",
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, "path %q", path)
	}
}

func TestSessionMiddlewareRejectsMissingToken(t *testing.T) {
	h := protectedHandler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/playlists", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionMiddlewareRejectsMalformedHeader(t *testing.T) {
	h := protectedHandler()
	req := httptest.NewRequest("GET", "/api/v1/playlists", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionMiddlewareAcceptsValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := GenerateToken(1, "alice", false, false)
	require.NoError(t, err)

	var claims *Claims
	h := SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ = GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/v1/playlists", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, claims)
	assert.Equal(t, "alice", claims.Username)
}

func TestRequireAdmin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := SessionMiddleware(RequireAdmin(inner))

	userToken, err := GenerateToken(1, "bob", false, false)
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/api/v1/playlists", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminToken, err := GenerateToken(2, "root", true, false)
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/api/v1/playlists", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
