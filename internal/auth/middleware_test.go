package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenMiddleware(t *testing.T) {
	manager := newTestJWTManager(t)
	middleware := Middleware{jwtManager: manager}

	var gotUserID, gotEmail, gotName string
	protected := middleware.AccessToken()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = r.Context().Value("userID").(string)
		gotEmail, _ = r.Context().Value("userEmail").(string)
		gotName, _ = r.Context().Value("userName").(string)
		w.WriteHeader(http.StatusOK)
	}))

	token, err := manager.GenerateAccessJWT("user-1", "john@example.com", "John", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/protected/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", gotUserID)
	assert.Equal(t, "john@example.com", gotEmail)
	assert.Equal(t, "John", gotName)
}

func TestAccessTokenMiddleware_Rejections(t *testing.T) {
	manager := newTestJWTManager(t)
	middleware := Middleware{jwtManager: manager}

	protected := middleware.AccessToken()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	expired, err := manager.GenerateAccessJWT("user-1", "john@example.com", "John", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not a bearer token", header: "Basic abc123"},
		{name: "garbage token", header: "Bearer garbage"},
		{name: "expired token", header: "Bearer " + expired},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/protected/transactions", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRefreshTokenMiddleware(t *testing.T) {
	manager := newTestJWTManager(t)
	middleware := Middleware{jwtManager: manager}

	var gotUserID string
	handler := middleware.RefreshToken()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = r.Context().Value("userID").(string)
		w.WriteHeader(http.StatusOK)
	}))

	token, err := manager.GenerateRefreshJWT("user-9", "hash-token", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/refresh/token", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-9", gotUserID)
}

func TestRefreshTokenMiddleware_MissingCookie(t *testing.T) {
	manager := newTestJWTManager(t)
	middleware := Middleware{jwtManager: manager}

	handler := middleware.RefreshToken()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodPut, "/api/refresh/token", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
