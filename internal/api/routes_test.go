package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/handler"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/middleware"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func noBans(context.Context, string, string) (*model.UserBan, error) { return nil, nil }

func stubTokens(t *testing.T, users map[string]*model.User) {
	t.Helper()
	prev := middleware.ValidateToken
	middleware.ValidateToken = func(_ context.Context, token string) (*model.User, error) {
		if u, ok := users[token]; ok {
			return u, nil
		}
		return nil, errors.New("token not found or expired")
	}
	t.Cleanup(func() { middleware.ValidateToken = prev })
}

func serve(router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouterAccessLevels(t *testing.T) {
	stubTokens(t, map[string]*model.User{
		"member": {ID: "u1", Nickname: "member"},
		"staff":  {ID: "u2", Nickname: "staff", IsStaff: true},
	})
	router := SetupRouter(&handler.Handler{}, Options{Bans: noBans})

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"root", http.MethodGet, "/", "", http.StatusOK},
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"unknown route", http.MethodGet, "/nowhere", "", http.StatusNotFound},
		{"wrong method", http.MethodDelete, "/rankings", "", http.StatusMethodNotAllowed},
		{"public leaderboard", http.MethodGet, "/rankings", "", http.StatusServiceUnavailable},
		{"me requires auth", http.MethodGet, "/me", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/me/notifications", "expired", http.StatusUnauthorized},
		{"admin requires staff", http.MethodGet, "/admin/dashboard", "member", http.StatusForbidden},
		{"superuser route refuses staff", http.MethodGet, "/admin/users", "staff", http.StatusForbidden},
		{"staff reaches recalc", http.MethodPost, "/admin/rankings/recalculate", "staff", http.StatusServiceUnavailable},
		{"suggestion validation", http.MethodPost, "/suggestions", "", http.StatusBadRequest},
		{"my suggestions require auth", http.MethodGet, "/me/suggestions", "", http.StatusUnauthorized},
		{"suggestions admin only", http.MethodGet, "/admin/suggestions", "member", http.StatusForbidden},
		{"staff rejected bad filter", http.MethodGet, "/admin/suggestions?status=nope", "staff", http.StatusBadRequest},
		{"suggestion delete is superuser", http.MethodDelete, "/admin/suggestions/0b6f4c8e-5f0a-4a39-9d47-2f1c3e9a7b10", "staff", http.StatusForbidden},
		{"unknown notice page", http.MethodGet, "/notices/sidebar", "", http.StatusBadRequest},
		{"delete account requires auth", http.MethodDelete, "/me", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, tt.method, tt.path, tt.token)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouterRejectsBannedClients(t *testing.T) {
	banned := func(context.Context, string, string) (*model.UserBan, error) {
		return &model.UserBan{IsActive: true, Reason: "spam"}, nil
	}
	router := SetupRouter(&handler.Handler{}, Options{Bans: banned})

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/rankings", "").Code)
	// le health check reste accessible
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", "").Code)
}
