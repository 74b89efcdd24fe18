package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/config"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func stubTokens(t *testing.T, users map[string]*model.User) {
	t.Helper()
	prev := ValidateToken
	ValidateToken = func(_ context.Context, token string) (*model.User, error) {
		if u, ok := users[token]; ok {
			return u, nil
		}
		return nil, errors.New("token not found or expired")
	}
	t.Cleanup(func() { ValidateToken = prev })
}

func TestAuthMiddleware(t *testing.T) {
	stubTokens(t, map[string]*model.User{"good": {ID: "u1", Nickname: "bloom"}})

	var seen *model.User
	h := AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CurrentUser(r)
		token, err := GetTokenFromContext(r)
		assert.NoError(t, err)
		assert.Equal(t, "good", token)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u1", seen.ID)
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	stubTokens(t, nil)
	h := OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Nil(t, CurrentUser(r))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer unknown")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireStaffAndSuperuser(t *testing.T) {
	member := &model.User{ID: "m"}
	staff := &model.User{ID: "s", IsStaff: true}
	super := &model.User{ID: "a", IsSuperuser: true}

	tests := []struct {
		name      string
		user      *model.User
		wantStaff int
		wantSuper int
	}{
		{"anonymous", nil, http.StatusUnauthorized, http.StatusUnauthorized},
		{"member", member, http.StatusForbidden, http.StatusForbidden},
		{"staff", staff, http.StatusOK, http.StatusForbidden},
		{"superuser", super, http.StatusOK, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.user != nil {
				req = WithUser(req, tt.user)
			}

			rec := httptest.NewRecorder()
			RequireStaff(okHandler).ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStaff, rec.Code)

			rec = httptest.NewRecorder()
			RequireSuperuser(okHandler).ServeHTTP(rec, req)
			assert.Equal(t, tt.wantSuper, rec.Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORSMiddleware([]string{"https://pikmin.example"})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/coordinates", nil)
	req.Header.Set("Origin", "https://pikmin.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://pikmin.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/coordinates", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestBanCheck(t *testing.T) {
	future := time.Now().Add(time.Hour)
	lookup := func(_ context.Context, userID, ip string) (*model.UserBan, error) {
		if ip == "203.0.113.9" || userID == "banned" {
			return &model.UserBan{IsActive: true, Reason: "spam", ExpiresAt: &future}, nil
		}
		if ip == "203.0.113.10" {
			return nil, errors.New("db down")
		}
		return nil, nil
	}
	h := BanCheck(lookup)(okHandler)

	serve := func(path, ip string, user *model.User) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = ip + ":1234"
		if user != nil {
			req = WithUser(req, user)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, serve("/coordinates", "203.0.113.9", nil))
	assert.Equal(t, http.StatusForbidden, serve("/coordinates", "198.51.100.1", &model.User{ID: "banned"}))
	assert.Equal(t, http.StatusOK, serve("/auth/logout", "203.0.113.9", nil))
	assert.Equal(t, http.StatusOK, serve("/health", "203.0.113.9", nil))
	assert.Equal(t, http.StatusOK, serve("/coordinates", "198.51.100.1", nil))
	assert.Equal(t, http.StatusOK, serve("/coordinates", "203.0.113.10", nil), "lookup errors fail open")
}

type fakeLocator map[string]string

func (f fakeLocator) Country(_ context.Context, ip string) (string, error) {
	if c, ok := f[ip]; ok {
		return c, nil
	}
	return "", errors.New("lookup failed")
}

func TestLanguageMiddleware(t *testing.T) {
	locator := fakeLocator{"203.0.113.1": "JP", "203.0.113.2": "FR"}

	tests := []struct {
		name   string
		query  string
		cookie string
		ip     string
		accept string
		want   string
	}{
		{"query wins", "en", "ja", "203.0.113.1", "", "en"},
		{"cookie", "", "ja", "203.0.113.2", "", "ja"},
		{"unsupported query ignored", "fr", "", "203.0.113.1", "", "ja"},
		{"ip country", "", "", "203.0.113.1", "ko", "ja"},
		{"other country is english", "", "", "203.0.113.2", "", "en"},
		{"accept-language fallback", "", "", "198.51.100.7", "ja-JP,ja;q=0.9", "ja"},
		{"default korean", "", "", "198.51.100.7", "", "ko"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := LanguageMiddleware(locator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = LanguageFromContext(r)
			}))

			target := "/"
			if tt.query != "" {
				target += "?lang=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			req.RemoteAddr = tt.ip + ":5000"
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LanguageCookie, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRateLimiterOnlyLimitsWrites(t *testing.T) {
	limiter, err := NewRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2})
	require.NoError(t, err)
	h := limiter.Middleware(okHandler)

	codes := func(method, ip string, n int) []int {
		var out []int
		for i := 0; i < n; i++ {
			req := httptest.NewRequest(method, "/coordinates", nil)
			req.RemoteAddr = ip + ":1"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			out = append(out, rec.Code)
		}
		return out
	}

	assert.Equal(t, []int{200, 200, 200, 200}, codes(http.MethodGet, "203.0.113.1", 4))
	assert.Equal(t, []int{200, 200, 429}, codes(http.MethodPost, "203.0.113.1", 3))
	assert.Equal(t, []int{200}, codes(http.MethodPost, "203.0.113.2", 1), "limits are per IP")
}

func TestRateLimiterIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	limiter, err := NewRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1})
	require.NoError(t, err)
	h := limiter.Middleware(okHandler)

	var got []int
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/coordinates", nil)
		req.RemoteAddr = "203.0.113.50:1"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		got = append(got, rec.Code)
	}
	assert.Equal(t, []int{200, 429, 429, 429}, got)
}

func TestRateLimiterKeysOnClientBehindTrustedProxy(t *testing.T) {
	require.NoError(t, utils.SetTrustedProxies([]string{"10.0.0.0/8"}))
	t.Cleanup(func() { require.NoError(t, utils.SetTrustedProxies(nil)) })

	limiter, err := NewRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1})
	require.NoError(t, err)
	h := limiter.Middleware(okHandler)

	post := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/coordinates", nil)
		req.RemoteAddr = "10.0.0.2:1"
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post("198.51.100.1"))
	assert.Equal(t, http.StatusOK, post("198.51.100.2"), "each client behind the proxy has its own bucket")
	assert.Equal(t, http.StatusTooManyRequests, post("6.6.6.6, 198.51.100.1"))
}
