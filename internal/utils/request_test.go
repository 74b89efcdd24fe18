package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestDecodeAndValidate(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"pik","password":"longenough"}`))
	var dest signup
	require.NoError(t, DecodeAndValidate(r, &dest))
	assert.Equal(t, "pik", dest.Username)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"pik","password":"short"}`))
	err := DecodeAndValidate(r, &dest)
	assert.ErrorContains(t, err, "Password")

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"pik","unknown":1}`))
	assert.ErrorContains(t, DecodeAndValidate(r, &dest), "invalid request body")
}

func TestGetToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetToken(r)
	assert.Error(t, err)

	r.Header.Set("Authorization", "Bearer abc")
	token, err := GetToken(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	r.Header.Set("Authorization", "raw-token")
	token, _ = GetToken(r)
	assert.Equal(t, "raw-token", token)
}

func TestPagination(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=3&pageSize=500", nil)
	page, size := Pagination(r, 12, 50)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, size)

	r = httptest.NewRequest(http.MethodGet, "/?page=-1", nil)
	page, size = Pagination(r, 12, 50)
	assert.Equal(t, 1, page)
	assert.Equal(t, 12, size)
}

func trustProxies(t *testing.T, entries ...string) {
	t.Helper()
	require.NoError(t, SetTrustedProxies(entries))
	t.Cleanup(func() { require.NoError(t, SetTrustedProxies(nil)) })
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:5555"
	assert.Equal(t, "203.0.113.9", ClientIP(r))

	// pair non déclaré : l'en-tête est ignoré
	r.Header.Set("X-Forwarded-For", "198.51.100.2, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(r))
}

func TestClientIPBehindTrustedProxy(t *testing.T) {
	trustProxies(t, "10.0.0.0/8", "192.0.2.7")

	tests := []struct {
		name   string
		remote string
		xff    []string
		want   string
	}{
		{"no header", "10.0.0.5:443", nil, "10.0.0.5"},
		{"single hop", "10.0.0.5:443", []string{"198.51.100.2"}, "198.51.100.2"},
		{"spoofed left part", "10.0.0.5:443", []string{"1.2.3.4, 198.51.100.2"}, "198.51.100.2"},
		{"proxy chain", "10.0.0.5:443", []string{"198.51.100.2, 192.0.2.7, 10.1.1.1"}, "198.51.100.2"},
		{"repeated headers", "10.0.0.5:443", []string{"1.2.3.4", "198.51.100.3"}, "198.51.100.3"},
		{"only proxies", "10.0.0.5:443", []string{"10.2.2.2, 10.3.3.3"}, "10.2.2.2"},
		{"garbage hop", "10.0.0.5:443", []string{"1.2.3.4, not-an-ip"}, "10.0.0.5"},
		{"untrusted peer", "203.0.113.9:5555", []string{"198.51.100.2"}, "203.0.113.9"},
		{"ipv4 mapped peer", "[::ffff:10.0.0.5]:443", []string{"198.51.100.4"}, "198.51.100.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for _, v := range tt.xff {
				r.Header.Add("X-Forwarded-For", v)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func TestSetTrustedProxiesRejectsGarbage(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, SetTrustedProxies(nil)) })
	assert.Error(t, SetTrustedProxies([]string{"10.0.0.0/8", "proxy.local"}))
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorSimple(rec, http.StatusConflict, "already reported")

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "already reported", body.Error)
}
