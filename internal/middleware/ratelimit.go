package middleware

import (
	"fmt"
	"net/http"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/config"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/time/rate"
)

// maxTrackedIPs borne la mémoire : les IP les moins récentes perdent leur limiteur
const maxTrackedIPs = 10000

// RateLimiter limite les requêtes d'écriture par IP
type RateLimiter struct {
	limiters *lru.Cache
	rps      rate.Limit
	burst    int
}

// NewRateLimiter crée le limiteur à partir de la config
func NewRateLimiter(cfg config.RateLimitConfig) (*RateLimiter, error) {
	cache, err := lru.New(maxTrackedIPs)
	if err != nil {
		return nil, fmt.Errorf("create limiter cache: %w", err)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{limiters: cache, rps: rate.Limit(cfg.RPS), burst: burst}, nil
}

// getLimiter retrieves or creates a rate limiter for the given IP.
func (l *RateLimiter) getLimiter(ip string) *rate.Limiter {
	if v, ok := l.limiters.Get(ip); ok {
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(l.rps, l.burst)
	if prev, ok, _ := l.limiters.PeekOrAdd(ip, limiter); ok {
		return prev.(*rate.Limiter)
	}
	return limiter
}

// Middleware n'applique la limite qu'aux méthodes qui écrivent
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		if !l.getLimiter(utils.ClientIP(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			utils.ErrorSimple(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
