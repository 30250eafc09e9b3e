package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/auth"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/config"
	"go.uber.org/zap"
)

// RateLimiter throttles the API per client. Anonymous traffic (login,
// the public signing page) is keyed by IP; authenticated traffic by
// user id, so one office behind a NAT is not throttled as a unit.
type RateLimiter struct {
	cfg         *config.RateLimitConfig
	logger      *zap.Logger
	anonymous   func(http.Handler) http.Handler
	perUser     func(http.Handler) http.Handler
	exemptIPs   map[string]struct{}
	exemptPaths []string
}

func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		cfg:         cfg,
		logger:      logger,
		exemptIPs:   make(map[string]struct{}, len(cfg.WhitelistIPs)),
		exemptPaths: cfg.WhitelistPaths,
	}
	for _, ip := range cfg.WhitelistIPs {
		rl.exemptIPs[ip] = struct{}{}
	}

	rl.anonymous = httprate.Limit(
		cfg.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rl.limitExceeded),
	)
	rl.perUser = httprate.Limit(
		cfg.RequestsPerMinuteAuth,
		time.Minute,
		httprate.WithKeyFuncs(rl.keyByUser),
		httprate.WithLimitHandler(rl.limitExceeded),
	)

	return rl
}

// Limit throttles by user when authenticated, by IP otherwise
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.exempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		if _, ok := auth.FromContext(r.Context()); ok {
			rl.perUser(next).ServeHTTP(w, r)
			return
		}
		rl.anonymous(next).ServeHTTP(w, r)
	})
}

// LimitByIP throttles by IP only; applied ahead of authentication
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.exempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		rl.anonymous(next).ServeHTTP(w, r)
	})
}

// exempt reports whether the request skips throttling entirely. Paths
// ending in /* match by prefix; health probes use this.
func (rl *RateLimiter) exempt(r *http.Request) bool {
	for _, p := range rl.exemptPaths {
		if p == r.URL.Path {
			return true
		}
		if strings.HasSuffix(p, "/*") && strings.HasPrefix(r.URL.Path, strings.TrimSuffix(p, "/*")) {
			return true
		}
	}
	_, ok := rl.exemptIPs[clientIP(r)]
	return ok
}

func (rl *RateLimiter) keyByUser(r *http.Request) (string, error) {
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		return "user:" + userCtx.UserID.String(), nil
	}
	return "ip:" + clientIP(r), nil
}

func (rl *RateLimiter) limitExceeded(w http.ResponseWriter, r *http.Request) {
	rl.logger.Warn("rate limit exceeded",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("client_ip", clientIP(r)),
	)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate limit exceeded","message":"Too many requests. Please try again later."}`))
}

// clientIP resolves the caller's address, honoring proxy headers
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
