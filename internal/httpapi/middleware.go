package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gdiv-se/richflow/internal/logging"
	"github.com/gdiv-se/richflow/internal/metrics"
)

type contextKey string

const userIDKey contextKey = "userID"

// userID returns the authenticated user id placed on the request context by
// the auth middleware. Empty when the request did not pass through it.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// bearerToken extracts the token from the Authorization header. Returns ""
// when the header is missing or not in Bearer form.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// requireAuth rejects requests that do not carry a token backed by a live
// session. Token signature validity alone is not enough; the session row must
// still be valid and unexpired.
func (h *handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, fmt.Errorf("missing or malformed Authorization header"))
			return
		}
		uid, err := h.svc.Auth.Authenticate(r.Context(), token)
		if err != nil {
			h.log.WithField("path", r.URL.Path).Debug("rejected unauthenticated request")
			writeError(w, http.StatusUnauthorized, fmt.Errorf("unauthenticated"))
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimiter throttles requests per client key. Keys are derived from the
// client IP so unauthenticated endpoints can be protected.
type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	log      *logging.Logger
}

// newRateLimiter allows burst requests per window for each client key.
func newRateLimiter(burst int, window time.Duration, log *logging.Logger) *rateLimiter {
	return &rateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Every(window / time.Duration(burst)),
		burst:    burst,
		log:      log,
	}
}

func (rl *rateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Bound the map so a scan over many source addresses cannot grow it
	// without limit.
	if len(rl.limiters) > 10000 {
		rl.limiters = make(map[string]*rate.Limiter)
	}
	l, ok := rl.limiters[key]
	if !ok {
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

// handler wraps next, answering 429 once a client exhausts its allowance.
func (rl *rateLimiter) handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		if !rl.limiter(key).Allow() {
			rl.log.WithFields(map[string]interface{}{
				"key":  key,
				"path": r.URL.Path,
			}).Warn("rate limit exceeded")
			metrics.RecordSignupRateLimited()
			writeError(w, http.StatusTooManyRequests, fmt.Errorf("too many requests, please try again later"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
