package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/services"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long a client's limiter survives without requests.
const idleLimiterTTL = 10 * time.Minute

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	limit     rate.Limit
	burst     int
	whitelist map[string]bool

	mu       sync.Mutex
	limiters *cache.Cache
}

// NewRateLimiter allows perSecond requests per IP with bursts up to burst.
func NewRateLimiter(perSecond float64, burst int, whitelist ...string) *RateLimiter {
	wl := make(map[string]bool, len(whitelist))
	for _, ip := range whitelist {
		wl[ip] = true
	}
	return &RateLimiter{
		limit:     rate.Limit(perSecond),
		burst:     burst,
		whitelist: wl,
		limiters:  cache.New(idleLimiterTTL, time.Minute),
	}
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.limiters.Get(ip); ok {
		limiter := v.(*rate.Limiter)
		rl.limiters.SetDefault(ip, limiter)
		return limiter
	}
	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters.SetDefault(ip, limiter)
	return limiter
}

// Middleware rejects requests over the limit with 429 and retry_after_seconds.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if rl.whitelist[ip] {
			next.ServeHTTP(w, r)
			return
		}

		limiter := rl.getLimiter(ip)
		if !limiter.Allow() {
			retry := 1
			if rl.limit > 0 {
				retry = int(math.Max(1, math.Ceil(1/float64(rl.limit))))
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			common.RespondErrorDetail(w, time.Now(), http.StatusTooManyRequests, "Too many requests",
				services.CodeRateLimited, map[string]any{"retry_after_seconds": retry})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP keys on the socket peer. Behind a trusted proxy the router runs
// chi's RealIP first, which rewrites RemoteAddr from the forwarding headers.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
