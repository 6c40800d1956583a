// Package middlewarectx содержит HTTP-middleware сервиса.
package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/middleware"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/subscription-accounts/internal/http/response"
)

// limiterIdleTTL — через сколько простоя бакет клиента удаляется.
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters хранит отдельный token bucket на каждый адрес клиента.
type clientLimiters struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

func newClientLimiters(limit rate.Limit, burst int, now func() time.Time) *clientLimiters {
	return &clientLimiters{
		limit:     limit,
		burst:     burst,
		clients:   make(map[string]*clientLimiter),
		lastSweep: now(),
		now:       now,
	}
}

func (c *clientLimiters) allow(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastSweep) > limiterIdleTTL {
		for k, cl := range c.clients {
			if now.Sub(cl.lastSeen) > limiterIdleTTL {
				delete(c.clients, k)
			}
		}
		c.lastSweep = now
	}

	cl, ok := c.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// clientKey возвращает IP клиента. middleware.RealIP к этому моменту уже
// подставил адрес из X-Real-IP или X-Forwarded-For.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimitMiddleware ограничивает частоту запросов отдельно для каждого
// IP клиента. При limit == 0 запросы пропускаются без ограничений.
func RateLimitMiddleware(log *slog.Logger, limit rate.Limit, burst int) func(http.Handler) http.Handler {
	return rateLimit(log, limit, burst, time.Now)
}

func rateLimit(log *slog.Logger, limit rate.Limit, burst int, now func() time.Time) func(http.Handler) http.Handler {
	if limit == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiters := newClientLimiters(limit, burst, now)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !limiters.allow(key) {
				log.Warn("too many requests",
					slog.String("path", r.URL.Path),
					slog.String("client", key),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				response.JSON(w, r, http.StatusTooManyRequests, response.Error(response.KindRateLimited, response.MsgRateLimited))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
