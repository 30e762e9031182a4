package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"golang.org/x/time/rate"
)

// clientIdleTTL время, после которого bucket неактивного клиента удаляется.
const clientIdleTTL = 10 * time.Minute

// RateLimit ограничивает частоту попыток входа и регистрации.
// У каждого клиента (адрес после middleware.RealIP) свой token bucket,
// остальные запросы не ограничиваются.
func RateLimit(log *slog.Logger, rps float64, burst int) func(http.Handler) http.Handler {
	clients := newClientLimiters(rate.Limit(rps), burst, clientIdleTTL)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isAuthAttempt(r) && !clients.allow(clientKey(r), time.Now()) {
				log.Warn("too many requests",
					slog.String("op", "middlewarectx.RateLimit"),
					slog.String("client", clientKey(r)),
					slog.String("request_id", middleware.GetReqID(r.Context())))
				render.Status(r, http.StatusTooManyRequests)
				render.PlainText(w, r, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// isAuthAttempt true для POST с маркером register или login.
// Тело формы разбирается здесь же, контроллер читает уже заполненный r.PostForm.
func isAuthAttempt(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	if err := r.ParseForm(); err != nil {
		return false
	}
	return r.PostForm.Has("register") || r.PostForm.Has("login")
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type clientLimiters struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
}

func newClientLimiters(limit rate.Limit, burst int, idleTTL time.Duration) *clientLimiters {
	return &clientLimiters{
		clients: make(map[string]*clientLimiter),
		limit:   limit,
		burst:   burst,
		idleTTL: idleTTL,
	}
}

func (c *clientLimiters) allow(key string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastSweep) > c.idleTTL {
		for k, cl := range c.clients {
			if now.Sub(cl.lastSeen) > c.idleTTL {
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
