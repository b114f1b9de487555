package ratelimit

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// Limiter is a per-client sliding-window rate limiter. Clients are keyed
// by the first X-Forwarded-For hop when present, else the peer address.
type Limiter struct {
	Requests int
	Window   time.Duration

	mu        sync.Mutex
	hits      map[string][]time.Time
	nextSweep time.Time
}

func New(requests, windowSeconds int) *Limiter {
	return &Limiter{
		Requests: requests,
		Window:   time.Duration(windowSeconds) * time.Second,
		hits:     make(map[string][]time.Time),
	}
}

func clientKey(c echo.Context) string {
	if forwarded := c.Request().Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return c.RealIP()
}

// allow records a hit and reports whether it fits the window, plus the
// remaining budget.
func (l *Limiter) allow(key string, now time.Time) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	threshold := now.Add(-l.Window)

	// Once per window, drop clients whose hits have all aged out so the
	// map does not grow with every IP ever seen.
	if now.After(l.nextSweep) {
		for k, stamps := range l.hits {
			if len(stamps) == 0 || !stamps[len(stamps)-1].After(threshold) {
				delete(l.hits, k)
			}
		}
		l.nextSweep = now.Add(l.Window)
	}

	timestamps := l.hits[key]
	kept := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(threshold) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.Requests {
		l.hits[key] = kept
		return false, 0
	}

	kept = append(kept, now)
	l.hits[key] = kept
	return true, l.Requests - len(kept)
}

func (l *Limiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, remaining := l.allow(clientKey(c), time.Now())
			windowSeconds := int(l.Window / time.Second)

			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(windowSeconds))
				return echo.NewHTTPError(http.StatusTooManyRequests, "Muitas requisicoes. Tente novamente em instantes.")
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(l.Requests))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Window-Seconds", strconv.Itoa(windowSeconds))
			return next(c)
		}
	}
}
