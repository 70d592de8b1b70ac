package ratelimit

import (
	"net/http"
	"strconv"
	"time"
)

// Config names the keying function and thresholds for one limited route.
type Config struct {
	Key    func(*http.Request) string
	Window time.Duration
	Max    int
}

// Handler applies the limiter ahead of the wrapped handler.
type Handler struct {
	Limiter Limiter
	Config  Config
	OnError func(error)
}

// Middleware enforces the limit and annotates responses with X-RateLimit
// headers. Limiter errors fail open: a degraded Redis should not take the
// payment page down.
func (h Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Config.Key == nil {
			next.ServeHTTP(w, r)
			return
		}
		res, err := h.Limiter.Allow(r.Context(), h.Config.Key(r), h.Config.Window, h.Config.Max)
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		hdr := w.Header()
		hdr.Set("X-RateLimit-Limit", strconv.Itoa(h.Config.Max))
		hdr.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		hdr.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed {
			retryAfter := int(time.Until(res.ResetAt).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			hdr.Set("Retry-After", strconv.Itoa(retryAfter))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
