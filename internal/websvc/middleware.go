package websvc

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// metricsMiddleware counts the responses of h by their status code.
func (svc *Service) metricsMiddleware(h http.Handler) (wrapped http.Handler) {
	f := func(w http.ResponseWriter, r *http.Request) {
		rw := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		h.ServeHTTP(rw, r)

		code := rw.Status()
		if code == 0 {
			// Nothing has been written, so the server responds with 200 OK.
			code = http.StatusOK
		}

		svc.metrics.IncrementRequests(r.Context(), code)
	}

	return http.HandlerFunc(f)
}

// rateLimitMiddleware responds with 429 Too Many Requests when the global
// limit of svc is exceeded.
func (svc *Service) rateLimitMiddleware(h http.Handler) (wrapped http.Handler) {
	if svc.limiter == nil {
		return h
	}

	f := func(w http.ResponseWriter, r *http.Request) {
		if !svc.limiter.Allow() {
			svc.metrics.IncrementRateLimited(r.Context())
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)

			return
		}

		h.ServeHTTP(w, r)
	}

	return http.HandlerFunc(f)
}
