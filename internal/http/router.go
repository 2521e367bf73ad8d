// Package httpapi assembles the HTTP surface: shared middleware, the signup
// route, health and metrics.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"signup/internal/platform/metrics"
	"signup/internal/platform/middleware"
	"signup/internal/ratelimit"
	"signup/internal/user"
	"signup/pkg/platform/httputil"
	"signup/pkg/platform/middleware/metadata"
	"signup/pkg/platform/middleware/requesttime"
)

const requestTimeout = 30 * time.Second

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Deps are the collaborators the router needs. RateLimit and Gatherer are
// optional.
type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Locales   middleware.LocaleNegotiator
	Users     *user.Handler
	RateLimit *ratelimit.Middleware
	Checks    map[string]HealthCheck
}

// NewRouter wires all public endpoints.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.LatencyMiddleware(d.Metrics))

	r.Get("/health", healthHandler(d.Checks))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Locale(d.Locales))
		var routeMW []func(http.Handler) http.Handler
		if d.RateLimit != nil {
			routeMW = append(routeMW, d.RateLimit.RateLimit)
		}
		d.Users.Register(r, routeMW...)
	})
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = "down"
				continue
			}
			body[name] = "up"
		}
		httputil.WriteJSON(w, status, body)
	}
}
