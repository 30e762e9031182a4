package trainerreviews

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/7BlackFire7/sport-program/internal/http/handlers/health"
	"github.com/7BlackFire7/sport-program/internal/http/handlers/trainers/list"
	"github.com/7BlackFire7/sport-program/internal/http/handlers/trainers/read"
	"github.com/7BlackFire7/sport-program/internal/http/middlewarectx"
	"github.com/7BlackFire7/sport-program/internal/http/page"
	"github.com/7BlackFire7/sport-program/internal/metrics"
	"github.com/7BlackFire7/sport-program/internal/services/auth"
	"github.com/7BlackFire7/sport-program/internal/services/reviews"
	"github.com/7BlackFire7/sport-program/internal/services/trainers"
	"github.com/7BlackFire7/sport-program/internal/session"
)

// Deps зависимости обработчиков.
type Deps struct {
	Logger        *slog.Logger
	DB            health.Pinger
	SchemaVersion uint
	Auth          *auth.Service
	Reviews       *reviews.Service
	Trainers      *trainers.Service
	Cookies       *session.Cookies
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
	View          *page.Renderer
	RateRPS       float64
	Burst         int
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.Metrics(d.Metrics),
	)

	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.Session(d.Logger, d.Cookies, d.Auth))
		r.Use(middlewarectx.RateLimit(d.Logger, d.RateRPS, d.Burst))

		ctrl := page.New(d.Logger, d.Auth, d.Reviews, d.Trainers, d.Cookies, d.Metrics, d.View)
		r.Get("/", ctrl.ServeHTTP)
		r.Post("/", ctrl.ServeHTTP)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/trainers", list.New(d.Logger, d.Trainers).ServeHTTP)
		r.Get("/trainers/{id}", read.New(d.Logger, d.Trainers).ServeHTTP)
	})

	r.Get("/healthz", health.New(d.Logger, d.DB, d.SchemaVersion).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
}
