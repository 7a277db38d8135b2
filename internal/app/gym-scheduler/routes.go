// Package gymscheduler предоставляет маршруты для основного приложения.
package gymscheduler

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/gym-scheduler/internal/http/handlers/absence/history"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/handlers/absence/record"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/handlers/attendance/mark"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/handlers/attendance/roster"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/handlers/health"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/handlers/recovery/cancel"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/handlers/recovery/eligibility"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/handlers/recovery/schedule"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/handlers/recovery/slots"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/handlers/subscription/due"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/handlers/subscription/expiring"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/handlers/subscription/renew"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/handlers/subscription/update"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/middlewarectx"
	attendanceservice "github.com/magabrotheeeer/gym-scheduler/internal/services/attendance"
	recoveryservice "github.com/magabrotheeeer/gym-scheduler/internal/services/recovery"
	subscriptionservice "github.com/magabrotheeeer/gym-scheduler/internal/services/subscription"
	"github.com/magabrotheeeer/gym-scheduler/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker middlewarectx.TokenParser,
	db *repository.Storage,
	recoveryService *recoveryservice.RecoveryService,
	subscriptionService *subscriptionservice.SubscriptionService,
	attendanceService *attendanceservice.AttendanceService) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			// Конечные точки участника
			r.Post("/absences", record.New(logger, recoveryService).ServeHTTP)
			r.Get("/absences", history.New(logger, recoveryService).ServeHTTP)
			r.Get("/recoveries/slots", slots.New(logger, recoveryService).ServeHTTP)
			r.Get("/recoveries/eligibility", eligibility.New(logger, recoveryService).ServeHTTP)
			r.Post("/recoveries", schedule.New(logger, recoveryService).ServeHTTP)
			r.Delete("/recoveries/{absenceID}", cancel.New(logger, recoveryService).ServeHTTP)
			r.Get("/subscription", read.New(logger, subscriptionService).ServeHTTP)

			// Конечные точки администратора
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Put("/members/{memberID}/subscription", update.New(logger, subscriptionService).ServeHTTP)
				r.Post("/members/{memberID}/renewal", renew.New(logger, subscriptionService).ServeHTTP)
				r.Get("/members/{memberID}/due", due.New(logger, subscriptionService).ServeHTTP)
				r.Get("/subscriptions/expiring", expiring.New(logger, subscriptionService).ServeHTTP)
				r.Get("/sessions/{sessionID}/roster", roster.New(logger, attendanceService).ServeHTTP)
				r.Post("/sessions/{sessionID}/attendance", mark.New(logger, attendanceService).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, db.DB).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
