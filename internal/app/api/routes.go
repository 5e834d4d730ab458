// Package api предоставляет основное HTTP-приложение сервиса ремонта.
package api

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/rephome/repair-booking/internal/http/handlers/auth/login"
	"github.com/rephome/repair-booking/internal/http/handlers/auth/register"
	"github.com/rephome/repair-booking/internal/http/handlers/booking/adminlist"
	"github.com/rephome/repair-booking/internal/http/handlers/booking/adminstatus"
	"github.com/rephome/repair-booking/internal/http/handlers/booking/cancel"
	"github.com/rephome/repair-booking/internal/http/handlers/booking/create"
	"github.com/rephome/repair-booking/internal/http/handlers/booking/list"
	"github.com/rephome/repair-booking/internal/http/handlers/booking/read"
	"github.com/rephome/repair-booking/internal/http/handlers/booking/resendotp"
	"github.com/rephome/repair-booking/internal/http/handlers/booking/update"
	"github.com/rephome/repair-booking/internal/http/handlers/booking/verifyotp"
	"github.com/rephome/repair-booking/internal/http/handlers/health"
	"github.com/rephome/repair-booking/internal/http/handlers/pricing/estimate"
	"github.com/rephome/repair-booking/internal/http/handlers/shop/nearby"
	"github.com/rephome/repair-booking/internal/http/handlers/shop/shopcreate"
	"github.com/rephome/repair-booking/internal/http/handlers/shop/shoplist"
	"github.com/rephome/repair-booking/internal/http/middlewarectx"
	"github.com/rephome/repair-booking/internal/lib/jwt"
	authservice "github.com/rephome/repair-booking/internal/services/auth"
	bookingservice "github.com/rephome/repair-booking/internal/services/booking"
	shopservice "github.com/rephome/repair-booking/internal/services/shop"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker,
	authService *authservice.Service, bookingService *bookingservice.Service,
	shopService *shopservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	limiter := rate.NewLimiter(10, 30)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
		r.Get("/shops/nearby", nearby.New(logger, shopService).ServeHTTP)
		r.Get("/pricing/estimate", estimate.New(logger).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))

			r.Post("/bookings", create.New(logger, bookingService).ServeHTTP)
			r.Get("/bookings", list.New(logger, bookingService).ServeHTTP)
			r.Post("/bookings/verify-otp", verifyotp.New(logger, bookingService).ServeHTTP)
			r.Post("/bookings/resend-otp", resendotp.New(logger, bookingService).ServeHTTP)
			r.Get("/bookings/{number}", read.New(logger, bookingService).ServeHTTP)
			r.Put("/bookings/{number}", update.New(logger, bookingService).ServeHTTP)
			r.Delete("/bookings/{number}", cancel.New(logger, bookingService).ServeHTTP)

			// Админские конечные точки
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(logger))
				r.Get("/bookings/admin/all", adminlist.New(logger, bookingService).ServeHTTP)
				r.Patch("/bookings/admin/{number}/status", adminstatus.New(logger, bookingService).ServeHTTP)
				r.Get("/shops/admin/all", shoplist.New(logger, shopService).ServeHTTP)
				r.Post("/shops/admin", shopcreate.New(logger, shopService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
