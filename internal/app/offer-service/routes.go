// Package offerservice собирает HTTP-маршруты и зависимости приложения.
package offerservice

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// регистрирует описание API для /docs/*
	_ "github.com/magabrotheeeer/offer-service/docs"
	"github.com/magabrotheeeer/offer-service/internal/config"
	"github.com/magabrotheeeer/offer-service/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/offer-service/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/offer-service/internal/http/handlers/health"
	"github.com/magabrotheeeer/offer-service/internal/http/handlers/offer/create"
	"github.com/magabrotheeeer/offer-service/internal/http/handlers/offer/list"
	"github.com/magabrotheeeer/offer-service/internal/http/handlers/offer/read"
	"github.com/magabrotheeeer/offer-service/internal/http/handlers/offer/remove"
	"github.com/magabrotheeeer/offer-service/internal/http/handlers/offer/update"
	"github.com/magabrotheeeer/offer-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/offer-service/internal/metrics"
	"github.com/magabrotheeeer/offer-service/internal/models"
)

// UserService объединяет операции регистрации, входа и проверки токена.
type UserService interface {
	Register(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (string, error)
}

// OfferService объединяет операции над объявлениями.
type OfferService interface {
	FindOpenByID(ctx context.Context, offerID string) (*models.Offer, error)
	FindAllOpenByPublisherID(ctx context.Context, userID string) ([]*models.Offer, error)
	Publish(ctx context.Context, publisherID string, draft models.OfferDraft) (*models.Offer, error)
	Update(ctx context.Context, offerID, userID string, edits models.OfferEdits) (*models.Offer, error)
	CancelAsDelete(ctx context.Context, offerID, userID string) error
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, limits config.RateLimit, userService UserService, offerService OfferService, checks map[string]health.Check) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		metrics.Middleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, limits.RPS, limits.Burst))

		// Открытые конечные точки
		r.Post("/register", register.New(logger, userService).ServeHTTP)
		r.Post("/login", login.New(logger, userService).ServeHTTP)
		r.Get("/offers/{id}", read.New(logger, offerService).ServeHTTP)
		r.Get("/users/{id}/offers", list.New(logger, offerService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(userService, logger))
			r.Post("/offers", create.New(logger, offerService).ServeHTTP)
			r.Put("/offers/{id}", update.New(logger, offerService).ServeHTTP)
			r.Delete("/offers/{id}", remove.New(logger, offerService).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, checks).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
