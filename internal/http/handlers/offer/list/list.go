// Package list реализует HTTP-обработчик списка открытых объявлений пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/offer-service/internal/http/response"
	"github.com/magabrotheeeer/offer-service/internal/lib/sl"
	"github.com/magabrotheeeer/offer-service/internal/models"
)

// Service описывает выборку объявлений пользователя.
type Service interface {
	FindAllOpenByPublisherID(ctx context.Context, userID string) ([]*models.Offer, error)
}

// Handler обрабатывает GET /users/{id}/offers.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP возвращает все открытые объявления пользователя.
// @Summary      Открытые объявления пользователя
// @Tags         offers
// @Produce      json
// @Param        id path string true "ID пользователя"
// @Success      200 {object} response.Response{data=[]models.OfferResponse}
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /users/{id}/offers [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.offer.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID := chi.URLParam(r, "id")
	offers, err := h.service.FindAllOpenByPublisherID(r.Context(), userID)
	if err != nil {
		status, body := response.FromOfferError(err)
		log.Info("failed to list offers", slog.String("user_id", userID), slog.Int("status", status), sl.Err(err))
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	log.Debug("offers listed", slog.Int("count", len(offers)))
	render.JSON(w, r, response.StatusOKWithData(models.NewOfferResponses(offers)))
}
