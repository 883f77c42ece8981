// Package read реализует HTTP-обработчик получения открытого объявления.
package read

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

// Service описывает поиск открытого объявления.
type Service interface {
	FindOpenByID(ctx context.Context, offerID string) (*models.Offer, error)
}

// Handler обрабатывает GET /offers/{id}.
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

// ServeHTTP возвращает объявление, если оно открыто.
// @Summary      Получение объявления
// @Tags         offers
// @Produce      json
// @Param        id path string true "ID объявления"
// @Success      200 {object} response.Response{data=models.OfferResponse}
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /offers/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.offer.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	o, err := h.service.FindOpenByID(r.Context(), id)
	if err != nil {
		status, body := response.FromOfferError(err)
		log.Info("failed to read offer", slog.String("offer_id", id), slog.Int("status", status), sl.Err(err))
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(models.NewOfferResponse(o)))
}
