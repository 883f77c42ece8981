// Package remove реализует HTTP-обработчик удаления объявления.
// Объявление не удаляется физически, а помечается отменённым.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/offer-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/offer-service/internal/http/response"
	"github.com/magabrotheeeer/offer-service/internal/lib/sl"
)

// Service описывает отмену объявления владельцем.
type Service interface {
	CancelAsDelete(ctx context.Context, offerID, userID string) error
}

// Handler обрабатывает DELETE /offers/{id}.
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

// ServeHTTP отменяет открытое объявление.
// @Summary      Отмена объявления
// @Tags         offers
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "ID объявления"
// @Success      200 {object} response.Response
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /offers/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.offer.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.CancelAsDelete(r.Context(), id, userID); err != nil {
		status, body := response.FromOfferError(err)
		log.Info("failed to cancel offer", slog.String("offer_id", id), slog.Int("status", status), sl.Err(err))
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	log.Info("offer canceled", slog.String("offer_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id":      id,
		"message": "offer canceled",
	}))
}
