// Package update реализует HTTP-обработчик частичного изменения объявления.
package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/offer-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/offer-service/internal/http/response"
	"github.com/magabrotheeeer/offer-service/internal/lib/sl"
	"github.com/magabrotheeeer/offer-service/internal/models"
)

// Service описывает изменение объявления владельцем.
type Service interface {
	Update(ctx context.Context, offerID, userID string, edits models.OfferEdits) (*models.Offer, error)
}

// Handler обрабатывает PUT /offers/{id}.
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

// ServeHTTP применяет переданные поля к объявлению. Отсутствующие поля не меняются.
// @Summary      Изменение объявления
// @Tags         offers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path string                   true "ID объявления"
// @Param        request body models.OfferPatchRequest true "Изменяемые поля, ttl в миллисекундах"
// @Success      200 {object} response.Response{data=models.OfferResponse}
// @Failure      400 {object} response.ValidationResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /offers/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.offer.update"

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

	var req models.OfferPatchRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.MsgInvalidBody))
		return
	}

	if err := req.Validate(); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			log.Info("validation failed", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(verr))
			return
		}
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.MsgInternal))
		return
	}

	id := chi.URLParam(r, "id")
	o, err := h.service.Update(r.Context(), id, userID, req.Edits())
	if err != nil {
		status, body := response.FromOfferError(err)
		log.Info("failed to update offer", slog.String("offer_id", id), slog.Int("status", status), sl.Err(err))
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	log.Info("offer updated", slog.String("offer_id", o.ID))
	render.JSON(w, r, response.StatusOKWithData(models.NewOfferResponse(o)))
}
