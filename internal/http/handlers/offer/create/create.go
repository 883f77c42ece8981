// Package create реализует HTTP-обработчик публикации объявления.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/offer-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/offer-service/internal/http/response"
	"github.com/magabrotheeeer/offer-service/internal/lib/sl"
	"github.com/magabrotheeeer/offer-service/internal/models"
)

// Service описывает публикацию объявления.
type Service interface {
	Publish(ctx context.Context, publisherID string, draft models.OfferDraft) (*models.Offer, error)
}

// Handler обрабатывает POST /offers.
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

// ServeHTTP публикует объявление от имени пользователя из токена.
// @Summary      Публикация объявления
// @Tags         offers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body models.OfferRequest true "Объявление, ttl в миллисекундах"
// @Success      201 {object} response.Response{data=models.OfferResponse}
// @Failure      400 {object} response.ValidationResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /offers [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.offer.create"

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

	var req models.OfferRequest
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

	o, err := h.service.Publish(r.Context(), userID, req.Draft(userID))
	if err != nil {
		status, body := response.FromOfferError(err)
		log.Info("failed to publish offer", slog.Int("status", status), sl.Err(err))
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	log.Info("offer published", slog.String("offer_id", o.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(models.NewOfferResponse(o)))
}
