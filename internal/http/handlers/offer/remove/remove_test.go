package remove

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/offer-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/offer-service/internal/services/offer"
)

// MockService реализует интерфейс remove.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CancelAsDelete(ctx context.Context, offerID, userID string) error {
	return m.Called(ctx, offerID, userID).Error(0)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		userID         string
		mockErr        error
		callService    bool
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "успешная отмена",
			userID:         "u1",
			callService:    true,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"id":"o1","message":"offer canceled"}}`,
		},
		{
			name:           "нет пользователя в контексте",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:           "объявление закрыто",
			userID:         "u1",
			callService:    true,
			mockErr:        fmt.Errorf("offer.CancelAsDelete: %w", offer.ErrOfferNotFound),
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"not found"}`,
		},
		{
			name:           "не владелец",
			userID:         "u2",
			callService:    true,
			mockErr:        fmt.Errorf("offer.CancelAsDelete: %w", offer.ErrUserNotAuthorized),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"user is not authorized for this offer"}`,
		},
		{
			name:           "ошибка хранилища",
			userID:         "u1",
			callService:    true,
			mockErr:        errors.New("db"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			if tt.callService {
				mockService.On("CancelAsDelete", mock.Anything, "o1", tt.userID).Return(tt.mockErr).Once()
			}
			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodDelete, "/offers/o1", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "o1")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.userID != "" {
				ctx = middlewarectx.WithUserID(ctx, tt.userID)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req.WithContext(ctx))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
