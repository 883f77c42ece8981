package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/offer-service/internal/services/user"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		setupMock      func(m *MockService)
		wantStatusCode int
		wantData       map[string]any
		wantError      string
		wantStatus     string
	}{
		{
			name:        "valid registration",
			requestBody: Request{Username: "user1", Password: "password123"},
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "user1", "password123").Return("id-1", nil).Once()
			},
			wantStatusCode: http.StatusCreated,
			wantData: map[string]any{
				"id":       "id-1",
				"message":  "user created successfully",
				"username": "user1",
			},
			wantStatus: "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			setupMock:      func(*MockService) {},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - missing password",
			requestBody:    Request{Username: "user1"},
			setupMock:      func(*MockService) {},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "validation failed: field password is a required field",
			wantStatus:     "Error",
		},
		{
			name:        "username taken",
			requestBody: Request{Username: "user1", Password: "password123"},
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "user1", "password123").
					Return("", fmt.Errorf("user.Register: %w", user.ErrUserExists)).Once()
			},
			wantStatusCode: http.StatusConflict,
			wantError:      "user already exists",
			wantStatus:     "Error",
		},
		{
			name:        "service error",
			requestBody: Request{Username: "user1", Password: "password123"},
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "user1", "password123").Return("", errors.New("db error")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "failed to register user",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)
			handler := New(newNoopLogger(), svc)

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Nil(t, got["error"])
			}

			if tt.wantData != nil {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				for k, v := range tt.wantData {
					assert.Equal(t, v, data[k])
				}
			} else {
				assert.Nil(t, got["data"])
			}

			svc.AssertExpectations(t)
		})
	}
}
