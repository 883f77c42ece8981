package login

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

func (m *MockService) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		body           string
		setupMock      func(m *MockService)
		wantStatusCode int
		wantToken      string
		wantError      string
	}{
		{
			name: "success",
			body: `{"username":"alice","password":"secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "alice", "secret123").Return("jwt-token", nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantToken:      "jwt-token",
		},
		{
			name:           "broken json",
			body:           `{"username":`,
			setupMock:      func(*MockService) {},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "missing fields",
			body:           `{}`,
			setupMock:      func(*MockService) {},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "validation failed: field username is a required field, field password is a required field",
		},
		{
			name: "invalid credentials",
			body: `{"username":"alice","password":"wrong"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "alice", "wrong").
					Return("", fmt.Errorf("user.Login: %w", user.ErrInvalidCredentials)).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid credentials",
		},
		{
			name: "service error",
			body: `{"username":"alice","password":"secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "alice", "secret123").Return("", errors.New("db down")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "failed to login",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)
			handler := New(logger, svc)

			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tt.body))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-1"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, tt.wantToken, data["token"])
			}
			svc.AssertExpectations(t)
		})
	}
}
