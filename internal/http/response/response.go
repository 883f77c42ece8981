// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"errors"
	"net/http"

	"github.com/magabrotheeeer/offer-service/internal/models"
	"github.com/magabrotheeeer/offer-service/internal/services/offer"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status: статус запроса ("OK" или "Error").
// Поле Error: текст ошибки (опционально, при неуспехе).
// Поле Data: данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse: структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

// ValidationResponse: ответ с перечнем всех нарушенных ограничений.
type ValidationResponse struct {
	Status     string             `json:"status" example:"Error"`
	Error      string             `json:"error" example:"field title is a required field"`
	Violations []models.Violation `json:"violations"`
}

const (
	// StatusOK: значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError: значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// Сообщения об ошибках, которые видит клиент.
const (
	MsgNotFound      = "not found"
	MsgNotAuthorized = "user is not authorized for this offer"
	MsgInternal      = "internal error"
	MsgInvalidBody   = "invalid request body"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует ответ со всеми нарушениями из verr.
func ValidationError(verr *models.ValidationError) ValidationResponse {
	msg := verr.Error()
	return ValidationResponse{
		Status:     StatusError,
		Error:      msg,
		Violations: verr.Violations,
	}
}

// FromOfferError возвращает HTTP-статус и тело ответа для ошибки операции над объявлением.
// Отсутствие пользователя и отсутствие объявления дают одинаковый ответ,
// чтобы клиент не мог узнать, какой из ключей не найден.
func FromOfferError(err error) (int, any) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ValidationError(verr)
	case errors.Is(err, offer.ErrUserIDNotFound), errors.Is(err, offer.ErrOfferNotFound):
		return http.StatusNotFound, Error(MsgNotFound)
	case errors.Is(err, offer.ErrUserNotAuthorized):
		return http.StatusUnauthorized, Error(MsgNotAuthorized)
	default:
		return http.StatusInternalServerError, Error(MsgInternal)
	}
}
