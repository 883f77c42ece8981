package models

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout: формат времени создания объявления в ответах API.
const TimeLayout = "2006-01-02 15:04:05.000"

// MaxTTLMillis: наибольший ttl в миллисекундах, который помещается в time.Duration.
const MaxTTLMillis = math.MaxInt64 / int64(time.Millisecond)

// OfferRequest используется для приёма нового объявления из JSON-запроса.
// TTL передаётся в миллисекундах.
type OfferRequest struct {
	Title       string           `json:"title" validate:"required,max=256"`
	Description string           `json:"description" validate:"required,max=4096"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Currency    string           `json:"currency" validate:"required,max=8"`
	TTL         *int64           `json:"ttl" validate:"required"`
}

// Validate проверяет запрос и возвращает *ValidationError со всеми нарушениями.
func (r OfferRequest) Validate() error {
	return validateRequest(r, r.TTL)
}

// Draft преобразует запрос в OfferDraft для издателя publisherID.
// Запрос должен быть предварительно проверен через Validate.
func (r OfferRequest) Draft(publisherID string) OfferDraft {
	d := OfferDraft{
		Title:       r.Title,
		Description: r.Description,
		Currency:    r.Currency,
		PublisherID: publisherID,
	}
	if r.Price != nil {
		d.Price = *r.Price
	}
	if r.TTL != nil {
		d.TTL = ttlFromMillis(*r.TTL)
	}
	return d
}

// OfferPatchRequest используется для частичного обновления объявления.
// Отсутствующие в JSON поля не меняются.
type OfferPatchRequest struct {
	Title       *string          `json:"title,omitempty" validate:"omitempty,min=1,max=256"`
	Description *string          `json:"description,omitempty" validate:"omitempty,min=1,max=4096"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Currency    *string          `json:"currency,omitempty" validate:"omitempty,min=1,max=8"`
	TTL         *int64           `json:"ttl,omitempty"`
}

// Validate проверяет переданные поля и возвращает *ValidationError со всеми нарушениями.
func (r OfferPatchRequest) Validate() error {
	return validateRequest(r, r.TTL)
}

// Edits преобразует запрос в OfferEdits.
// Запрос должен быть предварительно проверен через Validate.
func (r OfferPatchRequest) Edits() OfferEdits {
	e := OfferEdits{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Currency:    r.Currency,
	}
	if r.TTL != nil {
		ttl := ttlFromMillis(*r.TTL)
		e.TTL = &ttl
	}
	return e
}

// ttlFromMillis переводит миллисекунды в time.Duration без переполнения:
// значения за пределами диапазона ограничиваются его границами.
func ttlFromMillis(ms int64) time.Duration {
	switch {
	case ms > MaxTTLMillis:
		return time.Duration(math.MaxInt64)
	case ms < -MaxTTLMillis:
		return time.Duration(math.MinInt64)
	default:
		return time.Duration(ms) * time.Millisecond
	}
}

func validateRequest(req any, ttl *int64) error {
	var verr ValidationError
	if err := ValidateStruct(req); err != nil {
		ve, ok := err.(*ValidationError)
		if !ok {
			return err
		}
		verr.Violations = append(verr.Violations, ve.Violations...)
	}
	if ttl != nil {
		switch {
		case *ttl < 0:
			verr.Violations = append(verr.Violations, Violation{
				Field:   "ttl",
				Rule:    "gte",
				Message: "field ttl must not be negative",
			})
		case *ttl > MaxTTLMillis:
			verr.Violations = append(verr.Violations, Violation{
				Field:   "ttl",
				Rule:    "max",
				Message: fmt.Sprintf("field ttl must be at most %d milliseconds", MaxTTLMillis),
			})
		}
	}
	if len(verr.Violations) > 0 {
		return &verr
	}
	return nil
}

// OfferResponse: представление объявления в ответах API.
type OfferResponse struct {
	ID          string `json:"id" example:"123e4567-e89b-12d3-a456-556642440000"`
	Title       string `json:"title" example:"Buy 1 get 1 for free."`
	Description string `json:"description" example:"Order 1 bag of coffee and get one free."`
	Price       string `json:"price" example:"100.00"`
	Currency    string `json:"currency" example:"GBP"`
	CreateTime  string `json:"create_time" example:"2020-12-31 00:00:00.000"`
	TTL         int64  `json:"ttl" example:"60000"`
	PublisherID string `json:"publisher_id"`
}

// NewOfferResponse формирует OfferResponse из объявления.
func NewOfferResponse(o *Offer) OfferResponse {
	return OfferResponse{
		ID:          o.ID,
		Title:       o.Title,
		Description: o.Description,
		Price:       o.Price.StringFixed(2),
		Currency:    o.Currency,
		CreateTime:  o.CreateTime.UTC().Format(TimeLayout),
		TTL:         o.TTL().Milliseconds(),
		PublisherID: o.PublisherID,
	}
}

// NewOfferResponses формирует список ответов.
func NewOfferResponses(offers []*Offer) []OfferResponse {
	res := make([]OfferResponse, 0, len(offers))
	for _, o := range offers {
		res = append(res, NewOfferResponse(o))
	}
	return res
}
