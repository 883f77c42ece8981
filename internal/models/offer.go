// Package models содержит доменные структуры сервиса объявлений: объявление (offer)
// с его временной семантикой, пользователя-владельца и вспомогательные типы
// для приёма и выдачи данных через HTTP.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ограничения на поля объявления.
const (
	TitleMinLength       = 1
	TitleMaxLength       = 256
	DescriptionMinLength = 1
	DescriptionMaxLength = 4096
	CurrencyMaxLength    = 8
)

// Offer представляет одно опубликованное объявление о продаже.
//
// ID, CreateTime и PublisherID задаются при создании и больше не меняются.
// EndTime меняется только через SetTTL, а Canceled только через Cancel.
// Два объявления считаются одним и тем же, если совпадают их ID.
type Offer struct {
	ID          string          `json:"id" validate:"required"`
	Title       string          `json:"title" validate:"required,min=1,max=256"`
	Description string          `json:"description" validate:"required,min=1,max=4096"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency" validate:"required,max=8"`
	CreateTime  time.Time       `json:"create_time"`
	EndTime     time.Time       `json:"end_time"`
	Canceled    bool            `json:"canceled"`
	PublisherID string          `json:"publisher_id" validate:"required"`
}

// OfferDraft содержит данные для создания нового объявления.
type OfferDraft struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Currency    string
	TTL         time.Duration
	PublisherID string
}

// OfferEdits описывает частичное изменение объявления.
// Поле со значением nil остаётся без изменений.
type OfferEdits struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Currency    *string
	TTL         *time.Duration
}

// IsEmpty сообщает, что в правке нет ни одного поля.
func (e OfferEdits) IsEmpty() bool {
	return e.Title == nil && e.Description == nil && e.Price == nil &&
		e.Currency == nil && e.TTL == nil
}

// NewOffer создаёт объявление с идентификатором id и временем создания now.
// EndTime вычисляется как now + draft.TTL.
// Возвращает *ValidationError со всеми нарушенными ограничениями.
func NewOffer(draft OfferDraft, id string, now time.Time) (*Offer, error) {
	o := &Offer{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		Price:       draft.Price,
		Currency:    draft.Currency,
		CreateTime:  now.UTC().Truncate(time.Millisecond),
		PublisherID: draft.PublisherID,
	}
	o.SetTTL(draft.TTL)

	if err := validateOffer(o, draft.TTL); err != nil {
		return nil, err
	}
	return o, nil
}

// IsOpen сообщает, открыто ли объявление в момент now:
// оно не отменено и его EndTime строго позже now.
func (o *Offer) IsOpen(now time.Time) bool {
	return !o.Canceled && o.EndTime.After(now)
}

// TTL возвращает время жизни объявления: EndTime - CreateTime.
func (o *Offer) TTL() time.Duration {
	return o.EndTime.Sub(o.CreateTime)
}

// SetTTL пересчитывает EndTime относительно исходного CreateTime.
// Отрицательное значение приводится к нулю, чтобы EndTime не оказался раньше CreateTime.
func (o *Offer) SetTTL(ttl time.Duration) {
	if ttl < 0 {
		ttl = 0
	}
	o.EndTime = o.CreateTime.Add(ttl)
}

// Cancel помечает объявление отменённым. Повторный вызов ничего не меняет.
func (o *Offer) Cancel() {
	o.Canceled = true
}

// ApplyEdits применяет переданные поля правки.
// Если результат не проходит валидацию, объявление остаётся прежним.
func (o *Offer) ApplyEdits(edits OfferEdits) error {
	next := *o
	ttl := o.TTL()

	if edits.Title != nil {
		next.Title = *edits.Title
	}
	if edits.Description != nil {
		next.Description = *edits.Description
	}
	if edits.Price != nil {
		next.Price = *edits.Price
	}
	if edits.Currency != nil {
		next.Currency = *edits.Currency
	}
	if edits.TTL != nil {
		ttl = *edits.TTL
		next.SetTTL(ttl)
	}

	if err := validateOffer(&next, ttl); err != nil {
		return err
	}
	*o = next
	return nil
}

// Validate проверяет все ограничения объявления.
func (o *Offer) Validate() error {
	return validateOffer(o, o.TTL())
}

// Equal сравнивает объявления по идентификатору.
func (o *Offer) Equal(other *Offer) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.ID == other.ID
}

func validateOffer(o *Offer, ttl time.Duration) error {
	var verr ValidationError
	if err := ValidateStruct(o); err != nil {
		ve, ok := err.(*ValidationError)
		if !ok {
			return err
		}
		verr.Violations = append(verr.Violations, ve.Violations...)
	}
	if ttl < 0 {
		verr.Violations = append(verr.Violations, Violation{
			Field:   "ttl",
			Rule:    "gte",
			Message: "field ttl must not be negative",
		})
	}
	if len(verr.Violations) > 0 {
		return &verr
	}
	return nil
}
