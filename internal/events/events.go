// Package events публикует события жизненного цикла объявлений.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/offer-service/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/offer-service/internal/models"
)

// Kind: тип события, он же routing key.
type Kind string

// Типы событий.
const (
	OfferPublished Kind = "offer.published"
	OfferUpdated   Kind = "offer.updated"
	OfferCanceled  Kind = "offer.canceled"
)

// OfferEvent: сообщение об изменении объявления.
type OfferEvent struct {
	Kind        Kind          `json:"kind"`
	OfferID     string        `json:"offer_id"`
	PublisherID string        `json:"publisher_id"`
	OccurredAt  time.Time     `json:"occurred_at"`
	Offer       *models.Offer `json:"offer"`
}

// NewOfferEvent формирует событие kind для снимка объявления offer.
func NewOfferEvent(kind Kind, offer *models.Offer, at time.Time) OfferEvent {
	snapshot := *offer
	return OfferEvent{
		Kind:        kind,
		OfferID:     offer.ID,
		PublisherID: offer.PublisherID,
		OccurredAt:  at.UTC(),
		Offer:       &snapshot,
	}
}

// Publisher отправляет события во внешнюю систему.
type Publisher interface {
	Publish(ctx context.Context, event OfferEvent) error
}

// Noop отбрасывает события. Используется, когда брокер не настроен.
type Noop struct{}

// Publish ничего не делает.
func (Noop) Publish(context.Context, OfferEvent) error {
	return nil
}

// AMQPPublisher публикует события в exchange RabbitMQ.
type AMQPPublisher struct {
	ch       rabbitmq.Channel
	exchange string
}

// NewAMQPPublisher создаёт публикатор поверх открытого канала.
func NewAMQPPublisher(ch rabbitmq.Channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange}
}

// Publish отправляет событие с routing key, равным его типу.
func (p *AMQPPublisher) Publish(ctx context.Context, event OfferEvent) error {
	const op = "events.Publish"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if err := rabbitmq.PublishMessage(p.ch, p.exchange, string(event.Kind), event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
