package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/offer-service/internal/models"
	"github.com/magabrotheeeer/offer-service/internal/storage"
)

const offerColumns = `id, title, description, price, currency, create_time, end_time, canceled, publisher_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffer(row rowScanner) (*models.Offer, error) {
	var o models.Offer
	if err := row.Scan(&o.ID, &o.Title, &o.Description, &o.Price, &o.Currency,
		&o.CreateTime, &o.EndTime, &o.Canceled, &o.PublisherID); err != nil {
		return nil, err
	}
	o.CreateTime = o.CreateTime.UTC()
	o.EndTime = o.EndTime.UTC()
	return &o, nil
}

// CreateOffer сохраняет новое объявление.
func (s *Storage) CreateOffer(ctx context.Context, offer *models.Offer) error {
	const op = "storage.CreateOffer"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO offers (` + offerColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.DB.ExecContext(ctx, query,
		offer.ID, offer.Title, offer.Description, offer.Price, offer.Currency,
		offer.CreateTime, offer.EndTime, offer.Canceled, offer.PublisherID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetOffer возвращает объявление по идентификатору независимо от его состояния.
func (s *Storage) GetOffer(ctx context.Context, id string) (*models.Offer, error) {
	const op = "storage.GetOffer"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`
	o, err := scanOffer(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

// ListOffersByPublisher возвращает все объявления пользователя, включая закрытые.
func (s *Storage) ListOffersByPublisher(ctx context.Context, publisherID string) ([]*models.Offer, error) {
	const op = "storage.ListOffersByPublisher"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	if !validID(publisherID) {
		return []*models.Offer{}, nil
	}

	query := `SELECT ` + offerColumns + `
			  FROM offers
			  WHERE publisher_id = $1
			  ORDER BY create_time, id`
	rows, err := s.DB.QueryContext(ctx, query, publisherID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Offer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ModifyOffer блокирует строку объявления, передаёт его в fn и сохраняет результат.
// Если fn вернула ошибку, транзакция откатывается и ошибка возвращается без изменений в базе.
func (s *Storage) ModifyOffer(ctx context.Context, id string, fn func(*models.Offer) error) (*models.Offer, error) {
	const op = "storage.ModifyOffer"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1 FOR UPDATE`
	o, err := scanOffer(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = fn(o); err != nil {
		return nil, err
	}

	update := `UPDATE offers
			   SET title = $1, description = $2, price = $3, currency = $4,
			       end_time = $5, canceled = $6
			   WHERE id = $7`
	if _, err = tx.ExecContext(ctx, update,
		o.Title, o.Description, o.Price, o.Currency, o.EndTime, o.Canceled, o.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}
