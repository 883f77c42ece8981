package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/offer-service/internal/models"
	"github.com/magabrotheeeer/offer-service/internal/storage"
)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// CreateUser сохраняет нового пользователя. Занятый username возвращает storage.ErrExists.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO users (id, username, password_hash, enabled, created_at)
			  VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.DB.ExecContext(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.Enabled, user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindEnabledUserByID возвращает активного пользователя по идентификатору.
// Отключённый пользователь считается отсутствующим.
func (s *Storage) FindEnabledUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.FindEnabledUserByID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	query := `SELECT id, username, password_hash, enabled, created_at
			  FROM users
			  WHERE id = $1 AND enabled`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// FindEnabledUserByUsername возвращает активного пользователя по username.
func (s *Storage) FindEnabledUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.FindEnabledUserByUsername"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, username, password_hash, enabled, created_at
			  FROM users
			  WHERE username = $1 AND enabled`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Enabled, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
