// Package user содержит логику регистрации, входа и поиска пользователей.
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/offer-service/internal/lib/clock"
	"github.com/magabrotheeeer/offer-service/internal/lib/idgen"
	"github.com/magabrotheeeer/offer-service/internal/lib/jwt"
	"github.com/magabrotheeeer/offer-service/internal/lib/password"
	"github.com/magabrotheeeer/offer-service/internal/models"
	"github.com/magabrotheeeer/offer-service/internal/storage"
)

var (
	// ErrUserExists: username уже занят.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials: неверное имя пользователя или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound: активный пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя.
	CreateUser(ctx context.Context, user *models.User) error
	// FindEnabledUserByID возвращает активного пользователя по идентификатору.
	FindEnabledUserByID(ctx context.Context, id string) (*models.User, error)
	// FindEnabledUserByUsername возвращает активного пользователя по имени.
	FindEnabledUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service отвечает за регистрацию, авторизацию и валидацию JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	ids      idgen.Generator
	clock    clock.Clock
}

// New создает новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker, ids idgen.Generator, clk clock.Clock) *Service {
	if ids == nil {
		ids = idgen.UUID{}
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		ids:      ids,
		clock:    clk,
	}
}

// Register создает активного пользователя с хэшированным паролем и возвращает его ID.
func (s *Service) Register(ctx context.Context, username, rawPassword string) (string, error) {
	const op = "user.Register"
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	u := &models.User{
		ID:           s.ids.NewID(),
		Username:     username,
		PasswordHash: hashed,
		Enabled:      true,
		CreatedAt:    s.clock.Now().UTC(),
	}
	if err = s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrExists) {
			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return u.ID, nil
}

// Login проверяет пароль активного пользователя и выпускает JWT.
// Неизвестное имя и неверный пароль неотличимы для вызывающего.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (string, error) {
	const op = "user.Login"
	u, err := s.FindEnabledByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err = password.CompareHash(u.PasswordHash, rawPassword); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	token, err := s.jwtMaker.GenerateToken(u.ID, u.Username)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// FindEnabledByID возвращает активного пользователя по идентификатору.
func (s *Service) FindEnabledByID(ctx context.Context, id string) (*models.User, error) {
	const op = "user.FindEnabledByID"
	u, err := s.users.FindEnabledUserByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// FindEnabledByUsername возвращает активного пользователя по имени.
func (s *Service) FindEnabledByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "user.FindEnabledByUsername"
	u, err := s.users.FindEnabledUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ValidateToken проверяет JWT и возвращает идентификатор пользователя.
// Токен отключённого или удалённого пользователя не принимается.
func (s *Service) ValidateToken(ctx context.Context, token string) (string, error) {
	const op = "user.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	u, err := s.FindEnabledByID(ctx, claims.UserID())
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return u.ID, nil
}
