// Package idgen генерирует уникальные идентификаторы объявлений и пользователей.
package idgen

import "github.com/google/uuid"

// Generator выдаёт новый уникальный идентификатор.
type Generator interface {
	NewID() string
}

// UUID генерирует идентификаторы в формате UUID v4.
type UUID struct{}

// NewID возвращает новый UUID в строковом виде.
func (UUID) NewID() string {
	return uuid.NewString()
}
