// Package storage содержит общие ошибки слоя хранения.
package storage

import "errors"

var (
	// ErrNotFound возвращается, если запись не найдена.
	ErrNotFound = errors.New("record not found")
	// ErrExists возвращается при нарушении уникальности.
	ErrExists = errors.New("record already exists")
)
