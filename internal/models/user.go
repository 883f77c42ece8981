// Package models содержит доменную модель пользователя, который публикует объявления.
// Ядро сервиса использует только идентификатор и признак Enabled.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           string    // Уникальный идентификатор пользователя
	Username     string    // Имя пользователя (уникальное)
	PasswordHash string    // Хэш пароля пользователя
	Enabled      bool      // Отключённые пользователи не могут действовать в системе
	CreatedAt    time.Time // Дата регистрации
}
