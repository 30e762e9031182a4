// Package models содержит доменные модели приложения: тренеров, отзывы
// и зарегистрированных пользователей. Структуры используются в бизнес‑логике,
// в хранилище и при рендеринге страниц.
package models

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           int64  // Уникальный идентификатор пользователя
	Username     string // Имя пользователя (уникальное, с учётом регистра)
	PasswordHash string // bcrypt‑хэш пароля
	IsAdmin      bool   // Признак администратора, может модерировать любые отзывы
}
