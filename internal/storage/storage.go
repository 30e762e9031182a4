// Package storage содержит общие ошибки слоя хранения.
package storage

import "errors"

var (
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrUserExists пользователь с таким username уже существует.
	ErrUserExists = errors.New("user already exists")
)
