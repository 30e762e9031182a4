package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/7BlackFire7/sport-program/internal/models"
	"github.com/7BlackFire7/sport-program/internal/storage"
)

// RegisterUser сохраняет нового пользователя и возвращает его ID.
// Нарушение уникальности username превращается в storage.ErrUserExists.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.RegisterUser"

	query := `INSERT INTO users (username, password, is_admin)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query, user.Username, user.PasswordHash, user.IsAdmin).Scan(&newID)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UserExists проверяет, занят ли username. Сравнение точное, с учётом регистра.
func (s *Storage) UserExists(ctx context.Context, username string) (bool, error) {
	const op = "storage.UserExists"

	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// GetUserByUsername возвращает пользователя по username или storage.ErrNotFound.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"

	query := `SELECT id, username, password, is_admin
			  FROM users
			  WHERE username = $1`
	u := &models.User{}
	err := s.DB.QueryRowContext(ctx, query, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// SetAdmin выдаёт или снимает права администратора.
func (s *Storage) SetAdmin(ctx context.Context, username string, isAdmin bool) error {
	const op = "storage.SetAdmin"

	result, err := s.DB.ExecContext(ctx,
		`UPDATE users SET is_admin = $1 WHERE username = $2`, isAdmin, username)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}
