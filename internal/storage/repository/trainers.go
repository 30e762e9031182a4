package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/7BlackFire7/sport-program/internal/models"
	"github.com/7BlackFire7/sport-program/internal/storage"
)

// ListTrainers возвращает всех тренеров в порядке добавления.
func (s *Storage) ListTrainers(ctx context.Context) ([]*models.Trainer, error) {
	const op = "storage.ListTrainers"

	query := `SELECT id, name, specialization, description, image
			  FROM trainers
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Trainer
	for rows.Next() {
		var t models.Trainer
		if err = rows.Scan(&t.ID, &t.Name, &t.Specialization, &t.Description, &t.Image); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetTrainer возвращает тренера по ID или storage.ErrNotFound.
func (s *Storage) GetTrainer(ctx context.Context, id int64) (*models.Trainer, error) {
	const op = "storage.GetTrainer"

	query := `SELECT id, name, specialization, description, image
			  FROM trainers
			  WHERE id = $1`
	var t models.Trainer
	err := s.DB.QueryRowContext(ctx, query, id).
		Scan(&t.ID, &t.Name, &t.Specialization, &t.Description, &t.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &t, nil
}
