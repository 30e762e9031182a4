package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/7BlackFire7/sport-program/internal/models"
	"github.com/7BlackFire7/sport-program/internal/storage"
)

// CreateReview сохраняет отзыв и возвращает его ID. ID и created_at назначает база.
func (s *Storage) CreateReview(ctx context.Context, review models.Review) (int64, error) {
	const op = "storage.CreateReview"

	query := `INSERT INTO reviews (trainer_id, username, rating, comment)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		review.TrainerID, review.Username, review.Rating, review.Comment).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetReview возвращает отзыв по ID или storage.ErrNotFound.
func (s *Storage) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	const op = "storage.GetReview"

	query := `SELECT id, trainer_id, username, rating, comment, created_at
			  FROM reviews
			  WHERE id = $1`
	var r models.Review
	err := s.DB.QueryRowContext(ctx, query, id).
		Scan(&r.ID, &r.TrainerID, &r.Username, &r.Rating, &r.Comment, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &r, nil
}

// ListReviewsByTrainer возвращает отзывы тренера, самые новые первыми.
// При равном created_at порядок определяется ID.
func (s *Storage) ListReviewsByTrainer(ctx context.Context, trainerID int64) ([]*models.Review, error) {
	const op = "storage.ListReviewsByTrainer"

	query := `SELECT id, trainer_id, username, rating, comment, created_at
			  FROM reviews
			  WHERE trainer_id = $1
			  ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Review
	for rows.Next() {
		var r models.Review
		if err = rows.Scan(&r.ID, &r.TrainerID, &r.Username, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// AverageRating возвращает среднюю оценку тренера с точностью до десятых.
// Для тренера без отзывов возвращает 0.
func (s *Storage) AverageRating(ctx context.Context, trainerID int64) (float64, error) {
	const op = "storage.AverageRating"

	query := `SELECT AVG(rating)::float8 FROM reviews WHERE trainer_id = $1`
	var avg sql.NullFloat64
	if err := s.DB.QueryRowContext(ctx, query, trainerID).Scan(&avg); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return RoundRating(avg.Float64), nil
}

// RoundRating округляет среднюю оценку до одного знака, половина округляется от нуля.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

// UpdateReviewComment меняет только комментарий и возвращает число изменённых строк.
func (s *Storage) UpdateReviewComment(ctx context.Context, id int64, comment string) (int64, error) {
	const op = "storage.UpdateReviewComment"

	query := `UPDATE reviews SET comment = $1 WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, comment, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// RemoveReview удаляет отзыв и возвращает число удалённых строк.
func (s *Storage) RemoveReview(ctx context.Context, id int64) (int64, error) {
	const op = "storage.RemoveReview"

	query := `DELETE FROM reviews WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}
