// Package trainers собирает данные о тренерах и их отзывах для страницы и JSON API.
package trainers

import (
	"context"
	"errors"
	"fmt"

	"github.com/7BlackFire7/sport-program/internal/models"
	"github.com/7BlackFire7/sport-program/internal/storage"
)

// ErrTrainerNotFound тренера с таким id нет.
var ErrTrainerNotFound = errors.New("trainer not found")

// Repository чтение тренеров и отзывов.
type Repository interface {
	ListTrainers(ctx context.Context) ([]*models.Trainer, error)
	GetTrainer(ctx context.Context, id int64) (*models.Trainer, error)
	ListReviewsByTrainer(ctx context.Context, trainerID int64) ([]*models.Review, error)
	AverageRating(ctx context.Context, trainerID int64) (float64, error)
}

// Service только читает данные.
type Service struct {
	repo Repository
}

// NewService создаёт Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List возвращает всех тренеров в порядке добавления.
func (s *Service) List(ctx context.Context) ([]*models.Trainer, error) {
	const op = "trainers.List"
	res, err := s.repo.ListTrainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// Reviews возвращает тренера, его отзывы от новых к старым и средний рейтинг.
func (s *Service) Reviews(ctx context.Context, trainerID int64) (*models.TrainerReviews, error) {
	const op = "trainers.Reviews"
	if trainerID <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrTrainerNotFound)
	}
	trainer, err := s.repo.GetTrainer(ctx, trainerID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrTrainerNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reviews, err := s.repo.ListReviewsByTrainer(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	avg, err := s.repo.AverageRating(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.TrainerReviews{
		Trainer:       trainer,
		Reviews:       reviews,
		AverageRating: avg,
	}, nil
}
