// Package reviews реализует добавление, редактирование и удаление отзывов
// с проверкой прав: менять отзыв может его автор или администратор.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/7BlackFire7/sport-program/internal/events"
	"github.com/7BlackFire7/sport-program/internal/lib/sl"
	"github.com/7BlackFire7/sport-program/internal/models"
	"github.com/7BlackFire7/sport-program/internal/services/auth"
	"github.com/7BlackFire7/sport-program/internal/storage"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrTrainerNotFound = errors.New("trainer not found")
	ErrForbidden       = errors.New("not allowed to modify this review")
	ErrUnauthenticated = errors.New("login required")
	ErrInvalidReview   = errors.New("invalid review")
)

// MaxCommentLength максимальная длина комментария в символах.
const MaxCommentLength = 2000

// Repository хранилище отзывов и тренеров.
type Repository interface {
	GetTrainer(ctx context.Context, id int64) (*models.Trainer, error)
	CreateReview(ctx context.Context, review models.Review) (int64, error)
	GetReview(ctx context.Context, id int64) (*models.Review, error)
	UpdateReviewComment(ctx context.Context, id int64, comment string) (int64, error)
	RemoveReview(ctx context.Context, id int64) (int64, error)
}

type reviewInput struct {
	Rating  int    `validate:"min=1,max=5"`
	Comment string `validate:"required,max=2000"`
}

type commentInput struct {
	Comment string `validate:"required,max=2000"`
}

// Service операции над отзывами.
type Service struct {
	log       *slog.Logger
	repo      Repository
	publisher events.Publisher
	validate  *validator.Validate
}

// NewService создаёт Service.
func NewService(log *slog.Logger, repo Repository, publisher events.Publisher) *Service {
	return &Service{
		log:       log,
		repo:      repo,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// Authorize разрешает изменение администратору или автору отзыва.
func Authorize(actor auth.Identity, review models.Review) bool {
	if !actor.Authenticated() {
		return false
	}
	return actor.IsAdmin || actor.Username == review.Username
}

// AddReview сохраняет отзыв от имени текущего пользователя.
func (s *Service) AddReview(ctx context.Context, actor auth.Identity, trainerID int64, rating int, comment string) (int64, error) {
	const op = "reviews.AddReview"

	if !actor.Authenticated() {
		return 0, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}
	in := reviewInput{Rating: rating, Comment: strings.TrimSpace(comment)}
	if err := s.validate.Struct(in); err != nil {
		return 0, fmt.Errorf("%s: %w: %w", op, ErrInvalidReview, err)
	}
	if trainerID <= 0 {
		return 0, fmt.Errorf("%s: %w", op, ErrTrainerNotFound)
	}
	if _, err := s.repo.GetTrainer(ctx, trainerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, fmt.Errorf("%s: %w", op, ErrTrainerNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.CreateReview(ctx, models.Review{
		TrainerID: trainerID,
		Username:  actor.Username,
		Rating:    in.Rating,
		Comment:   in.Comment,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, events.ReviewEvent{
		Type:      events.TypeReviewCreated,
		ReviewID:  id,
		TrainerID: trainerID,
		Author:    actor.Username,
		Actor:     actor.Username,
		ByAdmin:   actor.IsAdmin,
		Rating:    in.Rating,
		Comment:   in.Comment,
	})
	return id, nil
}

// UpdateReview меняет только комментарий отзыва.
func (s *Service) UpdateReview(ctx context.Context, actor auth.Identity, reviewID, trainerID int64, newComment string) error {
	const op = "reviews.UpdateReview"

	in := commentInput{Comment: strings.TrimSpace(newComment)}
	review, err := s.loadAuthorized(ctx, actor, reviewID, trainerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidReview, err)
	}

	n, err := s.repo.UpdateReviewComment(ctx, reviewID, in.Comment)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrReviewNotFound)
	}

	s.publish(ctx, events.ReviewEvent{
		Type:      events.TypeReviewUpdated,
		ReviewID:  reviewID,
		TrainerID: review.TrainerID,
		Author:    review.Username,
		Actor:     actor.Username,
		ByAdmin:   actor.IsAdmin,
		Rating:    review.Rating,
		Comment:   in.Comment,
	})
	return nil
}

// DeleteReview удаляет отзыв.
func (s *Service) DeleteReview(ctx context.Context, actor auth.Identity, reviewID, trainerID int64) error {
	const op = "reviews.DeleteReview"

	review, err := s.loadAuthorized(ctx, actor, reviewID, trainerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := s.repo.RemoveReview(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrReviewNotFound)
	}

	s.publish(ctx, events.ReviewEvent{
		Type:      events.TypeReviewDeleted,
		ReviewID:  reviewID,
		TrainerID: review.TrainerID,
		Author:    review.Username,
		Actor:     actor.Username,
		ByAdmin:   actor.IsAdmin,
	})
	return nil
}

// loadAuthorized читает отзыв и проверяет права. trainerID из формы должен
// совпадать с тренером отзыва, иначе отзыв считается ненайденным.
func (s *Service) loadAuthorized(ctx context.Context, actor auth.Identity, reviewID, trainerID int64) (*models.Review, error) {
	if reviewID <= 0 {
		return nil, ErrReviewNotFound
	}
	review, err := s.repo.GetReview(ctx, reviewID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	if trainerID > 0 && review.TrainerID != trainerID {
		return nil, ErrReviewNotFound
	}
	if !Authorize(actor, *review) {
		return nil, ErrForbidden
	}
	return review, nil
}

func (s *Service) publish(ctx context.Context, event events.ReviewEvent) {
	event.OccurredAt = time.Now().UTC()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Error("failed to publish review event",
			slog.String("type", event.Type),
			slog.Int64("review_id", event.ReviewID),
			sl.Err(err))
	}
}
