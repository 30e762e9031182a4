// Package events публикует события модерации отзывов в RabbitMQ.
package events

import (
	"context"
	"time"
)

// Типы событий, они же routing key.
const (
	TypeReviewCreated = "review.created"
	TypeReviewUpdated = "review.updated"
	TypeReviewDeleted = "review.deleted"
)

// ReviewEvent сообщение об изменении отзыва.
type ReviewEvent struct {
	Type       string    `json:"type"`
	ReviewID   int64     `json:"review_id"`
	TrainerID  int64     `json:"trainer_id"`
	Author     string    `json:"author"`
	Actor      string    `json:"actor"`
	ByAdmin    bool      `json:"by_admin"`
	Rating     int       `json:"rating,omitempty"`
	Comment    string    `json:"comment,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher отправляет события.
type Publisher interface {
	Publish(ctx context.Context, event ReviewEvent) error
}

// Noop используется, когда брокер не настроен.
type Noop struct{}

// Publish ничего не делает.
func (Noop) Publish(context.Context, ReviewEvent) error { return nil }
