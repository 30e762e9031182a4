package models

import "time"

// Review отзыв пользователя о тренере: оценка от 1 до 5 и комментарий.
// После создания меняется только Comment.
type Review struct {
	ID        int64     `json:"id"`
	TrainerID int64     `json:"trainer_id"`
	Username  string    `json:"username"` // денормализованное имя автора, не внешний ключ
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// TrainerReviews собирает данные страницы выбранного тренера.
type TrainerReviews struct {
	Trainer       *Trainer  `json:"trainer"`
	Reviews       []*Review `json:"reviews"`
	AverageRating float64   `json:"average_rating"`
}
