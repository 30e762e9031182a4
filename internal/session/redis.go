// Package session хранит серверные сессии пользователей в redis
// и переносит их идентификатор в подписанной cookie.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/7BlackFire7/sport-program/internal/config"
	"github.com/7BlackFire7/sport-program/internal/models"
)

const keyPrefix = "session:"

// ErrNotFound сессия отсутствует или истекла.
var ErrNotFound = errors.New("session not found")

// Session серверная запись об аутентифицированном пользователе.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Store хранилище сессий.
type Store struct {
	Db  *redis.Client
	ttl time.Duration
}

// Connect открывает соединение с redis и проверяет его.
func Connect(ctx context.Context, cfg config.RedisConnection) (*redis.Client, error) {
	const op = "session.Connect"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return db, nil
}

// NewStore создаёт хранилище сессий с заданным временем жизни записи.
func NewStore(db *redis.Client, ttl time.Duration) *Store {
	return &Store{Db: db, ttl: ttl}
}

// Create заводит новую сессию с новым идентификатором для пользователя.
func (s *Store) Create(ctx context.Context, user models.User) (*Session, error) {
	const op = "session.Create"
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Db.Set(ctx, keyPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}

// Get возвращает сессию по идентификатору.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	const op = "session.Get"
	val, err := s.Db.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sess, nil
}

// Destroy удаляет сессию. Отсутствие записи ошибкой не считается.
func (s *Store) Destroy(ctx context.Context, id string) error {
	const op = "session.Destroy"
	if id == "" {
		return nil
	}
	if err := s.Db.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
