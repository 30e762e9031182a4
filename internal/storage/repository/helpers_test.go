package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/7BlackFire7/sport-program/internal/migrations"
)

// TestDataFactory создаёт тестовые данные напрямую через SQL.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создаёт фабрику тестовых данных.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateTrainer создаёт тренера и возвращает его ID.
func (f *TestDataFactory) CreateTrainer(t *testing.T, name string) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO trainers (name, specialization, description, image)
		VALUES ($1, 'Boxing', 'test trainer', 'img.jpg') RETURNING id`, name).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateReviewAt создаёт отзыв с заданным временем создания.
func (f *TestDataFactory) CreateReviewAt(t *testing.T, trainerID int64, username string, rating int,
	comment string, createdAt time.Time) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO reviews (trainer_id, username, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		trainerID, username, rating, comment, createdAt).Scan(&id)
	require.NoError(t, err)
	return id
}

// TestVerification содержит проверки состояния базы.
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создаёт объект проверок.
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// CountReviews возвращает число всех отзывов.
func (v *TestVerification) CountReviews(t *testing.T) int {
	var count int
	require.NoError(t, v.storage.DB.QueryRow("SELECT COUNT(*) FROM reviews").Scan(&count))
	return count
}

// CountUsers возвращает число пользователей с точным username.
func (v *TestVerification) CountUsers(t *testing.T, username string) int {
	var count int
	require.NoError(t, v.storage.DB.QueryRow("SELECT COUNT(*) FROM users WHERE username = $1", username).Scan(&count))
	return count
}

// VerifyReviewDeleted проверяет, что отзыва больше нет.
func (v *TestVerification) VerifyReviewDeleted(t *testing.T, reviewID int64) {
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM reviews WHERE id = $1", reviewID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

// setupTestDatabase поднимает PostgreSQL в контейнере и накатывает миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(connStr)
	require.NoError(t, err, "failed to create storage")
	require.NoError(t, migrations.Run(storage.DB), "failed to run migrations")

	t.Cleanup(func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})
	return storage
}
