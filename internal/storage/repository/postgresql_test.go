package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7BlackFire7/sport-program/internal/models"
	"github.com/7BlackFire7/sport-program/internal/storage"
)

func TestStorage_Trainers(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()

	trainers, err := s.ListTrainers(ctx)
	require.NoError(t, err)
	require.Len(t, trainers, 4)
	for i := 1; i < len(trainers); i++ {
		assert.Less(t, trainers[i-1].ID, trainers[i].ID, "trainers must keep insertion order")
	}

	got, err := s.GetTrainer(ctx, trainers[2].ID)
	require.NoError(t, err)
	assert.Equal(t, trainers[2], got)

	_, err = s.GetTrainer(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStorage_ListReviewsByTrainer_NewestFirst(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()
	factory := NewTestDataFactory(s)

	trainerID := factory.CreateTrainer(t, "Order Test")
	otherID := factory.CreateTrainer(t, "Other")
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	oldest := factory.CreateReviewAt(t, trainerID, "alice", 3, "first", base)
	newest := factory.CreateReviewAt(t, trainerID, "bob", 5, "third", base.Add(2*time.Hour))
	middle := factory.CreateReviewAt(t, trainerID, "carol", 4, "second", base.Add(time.Hour))
	factory.CreateReviewAt(t, otherID, "dave", 1, "other trainer", base.Add(3*time.Hour))

	reviews, err := s.ListReviewsByTrainer(ctx, trainerID)
	require.NoError(t, err)
	require.Len(t, reviews, 3)

	assert.Equal(t, []int64{newest, middle, oldest}, []int64{reviews[0].ID, reviews[1].ID, reviews[2].ID})
	for i := 1; i < len(reviews); i++ {
		assert.False(t, reviews[i].CreatedAt.After(reviews[i-1].CreatedAt), "created_at must be non-increasing")
	}

	// повторный запрос видит новые записи
	latest := factory.CreateReviewAt(t, trainerID, "erin", 2, "fourth", base.Add(5*time.Hour))
	reviews, err = s.ListReviewsByTrainer(ctx, trainerID)
	require.NoError(t, err)
	require.Len(t, reviews, 4)
	assert.Equal(t, latest, reviews[0].ID)

	empty, err := s.ListReviewsByTrainer(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStorage_AverageRating(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()
	factory := NewTestDataFactory(s)
	now := time.Now()

	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{name: "no reviews", ratings: nil, want: 0},
		{name: "single review", ratings: []int{5}, want: 5},
		{name: "exact half", ratings: []int{5, 4}, want: 4.5},
		{name: "rounds down", ratings: []int{5, 4, 4}, want: 4.3},
		{name: "rounds up", ratings: []int{4, 5, 5}, want: 4.7},
		{name: "all ones", ratings: []int{1, 1, 1, 1}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trainerID := factory.CreateTrainer(t, tt.name)
			for i, r := range tt.ratings {
				factory.CreateReviewAt(t, trainerID, "user", r, "c", now.Add(time.Duration(i)*time.Second))
			}

			got, err := s.AverageRating(ctx, trainerID)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestStorage_CreateUpdateRemoveReview(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()
	factory := NewTestDataFactory(s)
	verification := NewTestVerification(s)

	trainerID := factory.CreateTrainer(t, "CRUD")
	id, err := s.CreateReview(ctx, models.Review{
		TrainerID: trainerID,
		Username:  "alice",
		Rating:    5,
		Comment:   "Great",
	})
	require.NoError(t, err)
	require.Positive(t, id)

	created, err := s.GetReview(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, 5, created.Rating)
	assert.WithinDuration(t, time.Now(), created.CreatedAt, time.Minute)

	n, err := s.UpdateReviewComment(ctx, id, "Revised")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	updated, err := s.GetReview(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Revised", updated.Comment)
	assert.Equal(t, created.Rating, updated.Rating)
	assert.Equal(t, created.Username, updated.Username)
	assert.Equal(t, created.TrainerID, updated.TrainerID)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	keep := factory.CreateReviewAt(t, trainerID, "bob", 2, "stays", time.Now())
	before := verification.CountReviews(t)

	n, err = s.RemoveReview(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	verification.VerifyReviewDeleted(t, id)
	assert.Equal(t, before-1, verification.CountReviews(t))

	_, err = s.GetReview(ctx, keep)
	require.NoError(t, err)

	n, err = s.RemoveReview(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.GetReview(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStorage_CreateReview_UnknownTrainer(t *testing.T) {
	s := setupTestDatabase(t)

	_, err := s.CreateReview(context.Background(), models.Review{
		TrainerID: 424242,
		Username:  "alice",
		Rating:    3,
		Comment:   "nobody",
	})
	require.Error(t, err)
}

func TestStorage_Users(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()
	verification := NewTestVerification(s)

	id, err := s.RegisterUser(ctx, models.User{Username: "alice", PasswordHash: "hash"})
	require.NoError(t, err)
	require.Positive(t, id)

	_, err = s.RegisterUser(ctx, models.User{Username: "alice", PasswordHash: "hash2"})
	require.ErrorIs(t, err, storage.ErrUserExists)
	assert.Equal(t, 1, verification.CountUsers(t, "alice"))

	// username чувствителен к регистру
	_, err = s.RegisterUser(ctx, models.User{Username: "Alice", PasswordHash: "hash3"})
	require.NoError(t, err)

	exists, err := s.UserExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.UserExists(ctx, "ALICE")
	require.NoError(t, err)
	assert.False(t, exists)

	u, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.False(t, u.IsAdmin)

	require.NoError(t, s.SetAdmin(ctx, "alice", true))
	u, err = s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)

	assert.ErrorIs(t, s.SetAdmin(ctx, "nobody", true), storage.ErrNotFound)

	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRoundRating(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 0, want: 0},
		{in: 4.25, want: 4.3},
		{in: 4.24, want: 4.2},
		{in: 13.0 / 3.0, want: 4.3},
		{in: 14.0 / 3.0, want: 4.7},
		{in: 5, want: 5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, RoundRating(tt.in), 1e-9, "RoundRating(%v)", tt.in)
	}
}
