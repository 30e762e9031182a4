package trainerreviews

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/7BlackFire7/sport-program/internal/config"
	"github.com/7BlackFire7/sport-program/internal/models"
	"github.com/7BlackFire7/sport-program/internal/storage/repository"
)

type env struct {
	server *httptest.Server
	store  *repository.Storage
}

func setupApp(t *testing.T) *env {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("reviews"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})
	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{
		Env:                     "local",
		StorageConnectionString: dsn,
		HTTPServer:              config.HTTPServer{AddressHTTP: ":0", TimeoutHTTP: 5 * time.Second, IdleTimeout: time.Minute},
		RedisConnection:         config.RedisConnection{AddressRedis: mr.Addr()},
		Session: config.Session{
			CookieName: "sid",
			SecretKey:  "e2e-secret",
			TTL:        time.Hour,
		},
		// все браузеры теста ходят с одного адреса, лимит на попытки входа общий
		RateLimit: config.RateLimit{RPS: 1, Burst: 20},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app, err := New(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	store, err := repository.New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return &env{server: srv, store: store}
}

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (e *env) newBrowser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: e.server.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

func (b *browser) post(values url.Values) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.base+"/", values)
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

func (b *browser) register(username, password string) *http.Response {
	resp, _ := b.post(url.Values{"register": {"1"}, "reg_username": {username}, "reg_password": {password}})
	return resp
}

func (b *browser) login(username, password string) *http.Response {
	resp, _ := b.post(url.Values{"login": {"1"}, "login_username": {username}, "login_password": {password}})
	return resp
}

func (b *browser) addReview(trainerID int64, rating int, comment string) *http.Response {
	resp, _ := b.post(url.Values{
		"add_review": {"1"},
		"trainer_id": {strconv.FormatInt(trainerID, 10)},
		"rating":     {strconv.Itoa(rating)},
		"comment":    {comment},
	})
	return resp
}

func (b *browser) trainerReviews(trainerID int64) models.TrainerReviews {
	b.t.Helper()
	resp, body := b.get("/api/v1/trainers/" + strconv.FormatInt(trainerID, 10))
	require.Equal(b.t, http.StatusOK, resp.StatusCode)
	var payload struct {
		Data models.TrainerReviews `json:"data"`
	}
	require.NoError(b.t, json.Unmarshal([]byte(body), &payload))
	return payload.Data
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestTrainerReviews_EndToEnd(t *testing.T) {
	e := setupApp(t)
	ctx := context.Background()

	visitor := e.newBrowser(t)
	resp, body := visitor.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Trainer Reviews")

	resp, body = visitor.get("/api/v1/trainers")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"count":4`)
	const trainerID int64 = 3

	alice := e.newBrowser(t)
	bob := e.newBrowser(t)
	admin := e.newBrowser(t)

	// регистрация
	resp = alice.register("alice", "pw1")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/?notice=registered", resp.Header.Get("Location"))
	assert.Equal(t, http.StatusConflict, alice.register("alice", "other").StatusCode)
	require.Equal(t, http.StatusSeeOther, bob.register("bob", "pw2").StatusCode)
	require.Equal(t, http.StatusSeeOther, admin.register("admin", "pw3").StatusCode)
	require.NoError(t, e.store.SetAdmin(ctx, "admin", true))

	// неверный пароль не даёт cookie
	resp = bob.login("bob", "wrong")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, resp.Cookies())

	for _, tc := range []struct {
		b        *browser
		username string
		password string
	}{{alice, "alice", "pw1"}, {bob, "bob", "pw2"}, {admin, "admin", "pw3"}} {
		resp = tc.b.login(tc.username, tc.password)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode, tc.username)
		require.NotEmpty(t, resp.Cookies(), tc.username)
		cookie := resp.Cookies()[0]
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	}

	// alice добавляет отзыв
	resp = alice.addReview(trainerID, 5, "Great")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/?trainer_id=3", resp.Header.Get("Location"))

	page := visitor.trainerReviews(trainerID)
	require.Len(t, page.Reviews, 1)
	original := *page.Reviews[0]
	assert.Equal(t, "alice", original.Username)
	assert.Equal(t, 5, original.Rating)
	assert.Equal(t, "Great", original.Comment)
	assert.Equal(t, 5.0, page.AverageRating)
	reviewID := strconv.FormatInt(original.ID, 10)

	// alice меняет комментарий, остальные поля не меняются
	resp, _ = alice.post(url.Values{
		"update_review":   {"1"},
		"review_id":       {reviewID},
		"trainer_id":      {"3"},
		"updated_comment": {"Revised"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/?trainer_id=3", resp.Header.Get("Location"))
	page = visitor.trainerReviews(trainerID)
	require.Len(t, page.Reviews, 1)
	revised := *page.Reviews[0]
	assert.Equal(t, "Revised", revised.Comment)
	assert.Equal(t, original.Rating, revised.Rating)
	assert.Equal(t, original.Username, revised.Username)
	assert.True(t, original.CreatedAt.Equal(revised.CreatedAt))

	_, body = visitor.get("/?trainer_id=3")
	assert.Contains(t, body, "(Average Rating: 5 ⭐)")

	// bob не может изменить или удалить отзыв alice
	resp, _ = bob.post(url.Values{
		"update_review":   {"1"},
		"review_id":       {reviewID},
		"trainer_id":      {"3"},
		"updated_comment": {"Hacked"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/?notice=denied&trainer_id=3", resp.Header.Get("Location"))
	resp, _ = bob.get("/?delete_review=" + reviewID + "&trainer_id=3")
	assert.Equal(t, "/?notice=denied&trainer_id=3", resp.Header.Get("Location"))
	page = visitor.trainerReviews(trainerID)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, "Revised", page.Reviews[0].Comment)

	// управление видно автору и не видно bob
	_, body = alice.get("/?trainer_id=3")
	assert.Contains(t, body, "delete_review="+reviewID+"&")
	_, body = bob.get("/?trainer_id=3")
	assert.NotContains(t, body, "delete_review="+reviewID+"&")

	// отзывы не упираются в лимит попыток входа
	for i := range 6 {
		resp = bob.addReview(trainerID, 4, "Good "+strconv.Itoa(i))
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	}
	assert.Len(t, visitor.trainerReviews(trainerID).Reviews, 7)

	// admin удаляет отзыв alice
	resp, _ = admin.get("/?delete_review=" + reviewID + "&trainer_id=3")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/?trainer_id=3", resp.Header.Get("Location"))
	page = visitor.trainerReviews(trainerID)
	require.Len(t, page.Reviews, 6)
	for _, r := range page.Reviews {
		assert.NotEqual(t, original.ID, r.ID)
		assert.Equal(t, "bob", r.Username)
	}
	assert.Equal(t, 4.0, page.AverageRating)

	// после выхода добавить отзыв нельзя
	resp, _ = alice.get("/?logout")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp = alice.addReview(trainerID, 1, "after logout")
	assert.Equal(t, "/?notice=login_required", resp.Header.Get("Location"))
	assert.Len(t, visitor.trainerReviews(trainerID).Reviews, 6)

	// два действия в одном запросе отклоняются
	resp, _ = bob.post(url.Values{
		"login": {"1"}, "register": {"1"},
		"login_username": {"bob"}, "login_password": {"pw2"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = visitor.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"schema_version":2`)

	_, body = visitor.get("/metrics")
	assert.True(t, strings.Contains(body, `trainer_reviews_review_actions_total{action="delete",outcome="denied"} 1`), body)
	assert.Contains(t, body, `trainer_reviews_review_actions_total{action="update",outcome="denied"} 1`)
	assert.Contains(t, body, `trainer_reviews_auth_attempts_total{action="login",outcome="denied"} 1`)
}
