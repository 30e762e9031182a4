// Package page обслуживает HTML‑страницу отзывов: на каждый запрос определяет одно
// действие, выполняет его и либо перенаправляет (post/redirect/get), либо рендерит страницу.
package page

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/7BlackFire7/sport-program/internal/http/response"
	"github.com/7BlackFire7/sport-program/internal/lib/sl"
	"github.com/7BlackFire7/sport-program/internal/metrics"
	"github.com/7BlackFire7/sport-program/internal/models"
	"github.com/7BlackFire7/sport-program/internal/services/auth"
	"github.com/7BlackFire7/sport-program/internal/services/reviews"
	"github.com/7BlackFire7/sport-program/internal/services/trainers"
	"github.com/7BlackFire7/sport-program/internal/session"
)

const (
	noticeDenied     = "denied"
	noticeNotFound   = "not_found"
	noticeInvalid    = "invalid"
	noticeRegistered = "registered"
	noticeLoginFirst = "login_required"
)

// AuthService регистрация, вход и выход.
type AuthService interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (*session.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// ReviewService изменения отзывов.
type ReviewService interface {
	AddReview(ctx context.Context, actor auth.Identity, trainerID int64, rating int, comment string) (int64, error)
	UpdateReview(ctx context.Context, actor auth.Identity, reviewID, trainerID int64, newComment string) error
	DeleteReview(ctx context.Context, actor auth.Identity, reviewID, trainerID int64) error
}

// TrainerService данные для отображения.
type TrainerService interface {
	List(ctx context.Context) ([]*models.Trainer, error)
	Reviews(ctx context.Context, trainerID int64) (*models.TrainerReviews, error)
}

// CookieWriter выдаёт и очищает сессионную cookie.
type CookieWriter interface {
	Set(w http.ResponseWriter, sessionID string) error
	Clear(w http.ResponseWriter)
}

// Recorder учёт действий в метриках.
type Recorder interface {
	ReviewAction(action, outcome string)
	AuthAttempt(action, outcome string)
}

// Controller обработчик GET / и POST /.
type Controller struct {
	log      *slog.Logger
	auth     AuthService
	reviews  ReviewService
	trainers TrainerService
	cookies  CookieWriter
	metrics  Recorder
	view     *Renderer
}

// New создаёт Controller.
func New(log *slog.Logger, authService AuthService, reviewService ReviewService, trainerService TrainerService,
	cookies CookieWriter, recorder Recorder, view *Renderer) *Controller {
	return &Controller{
		log:      log,
		auth:     authService,
		reviews:  reviewService,
		trainers: trainerService,
		cookies:  cookies,
		metrics:  recorder,
		view:     view,
	}
}

func (c *Controller) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "page.Controller"

	log := c.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	action, err := ParseAction(r)
	if err != nil {
		log.Info("rejected request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		if errors.Is(err, ErrAmbiguousAction) {
			render.PlainText(w, r, "ambiguous request: only one action per request is allowed")
			return
		}
		render.PlainText(w, r, "malformed request")
		return
	}
	identity := auth.IdentityFromContext(r.Context())
	log = log.With(slog.String("action", action.Name()), slog.String("user", identity.Username))

	switch a := action.(type) {
	case Register:
		c.register(w, r, log, identity, a)
	case Login:
		c.login(w, r, log, identity, a)
	case Logout:
		c.logout(w, r, log, identity)
	case AddReview:
		_, err := c.reviews.AddReview(r.Context(), identity, a.TrainerID, a.Rating, a.Comment)
		c.afterMutation(w, r, log, identity, a.Name(), a.TrainerID, err)
	case UpdateReview:
		err := c.reviews.UpdateReview(r.Context(), identity, a.ReviewID, a.TrainerID, a.Comment)
		c.afterMutation(w, r, log, identity, a.Name(), a.TrainerID, err)
	case DeleteReview:
		err := c.reviews.DeleteReview(r.Context(), identity, a.ReviewID, a.TrainerID)
		c.afterMutation(w, r, log, identity, a.Name(), a.TrainerID, err)
	case View:
		data := Data{Identity: identity, Notice: notices[r.URL.Query().Get("notice")]}
		c.renderPage(w, r, log, http.StatusOK, a.TrainerID, data)
	}
}

func (c *Controller) register(w http.ResponseWriter, r *http.Request, log *slog.Logger, identity auth.Identity, a Register) {
	err := c.auth.Register(r.Context(), a.Username, a.Password)
	data := Data{Identity: identity, RegUsername: a.Username}
	switch {
	case err == nil:
		log.Info("user registered", slog.String("username", a.Username))
		c.metrics.AuthAttempt(a.Name(), metrics.OutcomeOK)
		redirect(w, r, 0, noticeRegistered)
	case errors.Is(err, auth.ErrDuplicateUsername):
		c.metrics.AuthAttempt(a.Name(), metrics.OutcomeDuplicate)
		data.RegisterError = "This username is already taken."
		c.renderPage(w, r, log, http.StatusConflict, 0, data)
	case errors.Is(err, auth.ErrInvalidRegistration):
		c.metrics.AuthAttempt(a.Name(), metrics.OutcomeInvalid)
		data.RegisterError = validationMessage(err, "Username and password are required, username at most 50 characters.")
		c.renderPage(w, r, log, http.StatusBadRequest, 0, data)
	default:
		log.Error("failed to register user", sl.Err(err))
		c.metrics.AuthAttempt(a.Name(), metrics.OutcomeError)
		data.RegisterError = "Registration failed, please try again later."
		c.renderPage(w, r, log, http.StatusInternalServerError, 0, data)
	}
}

func (c *Controller) login(w http.ResponseWriter, r *http.Request, log *slog.Logger, identity auth.Identity, a Login) {
	sess, err := c.auth.Login(r.Context(), a.Username, a.Password)
	if err == nil && identity.Authenticated() && identity.SessionID != sess.ID {
		// повторный вход: прежняя сессия больше не нужна
		if lerr := c.auth.Logout(r.Context(), identity.SessionID); lerr != nil {
			log.Warn("failed to destroy previous session", sl.Err(lerr))
		}
	}
	if err == nil {
		err = c.cookies.Set(w, sess.ID)
	}
	data := Data{Identity: identity, LoginUsername: a.Username}
	switch {
	case err == nil:
		log.Info("user logged in", slog.String("username", sess.Username))
		c.metrics.AuthAttempt(a.Name(), metrics.OutcomeOK)
		redirect(w, r, 0, "")
	case errors.Is(err, auth.ErrInvalidCredentials):
		log.Info("invalid credentials", slog.String("username", a.Username))
		c.metrics.AuthAttempt(a.Name(), metrics.OutcomeDenied)
		data.LoginError = "Invalid username or password."
		c.renderPage(w, r, log, http.StatusUnauthorized, 0, data)
	default:
		log.Error("failed to log in", sl.Err(err))
		c.metrics.AuthAttempt(a.Name(), metrics.OutcomeError)
		data.ServiceError = "Service unavailable, please try again later."
		c.renderPage(w, r, log, http.StatusInternalServerError, 0, data)
	}
}

func (c *Controller) logout(w http.ResponseWriter, r *http.Request, log *slog.Logger, identity auth.Identity) {
	outcome := metrics.OutcomeOK
	if identity.Authenticated() {
		if err := c.auth.Logout(r.Context(), identity.SessionID); err != nil {
			log.Error("failed to destroy session", sl.Err(err))
			outcome = metrics.OutcomeError
		}
	}
	c.metrics.AuthAttempt(Logout{}.Name(), outcome)
	c.cookies.Clear(w)
	redirect(w, r, 0, "")
}

// afterMutation переводит результат изменения отзыва в редирект с уведомлением.
func (c *Controller) afterMutation(w http.ResponseWriter, r *http.Request, log *slog.Logger,
	identity auth.Identity, action string, trainerID int64, err error) {
	switch {
	case err == nil:
		c.metrics.ReviewAction(action, metrics.OutcomeOK)
		redirect(w, r, trainerID, "")
	case errors.Is(err, reviews.ErrUnauthenticated):
		c.metrics.ReviewAction(action, metrics.OutcomeDenied)
		redirect(w, r, 0, noticeLoginFirst)
	case errors.Is(err, reviews.ErrForbidden):
		log.Warn("review change denied", sl.Err(err))
		c.metrics.ReviewAction(action, metrics.OutcomeDenied)
		redirect(w, r, trainerID, noticeDenied)
	case errors.Is(err, reviews.ErrReviewNotFound), errors.Is(err, reviews.ErrTrainerNotFound):
		c.metrics.ReviewAction(action, metrics.OutcomeNotFound)
		redirect(w, r, trainerID, noticeNotFound)
	case errors.Is(err, reviews.ErrInvalidReview):
		c.metrics.ReviewAction(action, metrics.OutcomeInvalid)
		redirect(w, r, trainerID, noticeInvalid)
	default:
		log.Error("failed to change review", sl.Err(err))
		c.metrics.ReviewAction(action, metrics.OutcomeError)
		c.renderPage(w, r, log, http.StatusInternalServerError, 0, Data{
			Identity:     identity,
			ServiceError: "Service unavailable, please try again later.",
		})
	}
}

// renderPage дозагружает список тренеров и выбранного тренера и рендерит страницу.
// Ошибка хранилища превращает ответ в 500 с сообщением о недоступности сервиса.
func (c *Controller) renderPage(w http.ResponseWriter, r *http.Request, log *slog.Logger,
	status int, trainerID int64, data Data) {
	list, err := c.trainers.List(r.Context())
	if err != nil {
		log.Error("failed to list trainers", sl.Err(err))
		status = http.StatusInternalServerError
		data.ServiceError = "Service unavailable, please try again later."
	}
	data.Trainers = list

	if err == nil && trainerID > 0 {
		tr, err := c.trainers.Reviews(r.Context(), trainerID)
		switch {
		case err == nil:
			data.SelectedID = trainerID
			data.WithTrainer(tr)
		case errors.Is(err, trainers.ErrTrainerNotFound):
			log.Debug("trainer not found", slog.Int64("trainer_id", trainerID))
		default:
			log.Error("failed to load trainer reviews", sl.Err(err))
			status = http.StatusInternalServerError
			data.ServiceError = "Service unavailable, please try again later."
		}
	}

	if err := c.view.Render(w, r, status, data); err != nil {
		log.Error("failed to render page", sl.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// validationMessage возвращает тексты ошибок валидатора или fallback, если их нет в цепочке.
func validationMessage(err error, fallback string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return response.ValidationError(verrs).Error
	}
	return fallback
}

func redirect(w http.ResponseWriter, r *http.Request, trainerID int64, notice string) {
	q := url.Values{}
	if trainerID > 0 {
		q.Set("trainer_id", strconv.FormatInt(trainerID, 10))
	}
	if notice != "" {
		q.Set("notice", notice)
	}
	target := "/"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
