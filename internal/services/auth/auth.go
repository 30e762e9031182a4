// Package auth содержит регистрацию, вход и выход пользователей.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator"

	"github.com/7BlackFire7/sport-program/internal/lib/password"
	"github.com/7BlackFire7/sport-program/internal/models"
	"github.com/7BlackFire7/sport-program/internal/session"
	"github.com/7BlackFire7/sport-program/internal/storage"
)

var (
	// ErrDuplicateUsername имя пользователя уже занято.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrInvalidCredentials пользователь не найден или пароль не подошёл.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrRegistrationFailed регистрация не удалась по внутренней причине.
	ErrRegistrationFailed = errors.New("registration failed")
	// ErrInvalidRegistration имя или пароль не прошли проверку формата.
	ErrInvalidRegistration = errors.New("invalid registration data")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	UserExists(ctx context.Context, username string) (bool, error)
	RegisterUser(ctx context.Context, user models.User) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// SessionStore хранилище серверных сессий.
type SessionStore interface {
	Create(ctx context.Context, user models.User) (*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	Destroy(ctx context.Context, id string) error
}

// Registration данные формы регистрации.
type Registration struct {
	Username string `validate:"required,max=50"`
	Password string `validate:"required"`
}

// Service отвечает за регистрацию, вход и выход.
type Service struct {
	users    UserRepository
	sessions SessionStore
	validate *validator.Validate
}

// NewService создаёт Service.
func NewService(users UserRepository, sessions SessionStore) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		validate: validator.New(),
	}
}

// Register создаёт обычного пользователя с bcrypt‑хэшем пароля. Вход не выполняется.
func (s *Service) Register(ctx context.Context, username, rawPassword string) error {
	const op = "auth.Register"

	reg := Registration{Username: strings.TrimSpace(username), Password: rawPassword}
	if err := s.validate.Struct(reg); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidRegistration, err)
	}

	exists, err := s.users.UserExists(ctx, reg.Username)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrRegistrationFailed, err)
	}
	if exists {
		return fmt.Errorf("%s: %w", op, ErrDuplicateUsername)
	}

	hashed, err := password.GetHash(reg.Password)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrRegistrationFailed, err)
	}

	_, err = s.users.RegisterUser(ctx, models.User{
		Username:     reg.Username,
		PasswordHash: hashed,
		IsAdmin:      false,
	})
	switch {
	case errors.Is(err, storage.ErrUserExists):
		// параллельная регистрация того же имени
		return fmt.Errorf("%s: %w", op, ErrDuplicateUsername)
	case err != nil:
		return fmt.Errorf("%s: %w: %w", op, ErrRegistrationFailed, err)
	}
	return nil
}

// Login проверяет пароль и заводит новую сессию.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (*session.Session, error) {
	const op = "auth.Login"

	username = strings.TrimSpace(username)
	if username == "" || rawPassword == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = password.CompareHash(user.PasswordHash, rawPassword)
	if errors.Is(err, password.ErrMismatch) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sess, err := s.sessions.Create(ctx, *user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}

// Logout удаляет сессию.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	const op = "auth.Logout"
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Resolve восстанавливает Identity по идентификатору сессии.
func (s *Service) Resolve(ctx context.Context, sessionID string) (Identity, error) {
	const op = "auth.Resolve"
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return Identity{}, fmt.Errorf("%s: %w", op, err)
	}
	return Identity{
		UserID:    sess.UserID,
		Username:  sess.Username,
		IsAdmin:   sess.IsAdmin,
		SessionID: sess.ID,
	}, nil
}
