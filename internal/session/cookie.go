package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/7BlackFire7/sport-program/internal/lib/jwt"
)

// ErrNoCookie в запросе нет cookie сессии.
var ErrNoCookie = errors.New("session cookie not present")

// Cookies выдаёт, читает и очищает cookie с подписанным идентификатором сессии.
type Cookies struct {
	maker  jwt.Maker
	name   string
	ttl    time.Duration
	secure bool
}

// NewCookies создаёт менеджер cookie.
func NewCookies(maker jwt.Maker, name string, ttl time.Duration, secure bool) *Cookies {
	return &Cookies{maker: maker, name: name, ttl: ttl, secure: secure}
}

// Set записывает cookie с идентификатором сессии.
func (c *Cookies) Set(w http.ResponseWriter, sessionID string) error {
	const op = "session.Cookies.Set"
	token, err := c.maker.GenerateToken(sessionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read возвращает идентификатор сессии из cookie после проверки подписи.
func (c *Cookies) Read(r *http.Request) (string, error) {
	const op = "session.Cookies.Read"
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return "", fmt.Errorf("%s: %w", op, ErrNoCookie)
	}
	id, err := c.maker.ParseToken(cookie.Value)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Clear удаляет cookie у клиента.
func (c *Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
