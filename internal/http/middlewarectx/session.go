// Package middlewarectx содержит HTTP middleware приложения.
//
// Session восстанавливает пользователя по cookie и кладёт auth.Identity в контекст
// запроса один раз, дальше обработчики читают её через auth.IdentityFromContext.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/7BlackFire7/sport-program/internal/lib/sl"
	"github.com/7BlackFire7/sport-program/internal/services/auth"
	"github.com/7BlackFire7/sport-program/internal/session"
)

// CookieReader читает и очищает сессионную cookie.
type CookieReader interface {
	Read(r *http.Request) (string, error)
	Clear(w http.ResponseWriter)
}

// Resolver восстанавливает пользователя по идентификатору сессии.
type Resolver interface {
	Resolve(ctx context.Context, sessionID string) (auth.Identity, error)
}

// Session не отклоняет запросы: без валидной сессии посетитель остаётся анонимным.
func Session(log *slog.Logger, cookies CookieReader, resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Session"

			sessionID, err := cookies.Read(r)
			if errors.Is(err, session.ErrNoCookie) {
				next.ServeHTTP(w, r)
				return
			}
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
			if err != nil {
				log.Info("rejected session cookie", sl.Err(err))
				cookies.Clear(w)
				next.ServeHTTP(w, r)
				return
			}

			identity, err := resolver.Resolve(r.Context(), sessionID)
			if err != nil {
				if errors.Is(err, session.ErrNotFound) {
					log.Debug("session expired", slog.String("session_id", sessionID))
					cookies.Clear(w)
				} else {
					log.Error("failed to load session", sl.Err(err))
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}
