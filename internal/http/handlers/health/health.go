// Package health отдаёт состояние сервиса и доступность базы.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/7BlackFire7/sport-program/internal/http/response"
	"github.com/7BlackFire7/sport-program/internal/lib/sl"
)

// Pinger проверяет соединение с хранилищем.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler обработчик /healthz.
type Handler struct {
	log           *slog.Logger
	db            Pinger
	schemaVersion uint
}

// New создаёт Handler. schemaVersion версия схемы, применённая при старте.
func New(log *slog.Logger, db Pinger, schemaVersion uint) *Handler {
	return &Handler{
		log:           log,
		db:            db,
		schemaVersion: schemaVersion,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if err := h.db.Ping(r.Context()); err != nil {
		h.log.Error("database is unreachable",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err))
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database unavailable"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status":         "ok",
		"schema_version": h.schemaVersion,
	}))
}
