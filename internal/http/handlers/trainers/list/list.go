// Package list отдаёт список тренеров в JSON.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/7BlackFire7/sport-program/internal/http/response"
	"github.com/7BlackFire7/sport-program/internal/lib/sl"
	"github.com/7BlackFire7/sport-program/internal/models"
)

// Service источник тренеров.
type Service interface {
	List(ctx context.Context) ([]*models.Trainer, error)
}

// Handler обработчик GET /api/v1/trainers.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.trainers.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list trainers", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list trainers"))
		return
	}

	log.Debug("list trainers", slog.Int("count", len(res)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"count":    len(res),
		"trainers": res,
	}))
}
