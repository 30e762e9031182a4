// Package read отдаёт тренера с отзывами и средним рейтингом в JSON.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/7BlackFire7/sport-program/internal/http/response"
	"github.com/7BlackFire7/sport-program/internal/lib/sl"
	"github.com/7BlackFire7/sport-program/internal/models"
	"github.com/7BlackFire7/sport-program/internal/services/trainers"
)

// Service источник данных тренера.
type Service interface {
	Reviews(ctx context.Context, trainerID int64) (*models.TrainerReviews, error)
}

// Handler обработчик GET /api/v1/trainers/{id}.
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
	const op = "handlers.trainers.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		log.Info("invalid trainer id", slog.String("id", chi.URLParam(r, "id")))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("trainer not found"))
		return
	}

	res, err := h.service.Reviews(r.Context(), id)
	if errors.Is(err, trainers.ErrTrainerNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("trainer not found"))
		return
	}
	if err != nil {
		log.Error("failed to read trainer", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read trainer"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(res))
}
