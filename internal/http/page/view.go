package page

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"

	"github.com/7BlackFire7/sport-program/internal/models"
	"github.com/7BlackFire7/sport-program/internal/services/auth"
	"github.com/7BlackFire7/sport-program/internal/services/reviews"
)

//go:embed templates/*.html
var templateFS embed.FS

// Тексты уведомлений по значению параметра notice.
var notices = map[string]string{
	noticeDenied:     "You can only edit or delete your own reviews.",
	noticeNotFound:   "That review or trainer no longer exists.",
	noticeInvalid:    "Rating must be between 1 and 5 and the comment must be 1 to 2000 characters long.",
	noticeRegistered: "Registration successful. You can log in now.",
	noticeLoginFirst: "Please log in to write a review.",
}

// Data модель страницы.
type Data struct {
	Identity      auth.Identity
	Trainers      []*models.Trainer
	SelectedID    int64
	Trainer       *models.Trainer
	Reviews       []ReviewItem
	AverageRating float64
	Notice        string
	RegisterError string
	LoginError    string
	RegUsername   string
	LoginUsername string
	ServiceError  string
}

// ReviewItem отзыв с признаком, может ли текущий пользователь его менять.
type ReviewItem struct {
	*models.Review
	CanModify bool
}

// Renderer рендерит страницу из встроенных шаблонов.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer разбирает шаблоны.
func NewRenderer() (*Renderer, error) {
	const op = "page.NewRenderer"
	tmpl, err := template.New("page").Funcs(template.FuncMap{
		"stars":    stars,
		"rating":   formatRating,
		"datetime": formatTime,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render пишет HTML со статусом status.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, data Data) error {
	const op = "page.Render"
	var buf bytes.Buffer
	if err := v.tmpl.ExecuteTemplate(&buf, "page.html", data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	render.Status(r, status)
	render.HTML(w, r, buf.String())
	return nil
}

// WithTrainer заполняет данные выбранного тренера и права на каждый отзыв.
func (d *Data) WithTrainer(tr *models.TrainerReviews) {
	d.Trainer = tr.Trainer
	d.AverageRating = tr.AverageRating
	d.Reviews = make([]ReviewItem, 0, len(tr.Reviews))
	for _, rv := range tr.Reviews {
		d.Reviews = append(d.Reviews, ReviewItem{
			Review:    rv,
			CanModify: reviews.Authorize(d.Identity, *rv),
		})
	}
}

func stars(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat("★", n)
}

func formatRating(avg float64) string {
	return strconv.FormatFloat(avg, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}
