package page

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ajg/form"
)

var (
	// ErrAmbiguousAction запрос несёт больше одного маркера действия.
	ErrAmbiguousAction = errors.New("request carries more than one action")
	// ErrMalformedForm тело формы не разбирается.
	ErrMalformedForm = errors.New("malformed form")
)

// Маркеры действий в query и в теле формы.
const (
	markerLogout       = "logout"
	markerDeleteReview = "delete_review"
	markerRegister     = "register"
	markerLogin        = "login"
	markerAddReview    = "add_review"
	markerUpdateReview = "update_review"
)

// Action одно действие, которое выполняет запрос к странице.
type Action interface {
	Name() string
}

// Register регистрация нового пользователя.
type Register struct {
	Username string `form:"reg_username"`
	Password string `form:"reg_password"`
}

// Login вход по имени и паролю.
type Login struct {
	Username string `form:"login_username"`
	Password string `form:"login_password"`
}

// Logout выход.
type Logout struct{}

// AddReview новый отзыв. Rating равен 0, если поле не является числом.
type AddReview struct {
	TrainerID int64
	Rating    int
	Comment   string
}

// UpdateReview новый текст существующего отзыва.
type UpdateReview struct {
	ReviewID  int64
	TrainerID int64
	Comment   string
}

// DeleteReview удаление отзыва.
type DeleteReview struct {
	ReviewID  int64
	TrainerID int64
}

// View показ страницы. TrainerID равен 0, если тренер не выбран или id некорректен.
type View struct {
	TrainerID int64
}

func (Register) Name() string     { return "register" }
func (Login) Name() string        { return "login" }
func (Logout) Name() string       { return "logout" }
func (AddReview) Name() string    { return "add" }
func (UpdateReview) Name() string { return "update" }
func (DeleteReview) Name() string { return "delete" }
func (View) Name() string         { return "view" }

type addReviewForm struct {
	TrainerID string `form:"trainer_id"`
	Rating    string `form:"rating"`
	Comment   string `form:"comment"`
}

type updateReviewForm struct {
	ReviewID  string `form:"review_id"`
	TrainerID string `form:"trainer_id"`
	Comment   string `form:"updated_comment"`
}

type deleteReviewForm struct {
	ReviewID  string `form:"delete_review"`
	TrainerID string `form:"trainer_id"`
}

// ParseAction определяет единственное действие запроса.
// Маркеры logout и delete_review читаются из query, остальные из тела POST.
func ParseAction(r *http.Request) (Action, error) {
	const op = "page.ParseAction"

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrMalformedForm, err)
	}
	query := r.URL.Query()

	var markers []string
	for _, m := range []string{markerLogout, markerDeleteReview} {
		if query.Has(m) {
			markers = append(markers, m)
		}
	}
	if r.Method == http.MethodPost {
		for _, m := range []string{markerRegister, markerLogin, markerAddReview, markerUpdateReview} {
			if r.PostForm.Has(m) {
				markers = append(markers, m)
			}
		}
	}
	if len(markers) > 1 {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrAmbiguousAction, strings.Join(markers, ","))
	}
	if len(markers) == 0 {
		return View{TrainerID: parseID(query.Get("trainer_id"))}, nil
	}

	switch markers[0] {
	case markerLogout:
		return Logout{}, nil
	case markerDeleteReview:
		var f deleteReviewForm
		if err := decodeForm(query, &f); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return DeleteReview{ReviewID: parseID(f.ReviewID), TrainerID: parseID(f.TrainerID)}, nil
	case markerRegister:
		var a Register
		if err := decodeForm(r.PostForm, &a); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return a, nil
	case markerLogin:
		var a Login
		if err := decodeForm(r.PostForm, &a); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return a, nil
	case markerAddReview:
		var f addReviewForm
		if err := decodeForm(r.PostForm, &f); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		rating, err := strconv.Atoi(strings.TrimSpace(f.Rating))
		if err != nil {
			rating = 0
		}
		return AddReview{TrainerID: parseID(f.TrainerID), Rating: rating, Comment: f.Comment}, nil
	default:
		var f updateReviewForm
		if err := decodeForm(r.PostForm, &f); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return UpdateReview{ReviewID: parseID(f.ReviewID), TrainerID: parseID(f.TrainerID), Comment: f.Comment}, nil
	}
}

func decodeForm(values url.Values, dst any) error {
	d := form.NewDecoder(nil)
	d.IgnoreUnknownKeys(true)
	if err := d.DecodeValues(dst, values); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedForm, err)
	}
	return nil
}

// parseID возвращает 0 для пустых, нечисловых и неположительных значений.
func parseID(s string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
