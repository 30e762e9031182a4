package models

// Trainer описывает профиль тренера, которого оценивают посетители.
// Тренеры заводятся вне приложения и здесь только читаются.
type Trainer struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Description    string `json:"description"`
	Image          string `json:"image"`
}
