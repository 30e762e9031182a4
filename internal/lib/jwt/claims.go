// Package jwt подписывает и проверяет значение сессионной cookie.
//
// В cookie хранится только идентификатор сессии, подписанный HS256.
package jwt

import (
	"errors"
	"time"
)

// ErrInvalidToken возвращается для неподписанных, просроченных или повреждённых токенов.
var ErrInvalidToken = errors.New("invalid session token")

// Maker описывает выпуск и разбор токена с идентификатором сессии.
type Maker interface {
	// GenerateToken подписывает идентификатор сессии.
	GenerateToken(sessionID string) (string, error)
	// ParseToken проверяет подпись и срок действия, возвращает идентификатор сессии.
	ParseToken(tokenStr string) (string, error)
}

// MakerImpl реализует Maker на секретном ключе и времени жизни токена.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker создаёт MakerImpl. TTL совпадает со временем жизни сессии в хранилище.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
