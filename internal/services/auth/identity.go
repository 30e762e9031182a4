package auth

import "context"

// Identity пользователь текущего запроса. Нулевое значение означает анонимного посетителя.
type Identity struct {
	UserID    int64
	Username  string
	IsAdmin   bool
	SessionID string
}

// Authenticated сообщает, выполнен ли вход.
func (i Identity) Authenticated() bool {
	return i.Username != ""
}

type identityKey struct{}

// WithIdentity кладёт Identity в контекст запроса.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext достаёт Identity из контекста. Без записи возвращает анонима.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}
