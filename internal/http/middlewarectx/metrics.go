package middlewarectx

import (
	"net/http"

	"github.com/go-chi/chi/middleware"
)

// RequestObserver учитывает завершённые запросы.
type RequestObserver interface {
	ObserveRequest(method string, status int)
}

// Metrics считает запросы по методу и коду ответа.
func Metrics(observer RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			observer.ObserveRequest(r.Method, status)
		})
	}
}
