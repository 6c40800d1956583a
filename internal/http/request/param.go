package request

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi"
)

// PathParam возвращает декодированное значение параметра маршрута.
// chi сопоставляет маршрут по RawPath, если он задан, и тогда значение
// приходит в экранированном виде (например, ana%40x.com).
func PathParam(r *http.Request, key string) string {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value
	}
	if unescaped, err := url.PathUnescape(value); err == nil {
		return unescaped
	}
	return value
}
