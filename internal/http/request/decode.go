// Package request декодирует тела HTTP-запросов.
package request

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"
)

// Decode читает тело запроса в v. Формы (application/x-www-form-urlencoded)
// разбираются по тегам `form`, всё остальное считается JSON. Пустое тело
// не является ошибкой: v остаётся нулевым и дальше не проходит валидацию.
func Decode(r *http.Request, v any) error {
	var err error
	switch render.GetRequestContentType(r) {
	case render.ContentTypeForm:
		err = render.DecodeForm(r.Body, v)
	default:
		err = render.DecodeJSON(r.Body, v)
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
