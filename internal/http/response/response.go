// Package response содержит единый формат JSON-ответов HTTP-обработчиков
// и отображение ошибок бизнес-логики в HTTP-статусы.
//
// Тексты сообщений совпадают с теми, что показывают веб-страницы
// (index.html и admin.html), поэтому менять их нужно вместе со страницами.
package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-accounts/internal/models"
	"github.com/magabrotheeeer/subscription-accounts/internal/services/account"
	"github.com/magabrotheeeer/subscription-accounts/internal/storage/jsonfile"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Обработчики встраивают её в свои структуры, добавляя поля данных.
type Response struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Kind    string   `json:"kind,omitempty"`
	Details []string `json:"details,omitempty"`
}

// Машиночитаемые виды ошибок.
const (
	KindValidation         = "validation"
	KindDuplicateEmail     = "duplicate_email"
	KindInvalidCredentials = "invalid_credentials"
	KindAccountInactive    = "account_inactive"
	KindUserNotFound       = "user_not_found"
	KindStorageUnavailable = "storage_unavailable"
	KindCorruptStore       = "corrupt_store"
	KindRateLimited        = "rate_limited"
	KindInternal           = "internal"
)

const (
	MsgInvalidBody        = "Format permintaan tidak valid."
	MsgValidation         = "Permintaan tidak valid."
	MsgInvalidActiveUntil = "Format tanggal masa aktif tidak valid."
	MsgDuplicateEmail     = "Email sudah terdaftar."
	MsgInvalidCredentials = "Email atau password salah."
	MsgAccountInactive    = "Akun Anda sudah tidak aktif. Hubungi admin."
	MsgUserNotFound       = "Pengguna tidak ditemukan."
	MsgStorageUnavailable = "Penyimpanan data tidak tersedia."
	MsgCorruptStore       = "Data penyimpanan rusak."
	MsgRateLimited        = "Terlalu banyak permintaan. Coba lagi nanti."
	MsgInternal           = "Terjadi kesalahan pada server."
)

// OK возвращает успешный Response с сообщением msg.
func OK(msg string) Response {
	return Response{Success: true, Message: msg}
}

// Error возвращает Response с ошибкой вида kind.
func Error(kind, msg string) Response {
	return Response{Kind: kind, Message: msg}
}

// ValidationError формирует ответ по ошибкам валидатора. msg это текст для
// пользователя, а подробности по каждому полю идут в Details.
func ValidationError(msg string, errs validator.ValidationErrors) Response {
	details := make([]string, 0, len(errs))
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			details = append(details, fmt.Sprintf("field %s is a required field", err.Field()))
		default:
			details = append(details, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	resp := Error(KindValidation, msg)
	resp.Details = details
	return resp
}

// FromError подбирает HTTP-статус и ответ для ошибки сервиса.
// Неизвестные ошибки превращаются в 500 без раскрытия текста.
func FromError(err error) (int, Response) {
	switch {
	case errors.Is(err, models.ErrInvalidActiveUntil):
		return http.StatusBadRequest, Error(KindValidation, MsgInvalidActiveUntil)
	case errors.Is(err, account.ErrValidation):
		return http.StatusBadRequest, Error(KindValidation, MsgValidation)
	case errors.Is(err, account.ErrDuplicateEmail):
		return http.StatusBadRequest, Error(KindDuplicateEmail, MsgDuplicateEmail)
	case errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusUnauthorized, Error(KindInvalidCredentials, MsgInvalidCredentials)
	case errors.Is(err, account.ErrAccountInactive):
		return http.StatusForbidden, Error(KindAccountInactive, MsgAccountInactive)
	case errors.Is(err, account.ErrUserNotFound):
		return http.StatusNotFound, Error(KindUserNotFound, MsgUserNotFound)
	case errors.Is(err, jsonfile.ErrCorruptStore):
		return http.StatusInternalServerError, Error(KindCorruptStore, MsgCorruptStore)
	case errors.Is(err, jsonfile.ErrStorageUnavailable):
		return http.StatusInternalServerError, Error(KindStorageUnavailable, MsgStorageUnavailable)
	default:
		return http.StatusInternalServerError, Error(KindInternal, MsgInternal)
	}
}

// JSON пишет v со статусом status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// Fail пишет ответ для ошибки err.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := FromError(err)
	JSON(w, r, status, resp)
}
