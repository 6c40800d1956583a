// Package apikey реализует HTTP-обработчик выпуска API-ключа.
package apikey

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/subscription-accounts/internal/http/request"
	"github.com/magabrotheeeer/subscription-accounts/internal/http/response"
	"github.com/magabrotheeeer/subscription-accounts/internal/lib/sl"
)

const msgSuccess = "API key berhasil dibuat."

// Response содержит выпущенный ключ.
type Response struct {
	response.Response
	APIKey string `json:"apiKey"`
}

// Service описывает выпуск ключа.
type Service interface {
	CreateAPIKey(ctx context.Context, email string) (string, error)
}

// Handler обрабатывает POST /api/admin/users/{email}/create-apikey.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Выпуск API-ключа
// @Description Генерирует новый ключ (40 hex-символов) и заменяет предыдущий.
// @Tags admin
// @Produce json
// @Param   email path string true "Email пользователя"
// @Success 200 {object} Response
// @Failure 404 {object} response.Response "Пользователь не найден"
// @Failure 500 {object} response.Response "Хранилище недоступно"
// @Router /admin/users/{email}/create-apikey [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.apikey"

	email := request.PathParam(r, "email")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		sl.Email(email),
	)

	key, err := h.service.CreateAPIKey(r.Context(), email)
	if err != nil {
		log.Warn("failed to create api key", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("api key created")
	response.JSON(w, r, http.StatusOK, Response{
		Response: response.OK(msgSuccess),
		APIKey:   key,
	})
}
