// Package userlist реализует HTTP-обработчик списка пользователей для админки.
package userlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/subscription-accounts/internal/http/response"
	"github.com/magabrotheeeer/subscription-accounts/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-accounts/internal/models"
)

const msgSuccess = "Daftar pengguna."

// Response содержит записи пользователей в том виде, в каком они хранятся,
// включая пароли и API-ключи.
type Response struct {
	response.Response
	Users []models.User `json:"users"`
}

// Service описывает получение списка пользователей.
type Service interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Handler обрабатывает GET /api/admin/users.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Tags admin
// @Produce json
// @Success 200 {object} Response
// @Failure 500 {object} response.Response "Хранилище недоступно"
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Debug("users listed", slog.Int("count", len(users)))
	response.JSON(w, r, http.StatusOK, Response{
		Response: response.OK(msgSuccess),
		Users:    users,
	})
}
