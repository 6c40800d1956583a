// Package activeperiod реализует HTTP-обработчик установки срока активности.
package activeperiod

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-accounts/internal/http/request"
	"github.com/magabrotheeeer/subscription-accounts/internal/http/response"
	"github.com/magabrotheeeer/subscription-accounts/internal/lib/sl"
)

const (
	msgSuccess  = "Masa aktif berhasil diperbarui."
	msgRequired = "Tanggal masa aktif harus diisi."
)

// Request — новая дата окончания. Допустимые форматы: RFC 3339,
// 2006-01-02T15:04 и 2006-01-02.
type Request struct {
	ActiveUntil string `json:"activeUntil" form:"activeUntil" validate:"required"`
}

// Service описывает изменение срока активности.
type Service interface {
	SetActivePeriod(ctx context.Context, email, activeUntil string) error
}

// Handler обрабатывает POST /api/admin/users/{email}/set-active-period.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Установка срока активности пользователя
// @Tags admin
// @Accept  json
// @Produce json
// @Param   email path string true "Email пользователя"
// @Param   request body Request true "Дата окончания"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response "Дата не задана или в неверном формате"
// @Failure 404 {object} response.Response "Пользователь не найден"
// @Failure 500 {object} response.Response "Хранилище недоступно"
// @Router /admin/users/{email}/set-active-period [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.activeperiod"

	email := request.PathParam(r, "email")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		sl.Email(email),
	)

	var req Request
	if err := request.Decode(r, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error(response.KindValidation, response.MsgInvalidBody))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.ValidationError(msgRequired, err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.SetActivePeriod(r.Context(), email, req.ActiveUntil); err != nil {
		log.Warn("failed to set active period", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("active period updated", slog.String("active_until", req.ActiveUntil))
	response.JSON(w, r, http.StatusOK, response.OK(msgSuccess))
}
