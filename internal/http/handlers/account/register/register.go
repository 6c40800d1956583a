// Package register реализует HTTP-обработчик регистрации пользователя.
package register

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
	msgSuccess  = "Registrasi berhasil."
	msgRequired = "Semua field harus diisi."
)

// Request — входные данные для регистрации
type Request struct {
	Name     string `json:"name" form:"name" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Service описывает операцию регистрации.
type Service interface {
	Register(ctx context.Context, name, email, password string) error
}

// Handler обрабатывает POST /api/register.
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
// @Summary Регистрация нового пользователя
// @Tags account
// @Accept  json
// @Produce json
// @Param   request body Request true "Имя, email и пароль"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response "Не заполнены поля или email уже занят"
// @Failure 500 {object} response.Response "Хранилище недоступно"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
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

	if err := h.service.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		log.Warn("registration failed", sl.Email(req.Email), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("user registered", sl.Email(req.Email))
	response.JSON(w, r, http.StatusCreated, response.OK(msgSuccess))
}
