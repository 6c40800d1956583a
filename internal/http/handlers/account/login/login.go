// Package login реализует HTTP-обработчик входа пользователя.
//
// При успехе возвращаются только имя и email: пароль и API-ключ в ответ
// не попадают.
package login

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-accounts/internal/http/request"
	"github.com/magabrotheeeer/subscription-accounts/internal/http/response"
	"github.com/magabrotheeeer/subscription-accounts/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-accounts/internal/services/account"
)

const (
	msgSuccess  = "Login berhasil."
	msgRequired = "Email dan password harus diisi."
)

// Request — учётные данные пользователя.
type Request struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Response — ответ при успешном входе.
type Response struct {
	response.Response
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Service описывает операцию входа.
type Service interface {
	Login(ctx context.Context, email, password string) (account.Profile, error)
}

// Handler обрабатывает POST /api/login.
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
// @Summary Вход пользователя
// @Description Проверяет email, пароль и срок активности учётной записи.
// @Tags account
// @Accept  json
// @Produce json
// @Param   request body Request true "Учетные данные пользователя"
// @Success 200 {object} Response
// @Failure 400 {object} response.Response "Не заполнены поля"
// @Failure 401 {object} response.Response "Неверный email или пароль"
// @Failure 403 {object} response.Response "Срок активности истёк"
// @Failure 500 {object} response.Response "Хранилище недоступно"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.login"

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

	profile, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Warn("login failed", sl.Email(req.Email), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("login success", sl.Email(profile.Email))
	response.JSON(w, r, http.StatusOK, Response{
		Response: response.OK(msgSuccess),
		Name:     profile.Name,
		Email:    profile.Email,
	})
}
