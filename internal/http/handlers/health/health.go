// Package health отдаёт состояние сервиса и доступность хранилища.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/subscription-accounts/internal/http/response"
	"github.com/magabrotheeeer/subscription-accounts/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-accounts/internal/models"
)

// Storage — чтение документа, которым проверяется хранилище.
type Storage interface {
	Load(ctx context.Context) (*models.Document, error)
}

// Handler обрабатывает GET /healthz.
type Handler struct {
	log     *slog.Logger
	storage Storage
}

func New(log *slog.Logger, storage Storage) *Handler {
	return &Handler{
		log:     log,
		storage: storage,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if _, err := h.storage.Load(r.Context()); err != nil {
		h.log.Error("storage check failed",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		response.Fail(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.OK("ok"))
}
