package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/subscription-accounts/internal/config"
	"github.com/magabrotheeeer/subscription-accounts/internal/http/metrics"
	"github.com/magabrotheeeer/subscription-accounts/internal/lib/password"
	"github.com/magabrotheeeer/subscription-accounts/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-accounts/internal/services/account"
	"github.com/magabrotheeeer/subscription-accounts/internal/storage/jsonfile"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	store  *jsonfile.Store
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "accounts.New"

	store, err := jsonfile.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accountService := account.NewService(store, password.New(cfg.PasswordHashing), logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, store, accountService, metrics.New())

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		store:  store,
	}, nil
}

// Handler возвращает корневой обработчик приложения.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting",
			slog.String("address", a.server.Addr),
			slog.String("storage", a.store.Path()),
		)
		a.logger.Info("server running", slog.String("url", a.baseURL()))
		a.logger.Info("admin panel", slog.String("url", a.baseURL()+"/admin"))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.closeStore()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.closeStore()
		return err
	}
}

func (a *App) closeStore() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}

func (a *App) baseURL() string {
	host, port, err := net.SplitHostPort(a.server.Addr)
	if err != nil {
		return "http://" + a.server.Addr
	}
	if host == "" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
