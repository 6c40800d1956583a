// Package accounts собирает HTTP-приложение учётных записей.
package accounts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/unrolled/secure"
	"golang.org/x/time/rate"

	_ "github.com/magabrotheeeer/subscription-accounts/docs"
	"github.com/magabrotheeeer/subscription-accounts/internal/config"
	"github.com/magabrotheeeer/subscription-accounts/internal/http/handlers/account/login"
	"github.com/magabrotheeeer/subscription-accounts/internal/http/handlers/account/register"
	"github.com/magabrotheeeer/subscription-accounts/internal/http/handlers/admin/activeperiod"
	"github.com/magabrotheeeer/subscription-accounts/internal/http/handlers/admin/apikey"
	"github.com/magabrotheeeer/subscription-accounts/internal/http/handlers/admin/userlist"
	"github.com/magabrotheeeer/subscription-accounts/internal/http/handlers/health"
	"github.com/magabrotheeeer/subscription-accounts/internal/http/metrics"
	"github.com/magabrotheeeer/subscription-accounts/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-accounts/internal/services/account"
	"github.com/magabrotheeeer/subscription-accounts/web"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, storage health.Storage, accountService *account.Service, m *metrics.Metrics) {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		IsDevelopment:      cfg.Env == "local",
	})

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		m.Middleware,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
			MaxAge:         300,
		}),
		secureMiddleware.Handler,
	)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", register.New(logger, accountService).ServeHTTP)
		r.With(
			middlewarectx.RateLimitMiddleware(logger, rate.Limit(cfg.RPS), cfg.Burst),
		).Post("/login", login.New(logger, accountService).ServeHTTP)

		// Админские маршруты без авторизации
		r.Route("/admin/users", func(r chi.Router) {
			r.Get("/", userlist.New(logger, accountService).ServeHTTP)
			r.Post("/{email}/set-active-period", activeperiod.New(logger, accountService).ServeHTTP)
			r.Post("/{email}/create-apikey", apikey.New(logger, accountService).ServeHTTP)
		})
	})

	// Страницы и статика
	r.Get("/", page("index.html"))
	r.Get("/admin", page("admin.html"))
	r.Handle("/static/*", http.FileServerFS(web.Static))

	r.Get("/healthz", health.New(logger, storage).ServeHTTP)
	r.Handle("/metrics", m.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

func page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, web.Pages, name)
	}
}
