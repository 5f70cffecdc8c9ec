// Package appointmentscheduler собирает HTTP API сервиса записи на прием.
package appointmentscheduler

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/appointment-scheduler/internal/http/handlers/appointments/cancel"
	"github.com/magabrotheeeer/appointment-scheduler/internal/http/handlers/appointments/create"
	appointmentslist "github.com/magabrotheeeer/appointment-scheduler/internal/http/handlers/appointments/list"
	"github.com/magabrotheeeer/appointment-scheduler/internal/http/handlers/files/upload"
	"github.com/magabrotheeeer/appointment-scheduler/internal/http/handlers/health"
	notificationslist "github.com/magabrotheeeer/appointment-scheduler/internal/http/handlers/notifications/list"
	providerslist "github.com/magabrotheeeer/appointment-scheduler/internal/http/handlers/providers/list"
	"github.com/magabrotheeeer/appointment-scheduler/internal/http/handlers/sessions/login"
	"github.com/magabrotheeeer/appointment-scheduler/internal/http/handlers/users/register"
	"github.com/magabrotheeeer/appointment-scheduler/internal/http/middlewarectx"
)

// AuthService регистрация и вход.
type AuthService interface {
	register.Service
	login.Service
}

// AppointmentService операции над записями.
type AppointmentService interface {
	create.Service
	cancel.Service
	appointmentslist.Service
}

// Services зависимости обработчиков.
type Services struct {
	Auth          AuthService
	Tokens        middlewarectx.TokenParser
	Providers     providerslist.Service
	Files         upload.Service
	Appointments  AppointmentService
	Notifications notificationslist.Service
	Health        map[string]health.Pinger
	Limiter       *rate.Limiter
	UploadsDir    string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/users", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/sessions", login.New(logger, s.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Tokens, logger))
			r.Use(middlewarectx.RateLimitMiddleware(s.Limiter, logger))

			r.Get("/providers", providerslist.New(logger, s.Providers).ServeHTTP)
			r.Post("/files", upload.New(logger, s.Files).ServeHTTP)

			r.Get("/appointments", appointmentslist.New(logger, s.Appointments).ServeHTTP)
			r.Post("/appointments", create.New(logger, s.Appointments).ServeHTTP)
			r.Delete("/appointments/{id}", cancel.New(logger, s.Appointments).ServeHTTP)

			r.With(middlewarectx.ProviderOnly(logger)).
				Get("/notifications", notificationslist.New(logger, s.Notifications).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, s.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
	r.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(uploadsFS{http.Dir(s.UploadsDir)})))
}

// uploadsFS отдает только файлы: каталоги выглядят несуществующими,
// поэтому список загруженных аватаров не раскрывается.
type uploadsFS struct {
	fs http.FileSystem
}

func (u uploadsFS) Open(name string) (http.File, error) {
	f, err := u.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
