// Package middlewarectx содержит HTTP middleware: проверку JWT, доступ только для
// провайдеров и ограничение частоты запросов.
//
// JWTMiddleware проверяет токен из заголовка Authorization и кладет в контекст
// id пользователя и признак провайдера.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/appointment-scheduler/internal/http/response"
	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/jwt"
	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserID ключ для id пользователя в контексте
	UserID Key = "user_id"
	// Provider ключ для признака провайдера в контексте
	Provider Key = "provider"
)

// TokenParser разбирает и проверяет JWT.
type TokenParser interface {
	ParseToken(token string) (*jwt.CustomClaims, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
// При ошибке отвечает 401 Unauthorized.
func JWTMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Info("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("token not provided"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Info("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("token invalid"))
				return
			}
			ctx := context.WithValue(r.Context(), UserID, claims.UserID)
			ctx = context.WithValue(ctx, Provider, claims.Provider)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFrom достает id пользователя, положенный JWTMiddleware.
func UserIDFrom(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(UserID).(int)
	return id, ok && id > 0
}

// IsProvider признак провайдера из контекста.
func IsProvider(ctx context.Context) bool {
	p, _ := ctx.Value(Provider).(bool)
	return p
}

// WithUser кладет пользователя в контекст так же, как JWTMiddleware.
func WithUser(ctx context.Context, userID int, provider bool) context.Context {
	ctx = context.WithValue(ctx, UserID, userID)
	return context.WithValue(ctx, Provider, provider)
}
