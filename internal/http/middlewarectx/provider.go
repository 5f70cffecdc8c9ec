package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/appointment-scheduler/internal/http/response"
)

// ProviderOnly пропускает только провайдеров, остальным 401.
func ProviderOnly(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsProvider(r.Context()) {
				log.Info("provider access denied")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("only providers can load notifications"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
