// Package list реализует HTTP-обработчик ленты уведомлений провайдера.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/appointment-scheduler/internal/http/middlewarectx"
	"github.com/magabrotheeeer/appointment-scheduler/internal/http/response"
	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
)

// Service описывает чтение уведомлений.
type Service interface {
	List(ctx context.Context, recipientID, limit int) ([]models.Notification, error)
}

// Handler обрабатывает GET /notifications.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Уведомления провайдера
// @Description Последние 20 уведомлений, новые первыми
// @Tags Notifications
// @Produce  json
// @Success 200 {object} response.Response{data=[]models.Notification} "Уведомления"
// @Failure 401 {object} response.ErrorResponse "Пользователь не провайдер"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /notifications [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notifications.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFrom(r.Context())
	if !ok {
		log.Error("user id missing in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("token not provided"))
		return
	}

	res, err := h.service.List(r.Context(), userID, models.NotificationsLimit)
	if err != nil {
		log.Error("failed to list notifications", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list notifications"))
		return
	}
	render.JSON(w, r, response.OKWithData(res))
}
