// Package list реализует HTTP-обработчик списка активных записей клиента.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/appointment-scheduler/internal/http/middlewarectx"
	"github.com/magabrotheeeer/appointment-scheduler/internal/http/response"
	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
)

// Service описывает список записей.
type Service interface {
	List(ctx context.Context, requesterID, page int) ([]models.AppointmentSummary, error)
}

// Handler обрабатывает GET /appointments.
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
// @Summary Список записей
// @Description Активные записи текущего пользователя по возрастанию даты, по 20 на страницу
// @Tags Appointments
// @Produce  json
// @Param page query int false "Номер страницы, с 1"
// @Success 200 {object} response.Response{data=[]models.AppointmentSummary} "Список записей"
// @Failure 400 {object} response.ErrorResponse "Некорректный номер страницы"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /appointments [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.appointments.list"

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

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			log.Info("invalid page", slog.String("page", raw))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid page"))
			return
		}
		page = p
	}

	res, err := h.service.List(r.Context(), userID, page)
	if err != nil {
		log.Error("failed to list appointments", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list appointments"))
		return
	}

	log.Info("appointments listed", slog.Int("count", len(res)), slog.Int("page", page))
	render.JSON(w, r, response.OKWithData(res))
}
