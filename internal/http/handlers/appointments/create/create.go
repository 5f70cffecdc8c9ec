// Package create реализует HTTP-обработчик записи клиента к провайдеру.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/appointment-scheduler/internal/http/middlewarectx"
	"github.com/magabrotheeeer/appointment-scheduler/internal/http/response"
	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
	"github.com/magabrotheeeer/appointment-scheduler/internal/services/appointment"
)

// Service описывает создание записи.
type Service interface {
	Create(ctx context.Context, requesterID int, req models.CreateAppointmentRequest) (*models.Appointment, error)
}

// Handler обрабатывает POST /appointments.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

var rejections = []struct {
	err    error
	status int
	msg    string
}{
	{appointment.ErrValidation, http.StatusBadRequest, "validation fails"},
	{appointment.ErrNotAProvider, http.StatusBadRequest, "you can only create appointments with providers"},
	{appointment.ErrSelfBooking, http.StatusBadRequest, "you can't create appointments with yourself"},
	{appointment.ErrPastDate, http.StatusBadRequest, "past dates are not permitted"},
	{appointment.ErrSlotUnavailable, http.StatusConflict, "appointment date is not available"},
}

// ServeHTTP godoc
// @Summary Создать запись
// @Description Записывает текущего пользователя к провайдеру на час, в который попадает date
// @Tags Appointments
// @Accept  json
// @Produce  json
// @Param request body models.CreateAppointmentRequest true "Провайдер и дата"
// @Success 200 {object} response.Response{data=models.Appointment} "Запись создана"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или нарушено правило записи"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Время занято"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /appointments [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.appointments.create"

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

	var req models.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("validation fails"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("validation fails"))
		return
	}

	a, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		for _, rej := range rejections {
			if errors.Is(err, rej.err) {
				log.Info("appointment rejected", slog.String("reason", rej.msg))
				render.Status(r, rej.status)
				render.JSON(w, r, response.Error(rej.msg))
				return
			}
		}
		log.Error("failed to create appointment", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create appointment"))
		return
	}

	log.Info("appointment created", slog.Int("id", a.ID))
	render.JSON(w, r, response.OKWithData(a))
}
