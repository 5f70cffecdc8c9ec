// Package cancel реализует HTTP-обработчик отмены записи.
package cancel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/appointment-scheduler/internal/http/middlewarectx"
	"github.com/magabrotheeeer/appointment-scheduler/internal/http/response"
	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
	"github.com/magabrotheeeer/appointment-scheduler/internal/services/appointment"
)

// Service описывает отмену записи.
type Service interface {
	Cancel(ctx context.Context, requesterID, appointmentID int) (*models.Appointment, error)
}

// Handler обрабатывает DELETE /appointments/{id}.
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

// порядок важен: ErrAlreadyCanceled оборачивает ErrNotFound
var rejections = []struct {
	err    error
	status int
	msg    string
}{
	{appointment.ErrAlreadyCanceled, http.StatusNotFound, "appointment already canceled"},
	{appointment.ErrNotFound, http.StatusNotFound, "appointment not found"},
	{appointment.ErrNotOwner, http.StatusForbidden, "you don't have permission to cancel this appointment"},
	{appointment.ErrCancellationWindowExpired, http.StatusUnprocessableEntity, "you can only cancel appointments 2 hours in advance"},
}

// ServeHTTP godoc
// @Summary Отменить запись
// @Description Отменяет запись текущего пользователя не позднее чем за 2 часа до начала и ставит письмо провайдеру в очередь
// @Tags Appointments
// @Produce  json
// @Param id path int true "ID записи"
// @Success 200 {object} response.Response{data=models.Appointment} "Запись отменена"
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Чужая запись"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена или уже отменена"
// @Failure 422 {object} response.ErrorResponse "Окно отмены истекло"
// @Failure 503 {object} response.ErrorResponse "Запись отменена, письмо не поставлено в очередь"
// @Router /appointments/{id} [delete]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.appointments.cancel"

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

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		log.Info("invalid id format", slog.String("id", chi.URLParam(r, "id")))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	a, err := h.service.Cancel(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, appointment.ErrJobQueueUnavailable) {
			log.Error("cancellation mail not scheduled", slog.Int("id", id), sl.Err(err))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("appointment canceled, but the cancellation email could not be scheduled"))
			return
		}
		for _, rej := range rejections {
			if errors.Is(err, rej.err) {
				log.Info("cancellation rejected", slog.Int("id", id), slog.String("reason", rej.msg))
				render.Status(r, rej.status)
				render.JSON(w, r, response.Error(rej.msg))
				return
			}
		}
		log.Error("failed to cancel appointment", slog.Int("id", id), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to cancel appointment"))
		return
	}

	log.Info("appointment canceled", slog.Int("id", a.ID))
	render.JSON(w, r, response.OKWithData(a))
}
