// Package appointment содержит жизненный цикл записи на прием: создание с проверкой
// правил времени и занятости слота, отмену в пределах окна и список записей клиента.
// Побочные эффекты (уведомление провайдера, письмо об отмене) идут через интерфейсы.
package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/timerules"
	"github.com/magabrotheeeer/appointment-scheduler/internal/metrics"
	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
	"github.com/magabrotheeeer/appointment-scheduler/internal/storage"
)

// Repository хранилище пользователей и записей.
type Repository interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	GetAppointment(ctx context.Context, id int) (*models.Appointment, error)
	CancelAppointment(ctx context.Context, id int, at time.Time) error
	ListActiveAppointments(ctx context.Context, userID, limit, offset int) ([]models.Appointment, error)
}

// AvailabilityChecker проверяет занятость часа у провайдера.
type AvailabilityChecker interface {
	IsSlotTaken(ctx context.Context, providerID int, slot time.Time) (bool, error)
}

// Notifier пишет уведомление в журнал получателя.
type Notifier interface {
	Notify(ctx context.Context, recipientID int, content string) (*models.Notification, error)
}

// Dispatcher ставит фоновую задачу в очередь.
type Dispatcher interface {
	Enqueue(ctx context.Context, jobKey string, payload any) (models.JobHandle, error)
}

// DateFormatter форматирует дату для текста уведомления.
type DateFormatter interface {
	Notification(t time.Time) string
}

// localLayouts форматы дат без смещения, трактуются во времени сервера.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Service реализует операции над записями.
type Service struct {
	repo         Repository
	availability AvailabilityChecker
	notifier     Notifier
	dispatcher   Dispatcher
	dates        DateFormatter
	publicURL    string
	log          *slog.Logger
	now          func() time.Time
	loc          *time.Location
}

// New создает Service. publicURL нужен для ссылок на аватары провайдеров в списке.
func New(
	repo Repository,
	availability AvailabilityChecker,
	notifier Notifier,
	dispatcher Dispatcher,
	dates DateFormatter,
	publicURL string,
	log *slog.Logger,
) *Service {
	return &Service{
		repo:         repo,
		availability: availability,
		notifier:     notifier,
		dispatcher:   dispatcher,
		dates:        dates,
		publicURL:    publicURL,
		log:          log,
		now:          time.Now,
		loc:          time.Local,
	}
}

// Create записывает клиента requesterID к провайдеру. Проверки идут по порядку,
// возвращается первая нарушенная. Уведомление провайдеру отправляется после
// сохранения, его ошибка только логируется.
func (s *Service) Create(ctx context.Context, requesterID int, req models.CreateAppointmentRequest) (*models.Appointment, error) {
	const op = "appointment.Create"
	log := s.log.With(slog.String("op", op), slog.Int("user_id", requesterID))

	date, err := s.parseDate(req.Date)
	if req.ProviderID <= 0 || err != nil {
		return nil, s.reject("create", "validation", ErrValidation)
	}

	provider, err := s.repo.GetUser(ctx, req.ProviderID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, s.reject("create", "not_a_provider", ErrNotAProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !provider.Provider {
		return nil, s.reject("create", "not_a_provider", ErrNotAProvider)
	}

	if requesterID == provider.ID {
		return nil, s.reject("create", "self_booking", ErrSelfBooking)
	}

	now := s.now()
	slot := timerules.StartOfHour(date)
	if timerules.IsBefore(slot, now) {
		return nil, s.reject("create", "past_date", ErrPastDate)
	}

	taken, err := s.availability.IsSlotTaken(ctx, provider.ID, slot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		return nil, s.reject("create", "slot_unavailable", ErrSlotUnavailable)
	}

	a := &models.Appointment{
		UserID:     requesterID,
		ProviderID: provider.ID,
		Date:       date,
		Slot:       slot,
	}
	if err := s.repo.CreateAppointment(ctx, a); err != nil {
		switch {
		case errors.Is(err, storage.ErrSlotTaken):
			// проиграли гонку за слот между проверкой и вставкой
			return nil, s.reject("create", "slot_unavailable", ErrSlotUnavailable)
		case errors.Is(err, storage.ErrConstraint):
			return nil, s.reject("create", "self_booking", ErrSelfBooking)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.AppointmentsCreated.Inc()
	log.Info("appointment created", slog.Int("id", a.ID), slog.Int("provider_id", a.ProviderID))

	s.notifyProvider(ctx, log, requesterID, a)

	return a.WithDerived(now), nil
}

func (s *Service) notifyProvider(ctx context.Context, log *slog.Logger, requesterID int, a *models.Appointment) {
	requester, err := s.repo.GetUser(ctx, requesterID)
	if err != nil {
		log.Warn("failed to load requester for notification", sl.Err(err))
		return
	}
	content := fmt.Sprintf("Novo agendamento de %s para %s", requester.Name, s.dates.Notification(a.Slot))
	if _, err := s.notifier.Notify(ctx, a.ProviderID, content); err != nil {
		log.Warn("failed to notify provider", slog.Int("provider_id", a.ProviderID), sl.Err(err))
	}
}

// Cancel отменяет запись requesterID. Возвращает запись с canceled_at.
// При ErrJobQueueUnavailable отмена уже сохранена, и запись возвращается вместе с ошибкой.
func (s *Service) Cancel(ctx context.Context, requesterID, appointmentID int) (*models.Appointment, error) {
	const op = "appointment.Cancel"
	log := s.log.With(slog.String("op", op), slog.Int("user_id", requesterID), slog.Int("appointment_id", appointmentID))

	a, err := s.repo.GetAppointment(ctx, appointmentID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, s.reject("cancel", "not_found", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if a.UserID != requesterID {
		return nil, s.reject("cancel", "not_owner", ErrNotOwner)
	}
	if a.CanceledAt != nil {
		return nil, s.reject("cancel", "already_canceled", ErrAlreadyCanceled)
	}

	now := s.now()
	deadline := timerules.SubHours(a.Date, models.CancellationWindowHours)
	if timerules.IsBefore(deadline, now) {
		return nil, s.reject("cancel", "window_expired", ErrCancellationWindowExpired)
	}

	if err := s.repo.CancelAppointment(ctx, a.ID, now); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// параллельная отмена успела раньше
			return nil, s.reject("cancel", "already_canceled", ErrAlreadyCanceled)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.CanceledAt = &now
	a.UpdatedAt = now
	a.WithDerived(now)
	metrics.AppointmentsCanceled.Inc()
	log.Info("appointment canceled")

	handle, err := s.dispatcher.Enqueue(ctx, models.CancellationMailKey, models.CancellationMail{Appointment: a})
	if err != nil {
		log.Error("failed to enqueue cancellation mail", sl.Err(err))
		return a, fmt.Errorf("%s: %w: %w", op, ErrJobQueueUnavailable, err)
	}
	log.Debug("cancellation mail enqueued", slog.String("job_id", handle.ID))

	return a, nil
}

// List активные записи клиента по возрастанию даты, страницами по AppointmentsPageSize.
// page меньше 1 считается первой страницей.
func (s *Service) List(ctx context.Context, requesterID, page int) ([]models.AppointmentSummary, error) {
	const op = "appointment.List"
	if page < 1 {
		page = 1
	}
	limit := models.AppointmentsPageSize
	// дальше этой страницы offset переполняет int, записей там заведомо нет
	if page > math.MaxInt/limit {
		return []models.AppointmentSummary{}, nil
	}
	offset := (page - 1) * limit

	rows, err := s.repo.ListActiveAppointments(ctx, requesterID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	res := make([]models.AppointmentSummary, 0, len(rows))
	for i := range rows {
		a := &rows[i]
		summary := models.AppointmentSummary{
			ID:         a.ID,
			Date:       a.Date,
			Past:       a.IsPast(now),
			Cancelable: a.IsCancelable(now),
			Provider:   models.ProviderSummary{ID: a.ProviderID},
		}
		if a.Provider != nil {
			summary.Provider.Name = a.Provider.Name
			summary.Provider.Avatar = a.Provider.Avatar.WithURL(s.publicURL)
		}
		res = append(res, summary)
	}
	return res, nil
}

// parseDate принимает RFC3339 или локальное время без смещения и
// приводит результат к часовому поясу сервера.
func (s *Service) parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.In(s.loc), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, s.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %q", raw)
}

func (s *Service) reject(operation, reason string, err error) error {
	metrics.AppointmentsRejected.WithLabelValues(operation, reason).Inc()
	return err
}
