// Package notification записывает уведомления в журнал получателя и читает его.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/appointment-scheduler/internal/metrics"
	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
)

// ErrInvalidNotification не задан получатель или пустой текст.
var ErrInvalidNotification = errors.New("invalid notification")

// Store журнал уведомлений.
type Store interface {
	Append(ctx context.Context, n *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID int, limit int) ([]models.Notification, error)
}

// Service создает уведомления.
type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

// New создает Service.
func New(store Store, log *slog.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Notify добавляет непрочитанное уведомление в журнал получателя.
func (s *Service) Notify(ctx context.Context, recipientID int, content string) (*models.Notification, error) {
	const op = "notification.Notify"
	if recipientID <= 0 || strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidNotification)
	}

	n := &models.Notification{
		ID:        s.newID(),
		Content:   content,
		User:      recipientID,
		Read:      false,
		CreatedAt: s.now(),
	}
	if err := s.store.Append(ctx, n); err != nil {
		metrics.NotificationsEmitted.WithLabelValues(metrics.StatusError).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.NotificationsEmitted.WithLabelValues(metrics.StatusOK).Inc()

	s.log.Debug("notification stored", slog.String("op", op), slog.String("id", n.ID), slog.Int("recipient", recipientID))
	return n, nil
}

// List последние limit уведомлений получателя, новые первыми.
func (s *Service) List(ctx context.Context, recipientID int, limit int) ([]models.Notification, error) {
	const op = "notification.List"
	if limit <= 0 || limit > models.NotificationsLimit {
		limit = models.NotificationsLimit
	}
	list, err := s.store.ListByRecipient(ctx, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}
