// Package queue ставит фоновые задачи в RabbitMQ, не дожидаясь их выполнения.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/appointment-scheduler/internal/metrics"
	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
)

// ErrEmptyKey у задачи не задан ключ.
var ErrEmptyKey = errors.New("empty job key")

// Dispatcher публикует задачи в exchange с routing key равным ключу задачи.
type Dispatcher struct {
	mu       sync.Mutex
	pub      rabbitmq.Publisher
	exchange string
	log      *slog.Logger
	now      func() time.Time
	newID    func() string
}

// New создает Dispatcher поверх канала RabbitMQ.
func New(pub rabbitmq.Publisher, exchange string, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		pub:      pub,
		exchange: exchange,
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Enqueue заворачивает payload в конверт Job и публикует его.
// Возвращает управление сразу после подтверждения публикации каналом.
func (d *Dispatcher) Enqueue(ctx context.Context, jobKey string, payload any) (models.JobHandle, error) {
	const op = "queue.Enqueue"
	if jobKey == "" {
		return models.JobHandle{}, fmt.Errorf("%s: %w", op, ErrEmptyKey)
	}
	if err := ctx.Err(); err != nil {
		return models.JobHandle{}, fmt.Errorf("%s: %w", op, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return models.JobHandle{}, fmt.Errorf("%s: %w", op, err)
	}
	job := models.Job{
		ID:         d.newID(),
		Key:        jobKey,
		Payload:    body,
		EnqueuedAt: d.now(),
	}

	d.mu.Lock()
	err = rabbitmq.PublishMessage(d.pub, d.exchange, rabbitmq.Message{
		ID:         job.ID,
		RoutingKey: jobKey,
		Body:       job,
		Timestamp:  job.EnqueuedAt,
	})
	d.mu.Unlock()
	if err != nil {
		metrics.JobsEnqueued.WithLabelValues(jobKey, metrics.StatusError).Inc()
		return models.JobHandle{}, fmt.Errorf("%s: %w", op, err)
	}
	metrics.JobsEnqueued.WithLabelValues(jobKey, metrics.StatusOK).Inc()

	d.log.Info("job enqueued", slog.String("op", op), slog.String("key", jobKey), slog.String("job_id", job.ID))
	return models.JobHandle{ID: job.ID, Key: jobKey}, nil
}
