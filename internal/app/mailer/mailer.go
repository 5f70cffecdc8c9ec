// Package mailer собирает процесс, который читает задачи из RabbitMQ и отправляет письма.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/appointment-scheduler/internal/config"
	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/datefmt"
	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/smtp"
	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
	mailerservice "github.com/magabrotheeeer/appointment-scheduler/internal/services/mailer"
)

// Handler обработчик тела задачи.
type Handler interface {
	Handle(body []byte) error
}

// Channel канал RabbitMQ, из которого читаются задачи.
type Channel interface {
	rabbitmq.Consumer
	io.Closer
}

// App consumer задач отправки писем.
type App struct {
	conn         io.Closer
	ch           Channel
	handler      Handler
	requeueDelay time.Duration
	logger       *slog.Logger
}

// New подключается к RabbitMQ и объявляет очереди задач.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "mailer.New"

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitMQ.Exchange, rabbitmq.JobQueues(cfg.RabbitMQ.DeliveryLimit, models.CancellationMailKey))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	service := mailerservice.New(transport, datefmt.New(cfg.Locale), logger)

	return &App{
		conn:         conn,
		ch:           ch,
		handler:      service,
		requeueDelay: cfg.RabbitMQ.RequeueDelay,
		logger:       logger,
	}, nil
}

// Run читает очередь до отмены ctx. Если брокер закрыл канал или соединение,
// возвращает ошибку, чтобы процесс завершился и был перезапущен.
func (a *App) Run(ctx context.Context) error {
	const op = "mailer.Run"
	queue := rabbitmq.QueueName(models.CancellationMailKey)
	a.logger.Info("mailer consuming", slog.String("queue", queue))

	err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, queue, a.requeueDelay, a.handle)
	if err != nil {
		a.logger.Error("consumer stopped", slog.String("queue", queue), sl.Err(err))
	} else {
		a.logger.Info("mailer shutting down gracefully")
	}

	if closeErr := a.ch.Close(); closeErr != nil {
		a.logger.Warn("failed to close channel", sl.Err(closeErr))
	}
	if closeErr := a.conn.Close(); closeErr != nil {
		a.logger.Warn("failed to close connection", sl.Err(closeErr))
	}

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// handle подтверждает битые задачи, чтобы они не возвращались в очередь бесконечно.
func (a *App) handle(body []byte) error {
	err := a.handler.Handle(body)
	if errors.Is(err, mailerservice.ErrMalformedJob) || errors.Is(err, mailerservice.ErrUnknownJob) {
		a.logger.Error("dropping job", sl.Err(err))
		return nil
	}
	return err
}
