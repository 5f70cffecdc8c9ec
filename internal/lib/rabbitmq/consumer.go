package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/sl"
)

// MaxConcurrentHandlers сколько сообщений обрабатывается одновременно.
const MaxConcurrentHandlers = 10

// ErrDeliveryClosed брокер закрыл канал доставки (обрыв соединения или канала).
var ErrDeliveryClosed = errors.New("delivery channel closed")

// Consumer часть *amqp.Channel, нужная для чтения очереди.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// ConsumerMessage читает очередь queueName и блокируется до отмены ctx (возвращает nil)
// или закрытия канала доставки (возвращает ErrDeliveryClosed).
// Успешно обработанные сообщения подтверждаются. При ошибке handler сообщение
// возвращается в очередь не раньше чем через requeueDelay, слот обработчика
// занят все это время. Перед возвратом дожидается запущенных обработчиков.
func ConsumerMessage(
	ctx context.Context,
	log *slog.Logger,
	ch Consumer,
	queueName string,
	requeueDelay time.Duration,
	handler func([]byte) error,
) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	sem := make(chan struct{}, MaxConcurrentHandlers)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case d, ok := <-delivery:
			if !ok {
				log.Error("delivery channel closed")
				return fmt.Errorf("%s: %w", op, ErrDeliveryClosed)
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				if err := d.Nack(false, true); err != nil {
					log.Error("failed to nack message", sl.Err(err))
				}
				return nil
			}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				process(ctx, log, d, requeueDelay, handler)
			}(d)
		case <-ctx.Done():
			return nil
		}
	}
}

func process(ctx context.Context, log *slog.Logger, d amqp.Delivery, requeueDelay time.Duration, handler func([]byte) error) {
	err := handler(d.Body)
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
		return
	}

	log.Warn("handler failed, requeue message",
		sl.Err(err),
		slog.Duration("delay", requeueDelay),
		slog.Any("delivery_count", d.Headers["x-delivery-count"]),
	)
	timer := time.NewTimer(requeueDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	if nackErr := d.Nack(false, true); nackErr != nil {
		log.Error("failed to nack message", sl.Err(nackErr))
	}
}
