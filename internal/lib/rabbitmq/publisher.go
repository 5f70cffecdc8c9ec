package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Publisher часть *amqp.Channel, нужная для публикации.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Message исходящее сообщение. Body сериализуется в JSON, ID и RoutingKey
// попадают в свойства MessageId и Type, чтобы потребитель видел их без разбора тела.
type Message struct {
	ID         string
	RoutingKey string
	Body       any
	Timestamp  time.Time
}

// PublishMessage публикует msg в exchange как persistent JSON сообщение.
func PublishMessage(ch Publisher, exchange string, msg Message) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(msg.Body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Type:         msg.RoutingKey,
		Timestamp:    msg.Timestamp,
		Body:         body,
	}
	if err = ch.Publish(exchange, msg.RoutingKey, false, false, publishing); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
