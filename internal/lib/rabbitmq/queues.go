package rabbitmq

import "github.com/streadway/amqp"

// DeadLetterQueue очередь, куда брокер откладывает задачи, исчерпавшие попытки доставки.
const DeadLetterQueue = "jobs.dead"

// QueueConfig очередь и ключ маршрутизации, с которым она привязана к exchange.
// DeliveryLimit больше нуля делает очередь quorum: после стольких возвратов
// брокер отправляет сообщение в DeadLetterExchange.
type QueueConfig struct {
	QueueName     string
	RoutingKey    string
	DeliveryLimit int
}

// QueueName имя очереди для задач с ключом key.
func QueueName(key string) string {
	return "jobs." + key
}

// DeadLetterExchange exchange для сообщений, исчерпавших попытки.
func DeadLetterExchange(exchange string) string {
	return exchange + ".dead"
}

// JobQueues по одной очереди на каждый ключ задачи, ключ же служит routing key.
func JobQueues(deliveryLimit int, keys ...string) []QueueConfig {
	queues := make([]QueueConfig, 0, len(keys))
	for _, key := range keys {
		queues = append(queues, QueueConfig{
			QueueName:     QueueName(key),
			RoutingKey:    key,
			DeliveryLimit: deliveryLimit,
		})
	}
	return queues
}

// queueArgs аргументы объявления очереди. Все процессы объявляют очереди
// с одинаковыми аргументами, иначе брокер ответит PRECONDITION_FAILED.
func queueArgs(exchange string, q QueueConfig) amqp.Table {
	if q.DeliveryLimit <= 0 {
		return nil
	}
	return amqp.Table{
		"x-queue-type":           "quorum",
		"x-delivery-limit":       int32(q.DeliveryLimit),
		"x-dead-letter-exchange": DeadLetterExchange(exchange),
	}
}
