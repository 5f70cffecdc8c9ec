package models

import (
	"encoding/json"
	"time"
)

// CancellationMailKey ключ задачи отправки письма об отмене записи.
const CancellationMailKey = "CancellationMail"

// Job конверт фоновой задачи, публикуемый в очередь.
type Job struct {
	ID         string          `json:"id"`
	Key        string          `json:"key"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// JobHandle идентификатор поставленной задачи.
type JobHandle struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// CancellationMail данные для письма об отмене: запись с провайдером и клиентом.
type CancellationMail struct {
	Appointment *Appointment `json:"appointment"`
}
