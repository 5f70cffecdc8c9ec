// Package metrics объявляет счетчики Prometheus сервиса записи и mailer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AppointmentsCreated успешно созданные записи.
	AppointmentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "appointments_created_total",
			Help: "Total number of created appointments",
		},
	)

	// AppointmentsRejected отклоненные попытки создания или отмены по причине.
	AppointmentsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appointments_rejected_total",
			Help: "Total number of rejected appointment operations",
		},
		[]string{"operation", "reason"},
	)

	// AppointmentsCanceled успешно отмененные записи.
	AppointmentsCanceled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "appointments_canceled_total",
			Help: "Total number of canceled appointments",
		},
	)

	// NotificationsEmitted уведомления, записанные в журнал, по статусу.
	NotificationsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_emitted_total",
			Help: "Total number of notifications appended to recipient logs",
		},
		[]string{"status"},
	)

	// JobsEnqueued задачи, отправленные в очередь, по ключу и статусу.
	JobsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_enqueued_total",
			Help: "Total number of jobs published to the queue",
		},
		[]string{"key", "status"},
	)

	// JobsProcessed задачи, обработанные mailer, по ключу и статусу.
	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_processed_total",
			Help: "Total number of jobs processed by workers",
		},
		[]string{"key", "status"},
	)
)

// Статусы для меток status.
const (
	StatusOK    = "ok"
	StatusError = "error"
)
