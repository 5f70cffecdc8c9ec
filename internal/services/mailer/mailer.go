// Package mailer обрабатывает фоновые задачи из очереди и отправляет письма по SMTP.
package mailer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"text/template"
	"time"

	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/smtp"
	"github.com/magabrotheeeer/appointment-scheduler/internal/metrics"
	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
)

// CancellationSubject тема письма об отмене.
const CancellationSubject = "Agendamento cancelado"

var (
	// ErrMalformedJob задача не разбирается, повторять ее бессмысленно.
	ErrMalformedJob = errors.New("malformed job")
	// ErrUnknownJob для ключа задачи нет обработчика.
	ErrUnknownJob = errors.New("unknown job key")
)

var cancellationTmpl = template.Must(template.New("cancellation").Parse(`Olá, {{.Provider}}

Houve um cancelamento de horário, confira os detalhes abaixo:

Cliente: {{.User}}
Data/hora: {{.Date}}

O horário agora está disponível para novos agendamentos.

Equipe GoBarber
`))

type cancellationData struct {
	Provider string
	User     string
	Date     string
}

// DateFormatter форматирует дату записи для письма.
type DateFormatter interface {
	Notification(t time.Time) string
}

// Service отправляет письма по задачам из очереди.
type Service struct {
	transport smtp.TransportInterface
	dates     DateFormatter
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport smtp.TransportInterface, dates DateFormatter, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		dates:     dates,
		log:       log,
	}
}

// Handle разбирает конверт задачи и вызывает обработчик по ключу.
func (s *Service) Handle(body []byte) error {
	const op = "mailer.Handle"

	var job models.Job
	if err := json.Unmarshal(body, &job); err != nil {
		metrics.JobsProcessed.WithLabelValues("unknown", metrics.StatusError).Inc()
		return fmt.Errorf("%s: %w: %w", op, ErrMalformedJob, err)
	}

	var err error
	switch job.Key {
	case models.CancellationMailKey:
		err = s.SendCancellationMail(job.Payload)
	default:
		err = fmt.Errorf("%s: %w: %q", op, ErrUnknownJob, job.Key)
	}

	status := metrics.StatusOK
	if err != nil {
		status = metrics.StatusError
	}
	metrics.JobsProcessed.WithLabelValues(job.Key, status).Inc()
	if err != nil {
		return err
	}
	s.log.Info("job processed", slog.String("job_id", job.ID), slog.String("key", job.Key))
	return nil
}

// SendCancellationMail отправляет провайдеру письмо об отмене записи.
func (s *Service) SendCancellationMail(payload []byte) error {
	const op = "mailer.SendCancellationMail"

	var data models.CancellationMail
	if err := json.Unmarshal(payload, &data); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrMalformedJob, err)
	}
	a := data.Appointment
	if a == nil || a.Provider == nil || a.Provider.Email == "" {
		return fmt.Errorf("%s: %w: appointment without provider email", op, ErrMalformedJob)
	}

	view := cancellationData{
		Provider: a.Provider.Name,
		Date:     s.dates.Notification(a.Date),
	}
	if a.User != nil {
		view.User = a.User.Name
	}

	var buf bytes.Buffer
	if err := cancellationTmpl.Execute(&buf, view); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rcpt, err := mail.ParseAddress(a.Provider.Email)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrMalformedJob, err)
	}
	// имя кодируется по RFC 2047, переводы строк не попадают в заголовки
	to := (&mail.Address{Name: a.Provider.Name, Address: rcpt.Address}).String()
	if err := s.sendEmail(rcpt.Address, to, CancellationSubject, buf.String()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) sendEmail(rcpt, toHeader, subject, bodyText string) error {
	from := s.transport.Sender()
	msg := strings.Join([]string{
		"From: " + s.transport.From(),
		"To: " + toHeader,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	if err := client.Rcpt(rcpt); err != nil {
		s.log.Error("failed to set RCPT TO", slog.String("recipient", rcpt), sl.Err(err))
		return err
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.String("to", rcpt), slog.String("subject", subject))
	return nil
}
