package mailer

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/smtp"
	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) Sender() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTransport) From() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	return m.Called(from).Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	return m.Called(to).Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	return m.Called().Error(0)
}

func (m *MockSMTPClient) Quit() error {
	return m.Called().Error(0)
}

// bufferWriter собирает тело письма
type bufferWriter struct {
	bytes.Buffer
	closed bool
}

func (w *bufferWriter) Close() error {
	w.closed = true
	return nil
}

type fixedFormatter struct{}

func (fixedFormatter) Notification(t time.Time) string {
	return t.Format("02/01 15:04")
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func cancellationJob(t *testing.T, a *models.Appointment) []byte {
	t.Helper()
	payload, err := json.Marshal(models.CancellationMail{Appointment: a})
	require.NoError(t, err)
	body, err := json.Marshal(models.Job{ID: "job-1", Key: models.CancellationMailKey, Payload: payload})
	require.NoError(t, err)
	return body
}

func canceledAppointment() *models.Appointment {
	canceled := time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC)
	return &models.Appointment{
		ID:         7,
		Date:       time.Date(2030, 1, 10, 14, 0, 0, 0, time.UTC),
		CanceledAt: &canceled,
		Provider:   &models.User{ID: 2, Name: "Diego", Email: "diego@example.com"},
		User:       &models.User{ID: 1, Name: "Ana", Email: "ana@example.com"},
	}
}

func TestService_HandleCancellationMail(t *testing.T) {
	transport := new(MockTransport)
	client := new(MockSMTPClient)
	writer := &bufferWriter{}

	transport.On("Sender").Return("noreply@gobarber.com")
	transport.On("From").Return("Equipe GoBarber <noreply@gobarber.com>")
	transport.On("Connect").Return(client, nil).Once()
	client.On("Mail", "noreply@gobarber.com").Return(nil).Once()
	client.On("Rcpt", "diego@example.com").Return(nil).Once()
	client.On("Data").Return(writer, nil).Once()
	client.On("Quit").Return(nil).Once()
	client.On("Close").Return(nil).Once()

	svc := New(transport, fixedFormatter{}, newNoopLogger())
	err := svc.Handle(cancellationJob(t, canceledAppointment()))
	require.NoError(t, err)

	msg := writer.String()
	assert.True(t, writer.closed)
	assert.Contains(t, msg, "From: Equipe GoBarber <noreply@gobarber.com>")
	assert.Contains(t, msg, "To: \"Diego\" <diego@example.com>")
	assert.Contains(t, msg, "Subject: Agendamento cancelado")
	assert.Contains(t, msg, "Olá, Diego")
	assert.Contains(t, msg, "Cliente: Ana")
	assert.Contains(t, msg, "Data/hora: 10/01 14:00")

	transport.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestService_HandleCancellationMailEncodesProviderName(t *testing.T) {
	transport := new(MockTransport)
	client := new(MockSMTPClient)
	writer := &bufferWriter{}

	transport.On("Sender").Return("noreply@gobarber.com")
	transport.On("From").Return("Equipe GoBarber <noreply@gobarber.com>")
	transport.On("Connect").Return(client, nil).Once()
	client.On("Mail", "noreply@gobarber.com").Return(nil).Once()
	client.On("Rcpt", "p@example.com").Return(nil).Once()
	client.On("Data").Return(writer, nil).Once()
	client.On("Quit").Return(nil).Once()
	client.On("Close").Return(nil).Once()

	a := canceledAppointment()
	a.Provider = &models.User{ID: 2, Name: "Evil\r\nBcc: victim@example.com", Email: "p@example.com"}

	svc := New(transport, fixedFormatter{}, newNoopLogger())
	require.NoError(t, svc.Handle(cancellationJob(t, a)))

	header, _, found := strings.Cut(writer.String(), "\r\n\r\n")
	require.True(t, found)
	for _, line := range strings.Split(header, "\r\n") {
		assert.False(t, strings.HasPrefix(line, "Bcc:"), "header line %q", line)
	}
	assert.Contains(t, header, "To: =?utf-8?q?")
	assert.Contains(t, header, "<p@example.com>")
	client.AssertExpectations(t)
}

func TestService_HandleErrors(t *testing.T) {
	noProvider := canceledAppointment()
	noProvider.Provider = nil

	tests := []struct {
		name       string
		body       func(t *testing.T) []byte
		setupMocks func(tr *MockTransport)
		wantErr    error
		errMsg     string
	}{
		{
			name:       "invalid JSON",
			body:       func(_ *testing.T) []byte { return []byte(`invalid json`) },
			setupMocks: func(_ *MockTransport) {},
			wantErr:    ErrMalformedJob,
		},
		{
			name: "unknown key",
			body: func(t *testing.T) []byte {
				b, err := json.Marshal(models.Job{ID: "x", Key: "Unknown", Payload: json.RawMessage(`{}`)})
				require.NoError(t, err)
				return b
			},
			setupMocks: func(_ *MockTransport) {},
			wantErr:    ErrUnknownJob,
		},
		{
			name:       "payload without provider",
			body:       func(t *testing.T) []byte { return cancellationJob(t, noProvider) },
			setupMocks: func(_ *MockTransport) {},
			wantErr:    ErrMalformedJob,
		},
		{
			name: "provider email with header",
			body: func(t *testing.T) []byte {
				a := canceledAppointment()
				a.Provider.Email = "p@example.com\r\nBcc: victim@example.com"
				return cancellationJob(t, a)
			},
			setupMocks: func(_ *MockTransport) {},
			wantErr:    ErrMalformedJob,
		},
		{
			name: "SMTP connection error",
			body: func(t *testing.T) []byte { return cancellationJob(t, canceledAppointment()) },
			setupMocks: func(tr *MockTransport) {
				tr.On("Sender").Return("noreply@gobarber.com")
				tr.On("From").Return("Equipe GoBarber <noreply@gobarber.com>")
				tr.On("Connect").Return(nil, errors.New("connection error")).Once()
			},
			errMsg: "connection error",
		},
		{
			name: "recipient rejected",
			body: func(t *testing.T) []byte { return cancellationJob(t, canceledAppointment()) },
			setupMocks: func(tr *MockTransport) {
				client := new(MockSMTPClient)
				tr.On("Sender").Return("noreply@gobarber.com")
				tr.On("From").Return("Equipe GoBarber <noreply@gobarber.com>")
				tr.On("Connect").Return(client, nil).Once()
				client.On("Mail", "noreply@gobarber.com").Return(nil).Once()
				client.On("Rcpt", "diego@example.com").Return(errors.New("550 no such user")).Once()
				client.On("Close").Return(nil).Once()
			},
			errMsg: "550 no such user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			tt.setupMocks(transport)
			svc := New(transport, fixedFormatter{}, newNoopLogger())

			err := svc.Handle(tt.body(t))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.NotErrorIs(t, err, ErrMalformedJob)
			}
			transport.AssertExpectations(t)
		})
	}
}
