package appointment

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetUser(ctx context.Context, id int) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	args := m.Called(ctx, a)
	if args.Error(0) == nil {
		a.ID = 101
	}
	return args.Error(0)
}

func (m *RepoMock) GetAppointment(ctx context.Context, id int) (*models.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *RepoMock) CancelAppointment(ctx context.Context, id int, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *RepoMock) ListActiveAppointments(ctx context.Context, userID, limit, offset int) ([]models.Appointment, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}

type AvailabilityMock struct{ mock.Mock }

func (m *AvailabilityMock) IsSlotTaken(ctx context.Context, providerID int, slot time.Time) (bool, error) {
	args := m.Called(ctx, providerID, slot)
	return args.Bool(0), args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Notify(ctx context.Context, recipientID int, content string) (*models.Notification, error) {
	args := m.Called(ctx, recipientID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

type DispatcherMock struct{ mock.Mock }

func (m *DispatcherMock) Enqueue(ctx context.Context, jobKey string, payload any) (models.JobHandle, error) {
	args := m.Called(ctx, jobKey, payload)
	return args.Get(0).(models.JobHandle), args.Error(1)
}

type fixedFormatter struct{}

func (fixedFormatter) Notification(t time.Time) string {
	return t.Format("02/01 15:04")
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

type fixture struct {
	repo       *RepoMock
	avail      *AvailabilityMock
	notifier   *NotifierMock
	dispatcher *DispatcherMock
	svc        *Service
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		repo:       new(RepoMock),
		avail:      new(AvailabilityMock),
		notifier:   new(NotifierMock),
		dispatcher: new(DispatcherMock),
	}
	f.svc = New(f.repo, f.avail, f.notifier, f.dispatcher, fixedFormatter{}, "http://localhost:8080", newNoopLogger())
	f.svc.now = func() time.Time { return now }
	f.svc.loc = time.UTC
	return f
}

func (f *fixture) assertExpectations(t mock.TestingT) {
	f.repo.AssertExpectations(t)
	f.avail.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	f.dispatcher.AssertExpectations(t)
}
