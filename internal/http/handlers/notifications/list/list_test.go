package list

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/appointment-scheduler/internal/http/middlewarectx"
	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) List(ctx context.Context, recipientID, limit int) ([]models.Notification, error) {
	args := m.Called(ctx, recipientID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		withUser       bool
		setupMock      func(m *ServiceMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "лента провайдера",
			withUser: true,
			setupMock: func(m *ServiceMock) {
				m.On("List", mock.Anything, 2, models.NotificationsLimit).Return([]models.Notification{
					{ID: "n1", Content: "Novo agendamento de Ana", User: 2, CreatedAt: time.Now()},
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"content":"Novo agendamento de Ana"`,
		},
		{
			name:           "без пользователя",
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"token not provided"`,
		},
		{
			name:     "ошибка хранилища",
			withUser: true,
			setupMock: func(m *ServiceMock) {
				m.On("List", mock.Anything, 2, models.NotificationsLimit).Return(nil, errors.New("redis down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to list notifications"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
			if tt.withUser {
				req = req.WithContext(middlewarectx.WithUser(req.Context(), 2, true))
			}
			rec := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
