package list

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/appointment-scheduler/internal/http/middlewarectx"
	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) List(ctx context.Context, requesterID, page int) ([]models.AppointmentSummary, error) {
	args := m.Called(ctx, requesterID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AppointmentSummary), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestListHandler(t *testing.T) {
	items := []models.AppointmentSummary{
		{
			ID: 1, Date: time.Date(2030, 1, 10, 14, 0, 0, 0, time.UTC), Cancelable: true,
			Provider: models.ProviderSummary{ID: 2, Name: "Diego", Avatar: &models.File{ID: 3, URL: "http://localhost:8080/files/a.png"}},
		},
	}

	tests := []struct {
		name           string
		url            string
		setupMock      func(m *ServiceMock)
		expectedStatus int
		expectedError  string
		expectedLen    int
	}{
		{
			name: "первая страница по умолчанию",
			url:  "/appointments",
			setupMock: func(m *ServiceMock) {
				m.On("List", mock.Anything, 1, 1).Return(items, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedLen:    1,
		},
		{
			name: "вторая страница",
			url:  "/appointments?page=2",
			setupMock: func(m *ServiceMock) {
				m.On("List", mock.Anything, 1, 2).Return([]models.AppointmentSummary{}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedLen:    0,
		},
		{
			name:           "некорректная страница",
			url:            "/appointments?page=abc",
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid page",
		},
		{
			name: "ошибка сервиса",
			url:  "/appointments",
			setupMock: func(m *ServiceMock) {
				m.On("List", mock.Anything, 1, 1).Return(nil, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "failed to list appointments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			handler := New(newNoopLogger(), svc)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			req = req.WithContext(middlewarectx.WithUser(req.Context(), 1, false))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var got struct {
				Status string                      `json:"status"`
				Error  string                      `json:"error"`
				Data   []models.AppointmentSummary `json:"data"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, got.Error)
				return
			}
			assert.Equal(t, "OK", got.Status)
			assert.Len(t, got.Data, tt.expectedLen)
			if tt.expectedLen > 0 {
				assert.Equal(t, "Diego", got.Data[0].Provider.Name)
				assert.Equal(t, "http://localhost:8080/files/a.png", got.Data[0].Provider.Avatar.URL)
				assert.True(t, got.Data[0].Cancelable)
			}
			svc.AssertExpectations(t)
		})
	}
}
