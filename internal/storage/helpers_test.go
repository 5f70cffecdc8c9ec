package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/appointment-scheduler/internal/migrations"
	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
)

// setupTestStorage поднимает Postgres в контейнере и накатывает миграции проекта.
func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(connStr)
	require.NoError(t, err, "failed to create storage")
	t.Cleanup(func() { _ = storage.Close() })

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	return storage
}

// TestDataFactory создает тестовые данные напрямую в базе
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает пользователя и возвращает его ID
func (f *TestDataFactory) CreateUser(t *testing.T, name, email string, provider bool) int {
	t.Helper()
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO users (name, email, password_hash, provider)
		VALUES ($1, $2, 'hash', $3) RETURNING id`, name, email, provider).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateAppointment создает активную запись и возвращает ее ID
func (f *TestDataFactory) CreateAppointment(t *testing.T, userID, providerID int, date time.Time) int {
	t.Helper()
	a := &models.Appointment{
		UserID:     userID,
		ProviderID: providerID,
		Date:       date,
		Slot:       date.Truncate(time.Hour),
	}
	require.NoError(t, f.storage.CreateAppointment(context.Background(), a))
	return a.ID
}
