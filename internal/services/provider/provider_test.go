package provider_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/appointment-scheduler/internal/cache"
	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
	"github.com/magabrotheeeer/appointment-scheduler/internal/services/provider"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) ListProviders(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := &cache.Cache{Db: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func providers() []models.User {
	return []models.User{
		{ID: 2, Name: "Diego", Email: "diego@example.com", Provider: true, Avatar: &models.File{ID: 1, Name: "me.png", Path: "abc.png"}},
		{ID: 3, Name: "Carla", Email: "carla@example.com", Provider: true},
	}
}

func TestService_ListCachesResult(t *testing.T) {
	c, mr := newTestCache(t)
	repo := new(RepoMock)
	repo.On("ListProviders", mock.Anything).Return(providers(), nil).Once()

	svc := provider.New(repo, c, "http://localhost:8080", newNoopLogger())

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "http://localhost:8080/files/abc.png", first[0].Avatar.URL)
	assert.Nil(t, first[1].Avatar)
	assert.True(t, mr.Exists(provider.CacheKey))
	assert.Equal(t, provider.CacheTTL, mr.TTL(provider.CacheKey))

	second, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first[0].Avatar.URL, second[0].Avatar.URL)
	assert.Equal(t, "Carla", second[1].Name)

	repo.AssertNumberOfCalls(t, "ListProviders", 1)
}

func TestService_ListAfterExpiryAndInvalidate(t *testing.T) {
	c, mr := newTestCache(t)
	repo := new(RepoMock)
	repo.On("ListProviders", mock.Anything).Return(providers(), nil)

	svc := provider.New(repo, c, "http://localhost:8080", newNoopLogger())
	ctx := context.Background()

	_, err := svc.List(ctx)
	require.NoError(t, err)

	mr.FastForward(provider.CacheTTL + 1)
	_, err = svc.List(ctx)
	require.NoError(t, err)

	svc.Invalidate(ctx)
	assert.False(t, mr.Exists(provider.CacheKey))
	_, err = svc.List(ctx)
	require.NoError(t, err)

	repo.AssertNumberOfCalls(t, "ListProviders", 3)
}

func TestService_ListCacheDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	repo := new(RepoMock)
	repo.On("ListProviders", mock.Anything).Return(providers(), nil).Once()

	svc := provider.New(repo, c, "", newNoopLogger())
	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
	repo.AssertExpectations(t)
}

func TestService_ListRepoError(t *testing.T) {
	c, _ := newTestCache(t)
	repo := new(RepoMock)
	repo.On("ListProviders", mock.Anything).Return(nil, errors.New("db down")).Once()

	svc := provider.New(repo, c, "", newNoopLogger())
	_, err := svc.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
