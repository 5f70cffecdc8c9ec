// Package provider отдает список провайдеров услуг с аватарами.
// Список кэшируется в Redis и сбрасывается при смене аватара.
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
)

const (
	// CacheKey ключ кэша списка провайдеров.
	CacheKey = "providers:all"
	// CacheTTL время жизни кэша.
	CacheTTL = 10 * time.Minute
)

// Repository источник провайдеров.
type Repository interface {
	ListProviders(ctx context.Context) ([]models.User, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service список провайдеров.
type Service struct {
	repo      Repository
	cache     Cache
	publicURL string
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, publicURL string, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		publicURL: publicURL,
		log:       log,
	}
}

// List возвращает провайдеров, сначала из кэша. Ошибки кэша не прерывают запрос.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	const op = "provider.List"

	var cached []models.User
	found, err := s.cache.Get(ctx, CacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read providers from cache", slog.String("key", CacheKey), sl.Err(err))
	}
	if found && err == nil {
		return cached, nil
	}

	providers, err := s.repo.ListProviders(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range providers {
		providers[i].Avatar = providers[i].Avatar.WithURL(s.publicURL)
	}

	if err := s.cache.Set(ctx, CacheKey, providers, CacheTTL); err != nil {
		s.log.Warn("failed to cache providers", slog.String("key", CacheKey), sl.Err(err))
	}
	return providers, nil
}

// Invalidate сбрасывает кэш списка.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, CacheKey); err != nil {
		s.log.Warn("failed to invalidate providers cache", slog.String("key", CacheKey), sl.Err(err))
	}
}
