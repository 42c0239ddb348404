package repository

import (
	"context"
	"errors"
	"time"

	"TrendBoard/internal/domain/models"
	domrepo "TrendBoard/internal/domain/repository"
	"TrendBoard/pkg/cache"
)

var latestKey = cache.GenerateKey("snapshots", "latest")

// CacheSink keeps the most recent run in a cache (Redis in production).
type CacheSink struct {
	cache cache.Service
	ttl   time.Duration
}

func NewCacheSink(c cache.Service, ttl time.Duration) *CacheSink {
	return &CacheSink{cache: c, ttl: ttl}
}

func (s *CacheSink) Name() string { return "cache" }

func (s *CacheSink) Save(ctx context.Context, res *models.AggregateResult) error {
	if err := s.cache.Set(ctx, latestKey, res, s.ttl); err != nil {
		return &models.PersistenceError{Sink: s.Name(), Err: err}
	}
	return nil
}

// Latest returns the last saved run, or nil when none is cached.
func (s *CacheSink) Latest(ctx context.Context) (*models.AggregateResult, error) {
	var res models.AggregateResult
	if err := s.cache.Get(ctx, latestKey, &res); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, &models.PersistenceError{Sink: s.Name(), Err: err}
	}
	return &res, nil
}

func (s *CacheSink) Close() error { return s.cache.Close() }

var (
	_ domrepo.Sink         = (*CacheSink)(nil)
	_ domrepo.LatestReader = (*CacheSink)(nil)
)
