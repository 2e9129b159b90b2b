package service

import (
	"context"
	"sync"
	"time"

	"github.com/lexatlas/lexatlas/internal/repo"
)

type cachedSetting struct {
	value     string
	found     bool
	fetchedAt time.Time
}

// SettingsService fronts the settings table with a short TTL cache so hot
// keys do not query on every request.
type SettingsService struct {
	repo *repo.SettingsRepo
	ttl  time.Duration

	mu    sync.Mutex
	cache map[string]cachedSetting
}

func NewSettingsService(settingsRepo *repo.SettingsRepo, ttl time.Duration) *SettingsService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SettingsService{
		repo:  settingsRepo,
		ttl:   ttl,
		cache: map[string]cachedSetting{},
	}
}

func (s *SettingsService) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	entry, ok := s.cache[key]
	s.mu.Unlock()
	if ok && time.Since(entry.fetchedAt) < s.ttl {
		return entry.value, entry.found, nil
	}
	value, found, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	s.mu.Lock()
	s.cache[key] = cachedSetting{value: value, found: found, fetchedAt: time.Now()}
	s.mu.Unlock()
	return value, found, nil
}

// Set writes through and drops the cached copy so the next Get refetches.
func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	if err := s.repo.Set(ctx, key, value); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()
	return nil
}
