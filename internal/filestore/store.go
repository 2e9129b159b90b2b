// Package filestore archives raw source documents before any cleaning
// runs, so the exact ingested bytes can always be replayed. Objects are
// keyed by the document source hash.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/lexatlas/lexatlas/internal/config"
)

type Store interface {
	Save(ctx context.Context, key string, r io.Reader, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

type Factory func(args interface{}) (Store, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

func New(cfg config.ArchiveConfig) (Store, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Type))
	if key == "" {
		key = "none"
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported archive type: %s", cfg.Type)
	}
	return factory(cfg.Data)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("archive config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode archive config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode archive config: %w", err)
	}
	return nil
}

type noopStore struct{}

func (noopStore) Save(ctx context.Context, key string, r io.Reader, size int64) error {
	return nil
}

func (noopStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("archive disabled")
}

func init() {
	Register("none", func(args interface{}) (Store, error) {
		return noopStore{}, nil
	})
}
