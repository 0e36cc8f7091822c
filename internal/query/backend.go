package query

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

// Backend stores encoded query results.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryBackend keeps results in process memory.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	entry, ok := b.entries[key]
	b.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if !b.now().Before(entry.expiresAt) {
		b.mu.Lock()
		if cur, ok := b.entries[key]; ok && !b.now().Before(cur.expiresAt) {
			delete(b.entries, key)
		}
		b.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return entry.data, nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = memoryEntry{data: data, expiresAt: b.now().Add(ttl)}
	return nil
}

func (b *MemoryBackend) DeletePrefix(_ context.Context, prefix string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k := range b.entries {
		if strings.HasPrefix(k, prefix) {
			delete(b.entries, k)
		}
	}
	return nil
}

func (b *MemoryBackend) Close() error {
	return nil
}
