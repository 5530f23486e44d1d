package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gfe/pkg/platform/sentinel"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// InMemoryStore keeps values in process memory for tests and single-instance
// deployments. RunCleanup must be running to reclaim expired contexts.
type InMemoryStore struct {
	mu       sync.RWMutex
	contexts map[string]map[string]memoryEntry
	now      func() time.Time
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		contexts: make(map[string]map[string]memoryEntry),
		now:      time.Now,
	}
}

func (s *InMemoryStore) Get(_ context.Context, sessionID, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.contexts[sessionID][key]
	if !ok || s.expired(entry) {
		return "", fmt.Errorf("session key %q: %w", key, sentinel.ErrNotFound)
	}
	return entry.value, nil
}

func (s *InMemoryStore) Set(_ context.Context, sessionID, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.contexts[sessionID]
	if !ok {
		values = make(map[string]memoryEntry)
		s.contexts[sessionID] = values
	}
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	values[key] = entry
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.contexts[sessionID]
	if !ok {
		return nil
	}
	delete(values, key)
	if len(values) == 0 {
		delete(s.contexts, sessionID)
	}
	return nil
}

// DeleteExpired removes every entry expired as of now, and every browsing
// context left empty. It returns the number of contexts removed.
func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, values := range s.contexts {
		for key, entry := range values {
			if expiredAt(entry, now) {
				delete(values, key)
			}
		}
		if len(values) == 0 {
			delete(s.contexts, id)
			deleted++
		}
	}
	return deleted, nil
}

// RunCleanup sweeps expired entries every interval until ctx is done.
func (s *InMemoryStore) RunCleanup(ctx context.Context, interval time.Duration, logger *slog.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			deleted, err := s.DeleteExpired(ctx, s.now())
			if err != nil {
				logger.ErrorContext(ctx, "session cleanup failed", "error", err)
				continue
			}
			if deleted > 0 {
				logger.DebugContext(ctx, "session cleanup", "deleted_contexts", deleted)
			}
		}
	}
}

// Get hides expired entries until DeleteExpired reclaims them.
func (s *InMemoryStore) expired(e memoryEntry) bool {
	return expiredAt(e, s.now())
}

func expiredAt(e memoryEntry, now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
