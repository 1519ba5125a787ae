package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/firmsite-api/internal/models"
)

// CooldownStore remembers when each source key last had a submission accepted.
type CooldownStore interface {
	LastAccepted(ctx context.Context, sourceKey string) (time.Time, bool, error)
	MarkAccepted(ctx context.Context, sourceKey string, at time.Time) error
}

// MemoryCooldownStore keeps records for the lifetime of the process.
// Records are overwritten on acceptance and never evicted.
type MemoryCooldownStore struct {
	mu      sync.RWMutex
	records map[string]models.SubmissionRecord
}

// NewMemoryCooldownStore constructs an empty in-process store.
func NewMemoryCooldownStore() *MemoryCooldownStore {
	return &MemoryCooldownStore{records: make(map[string]models.SubmissionRecord)}
}

func (s *MemoryCooldownStore) LastAccepted(_ context.Context, sourceKey string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[sourceKey]
	if !ok {
		return time.Time{}, false, nil
	}
	return record.LastAcceptedAt, true, nil
}

func (s *MemoryCooldownStore) MarkAccepted(_ context.Context, sourceKey string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[sourceKey] = models.SubmissionRecord{SourceKey: sourceKey, LastAcceptedAt: at}
	return nil
}

// Len returns the number of tracked source keys.
func (s *MemoryCooldownStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// RedisCooldownStore shares cooldown records between instances.
// Keys expire once the cooldown window has passed.
type RedisCooldownStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisCooldownStore constructs a Redis-backed store whose keys live for ttl.
func NewRedisCooldownStore(client redis.UniversalClient, ttl time.Duration) *RedisCooldownStore {
	if ttl <= 0 {
		ttl = 180 * time.Second
	}
	return &RedisCooldownStore{client: client, prefix: "contact:cooldown:", ttl: ttl}
}

func (s *RedisCooldownStore) LastAccepted(ctx context.Context, sourceKey string) (time.Time, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+sourceKey).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read cooldown for %s: %w", sourceKey, err)
	}

	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("decode cooldown for %s: %w", sourceKey, err)
	}
	return time.Unix(0, nanos).UTC(), true, nil
}

func (s *RedisCooldownStore) MarkAccepted(ctx context.Context, sourceKey string, at time.Time) error {
	value := strconv.FormatInt(at.UnixNano(), 10)
	if err := s.client.Set(ctx, s.prefix+sourceKey, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("write cooldown for %s: %w", sourceKey, err)
	}
	return nil
}
