package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "museumtix:chat:session:"

// RedisSessionStore keeps serialized conversation sessions with a TTL.
type RedisSessionStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisSessionStore(client redis.Cmdable, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, userID string) ([]byte, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return raw, err
}

func (s *RedisSessionStore) Put(ctx context.Context, userID string, raw []byte) error {
	return s.client.Set(ctx, sessionKeyPrefix+userID, raw, s.ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+userID).Err()
}

type memoryEntry struct {
	raw     []byte
	expires time.Time
}

// MemorySessionStore is the single-process fallback when no redis is configured.
type MemorySessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (s *MemorySessionStore) Get(_ context.Context, userID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if s.now().After(e.expires) {
		delete(s.entries, userID)
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.raw...), nil
}

func (s *MemorySessionStore) Put(_ context.Context, userID string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, k)
		}
	}
	s.entries[userID] = memoryEntry{raw: append([]byte(nil), raw...), expires: now.Add(s.ttl)}
	return nil
}

// size counts held sessions, expired ones included until the next Put.
func (s *MemorySessionStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemorySessionStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}
