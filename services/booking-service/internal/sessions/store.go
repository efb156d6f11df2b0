package sessions

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store tracks live session ids. An id is valid until its TTL lapses or it is removed.
type Store interface {
	Add(ctx context.Context, id string, ttl time.Duration) error
	Exists(ctx context.Context, id string) (bool, error)
	Remove(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process. Sessions are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{expires: map[string]time.Time{}, now: time.Now}
}

func (m *MemoryStore) Add(_ context.Context, id string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, exp := range m.expires {
		if !exp.After(now) {
			delete(m.expires, k)
		}
	}
	m.expires[id] = now.Add(ttl)
	return nil
}

func (m *MemoryStore) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.expires[id]
	if !ok {
		return false, nil
	}
	if !exp.After(m.now()) {
		delete(m.expires, id)
		return false, nil
	}
	return true, nil
}

func (m *MemoryStore) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.expires, id)
	return nil
}

// RedisStore shares sessions between instances. Keys expire with the session.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "admin-session"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":" + id
}

func (s *RedisStore) Add(ctx context.Context, id string, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.key(id), "1", ttl).Err()
}

func (s *RedisStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *RedisStore) Remove(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, s.key(id)).Err()
}

func RedisReadyCheck(rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
