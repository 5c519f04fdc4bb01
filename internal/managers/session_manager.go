package managers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const sessionKeyPrefix = "session:"

// SessionMgr maps opaque session ids to the logged in user. Sessions expire after their ttl.
type SessionMgr interface {
	Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error)
	// Get returns uuid.Nil without an error when the session is unknown or expired.
	Get(ctx context.Context, sessionID string) (uuid.UUID, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisSessionManager keeps sessions in Redis under session:<sid>.
type RedisSessionManager struct {
	rdb redis.UniversalClient
}

func NewRedisSessionManager(rdb redis.UniversalClient) SessionMgr {
	log.Info("Initializing redis session manager")
	return &RedisSessionManager{rdb: rdb}
}

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return rdb, nil
}

func (s *RedisSessionManager) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	sid := uuid.New().String()
	if err := s.rdb.Set(ctx, sessionKeyPrefix+sid, userID.String(), ttl).Err(); err != nil {
		return "", errors.Wrap(err, "store session")
	}
	return sid, nil
}

func (s *RedisSessionManager) Get(ctx context.Context, sessionID string) (uuid.UUID, error) {
	val, err := s.rdb.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "load session")
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		// A corrupt entry is treated like a missing one.
		return uuid.Nil, nil
	}
	return userID, nil
}

func (s *RedisSessionManager) Delete(ctx context.Context, sessionID string) error {
	return errors.Wrap(s.rdb.Del(ctx, sessionKeyPrefix+sessionID).Err(), "delete session")
}

type memorySession struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// MemorySessionManager keeps sessions in process memory. Expired entries are dropped when they are read.
type MemorySessionManager struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemorySessionManager() *MemorySessionManager {
	log.Info("Initializing in-memory session manager")
	return &MemorySessionManager{
		sessions: map[string]memorySession{},
		now:      time.Now,
	}
}

func (s *MemorySessionManager) Create(_ context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	sid := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = memorySession{userID: userID, expiresAt: s.now().Add(ttl)}
	return sid, nil
}

func (s *MemorySessionManager) Get(_ context.Context, sessionID string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return uuid.Nil, nil
	}
	if !s.now().Before(session.expiresAt) {
		delete(s.sessions, sessionID)
		return uuid.Nil, nil
	}
	return session.userID, nil
}

func (s *MemorySessionManager) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
