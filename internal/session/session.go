package session

import (
	"context"
	"errors"
	"time"

	"workspace-service/pkg/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned when the session does not exist, has expired or was revoked
var ErrNoSession = errors.New("session not found")

const keyPrefix = "session:"

// Store keeps sessions in Redis. The value under session:<id> is the user id.
type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

// Connect opens the Redis client and checks it is reachable
func Connect(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{redis: client, ttl: ttl}
}

// Create starts a session for the user and returns its id
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	id := uuid.NewString()
	if err := s.redis.Set(ctx, keyPrefix+id, userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

// Resolve returns the user id owning the session
func (s *Store) Resolve(ctx context.Context, id string) (string, error) {
	userID, err := s.redis.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// Revoke deletes the session. Revoking an unknown session returns ErrNoSession.
func (s *Store) Revoke(ctx context.Context, id string) error {
	n, err := s.redis.Del(ctx, keyPrefix+id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoSession
	}
	return nil
}

// Count returns the number of live sessions. Expired sessions are already gone from Redis.
func (s *Store) Count(ctx context.Context) (int, error) {
	n := 0
	iter := s.redis.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	return n, nil
}
