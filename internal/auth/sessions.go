package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/team-calendar/backend/internal/storage"
	"github.com/team-calendar/backend/internal/storage/models"
)

// SessionStore records which issued tokens are still live.
type SessionStore interface {
	Save(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	// Lookup returns the owning user ID, or "" when the session is unknown
	// or expired.
	Lookup(ctx context.Context, tokenHash string) (string, error)
	Delete(ctx context.Context, tokenHash string) error
	// Prune removes expired sessions and reports how many were removed.
	Prune(ctx context.Context, now time.Time) (int64, error)
}

// SQLiteSessionStore keeps sessions in the application database.
type SQLiteSessionStore struct {
	repo *storage.SessionRepository
}

// NewSQLiteSessionStore creates a session store backed by the sessions table.
func NewSQLiteSessionStore(repo *storage.SessionRepository) *SQLiteSessionStore {
	return &SQLiteSessionStore{repo: repo}
}

func (s *SQLiteSessionStore) Save(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	return s.repo.Save(ctx, &models.Session{TokenHash: tokenHash, UserID: userID, ExpiresAt: expiresAt})
}

func (s *SQLiteSessionStore) Lookup(ctx context.Context, tokenHash string) (string, error) {
	session, err := s.repo.Lookup(ctx, tokenHash)
	if err != nil {
		return "", err
	}
	if session == nil || session.Expired(time.Now()) {
		return "", nil
	}
	return session.UserID, nil
}

func (s *SQLiteSessionStore) Delete(ctx context.Context, tokenHash string) error {
	return s.repo.Delete(ctx, tokenHash)
}

func (s *SQLiteSessionStore) Prune(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.DeleteExpired(ctx, now)
}

// RedisSessionStore keeps sessions as expiring Redis keys.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
}

// NewRedisSessionStore creates a session store on the given Redis client.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client, prefix: "session:"}
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return client, nil
}

func (s *RedisSessionStore) key(tokenHash string) string {
	return s.prefix + tokenHash
}

func (s *RedisSessionStore) Save(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.key(tokenHash), userID, ttl).Err(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Lookup(ctx context.Context, tokenHash string) (string, error) {
	userID, err := s.client.Get(ctx, s.key(tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("looking up session: %w", err)
	}
	return userID, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, tokenHash string) error {
	if err := s.client.Del(ctx, s.key(tokenHash)).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Prune is a no-op; Redis expires the keys itself.
func (s *RedisSessionStore) Prune(context.Context, time.Time) (int64, error) {
	return 0, nil
}
