package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session errors.
var (
	// ErrSessionNotFound means no live refresh token is recorded for the subject.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionMismatch means the presented token is not the recorded one. The
	// store has already removed the session when this is returned from Rotate.
	ErrSessionMismatch = errors.New("session token mismatch")
)

// SessionRepository tracks the single live refresh token per subject.
// Operations on the same subject are linearizable; different subjects never
// contend.
type SessionRepository interface {
	// Put records token as the live refresh token for subject, overwriting
	// any previous entry.
	Put(ctx context.Context, subject, token string, ttl time.Duration) error
	// Get returns the live refresh token, or ErrSessionNotFound.
	Get(ctx context.Context, subject string) (string, error)
	// Remove deletes the session. Removing an absent session is a no-op.
	Remove(ctx context.Context, subject string) error
	// Rotate atomically replaces the stored token with next when it currently
	// equals presented. On mismatch or absence the session is removed and
	// ErrSessionMismatch is returned: exactly one concurrent caller can win a
	// rotation, every other one observes the reuse signal.
	Rotate(ctx context.Context, subject, presented, next string, ttl time.Duration) error
}

const sessionKeyPrefix = "session:"

// Compare-and-swap in a single round trip. A mismatch deletes the key so that
// a replayed token tears down the whole session.
var rotateScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current == ARGV[1] then
    redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
    return 1
end
redis.call('DEL', KEYS[1])
return 0
`)

type redisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository returns a Redis-backed implementation. Key TTLs
// mirror the refresh token expiry so stale sessions evict themselves.
func NewRedisSessionRepository(client *redis.Client) SessionRepository {
	return &redisSessionRepository{client: client}
}

func (r *redisSessionRepository) Put(ctx context.Context, subject, token string, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKeyPrefix+subject, token, ttl).Err()
}

func (r *redisSessionRepository) Get(ctx context.Context, subject string) (string, error) {
	token, err := r.client.Get(ctx, sessionKeyPrefix+subject).Result()
	if err == redis.Nil {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (r *redisSessionRepository) Remove(ctx context.Context, subject string) error {
	return r.client.Del(ctx, sessionKeyPrefix+subject).Err()
}

func (r *redisSessionRepository) Rotate(ctx context.Context, subject, presented, next string, ttl time.Duration) error {
	ok, err := rotateScript.Run(ctx, r.client, []string{sessionKeyPrefix + subject},
		presented, next, ttl.Milliseconds()).Int()
	if err != nil {
		return err
	}
	if ok != 1 {
		return ErrSessionMismatch
	}
	return nil
}
