package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
	"github.com/KirkDiggler/dune-bot-discord/internal/repositories"
)

// DefaultTTL is how long an idle session survives
const DefaultTTL = 24 * time.Hour

const indexKey = "creation:sessions"

type redisRepo struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// RedisConfig holds configuration for the Redis repository
type RedisConfig struct {
	Client redis.UniversalClient
	TTL    time.Duration // Optional, defaults to DefaultTTL
}

// NewRedisRepository creates a Redis-backed session repository. Every save
// refreshes the key expiry so Redis drops idle sessions on its own.
func NewRedisRepository(cfg *RedisConfig) (Repository, error) {
	if cfg == nil {
		return nil, dnderr.InvalidArgument("redis config cannot be nil")
	}
	if cfg.Client == nil {
		return nil, dnderr.InvalidArgument("redis client cannot be nil")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &redisRepo{client: cfg.Client, ttl: ttl}, nil
}

func key(userID, guildID string) string {
	return fmt.Sprintf("creation:%s", entities.SessionKey(userID, guildID))
}

func (r *redisRepo) Save(ctx context.Context, session *entities.CreationSession) error {
	if session == nil {
		return repositories.NewNilRecordError("session")
	}
	if err := validateKey(session.UserID, session.GuildID); err != nil {
		return err
	}

	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	k := key(session.UserID, session.GuildID)

	pipe := r.client.Pipeline()
	pipe.Set(ctx, k, string(jsonData), r.ttl)
	pipe.SAdd(ctx, indexKey, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session in Redis: %w", err)
	}

	return nil
}

func (r *redisRepo) Get(ctx context.Context, userID, guildID string) (*entities.CreationSession, error) {
	if err := validateKey(userID, guildID); err != nil {
		return nil, err
	}

	return r.get(ctx, key(userID, guildID), userID, guildID)
}

func (r *redisRepo) get(ctx context.Context, k, userID, guildID string) (*entities.CreationSession, error) {
	jsonData, err := r.client.Get(ctx, k).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, NewSessionNotFoundError(userID, guildID)
		}
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var session entities.CreationSession
	if err := json.Unmarshal(jsonData, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	return &session, nil
}

func (r *redisRepo) Delete(ctx context.Context, userID, guildID string) error {
	if err := validateKey(userID, guildID); err != nil {
		return err
	}

	k := key(userID, guildID)

	pipe := r.client.Pipeline()
	pipe.Del(ctx, k)
	pipe.SRem(ctx, indexKey, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session from Redis: %w", err)
	}

	return nil
}

// List loads every indexed session concurrently. Index entries whose key
// has expired are pruned.
func (r *redisRepo) List(ctx context.Context) ([]*entities.CreationSession, error) {
	keys, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions from Redis: %w", err)
	}

	loaded := make([]*entities.CreationSession, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	for i, k := range keys {
		g.Go(func() error {
			session, err := r.get(gctx, k, "", "")
			if dnderr.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get session %s: %w", k, err)
			}
			loaded[i] = session
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var stale []any
	result := make([]*entities.CreationSession, 0, len(keys))
	for i, session := range loaded {
		if session == nil {
			stale = append(stale, keys[i])
			continue
		}
		result = append(result, session)
	}

	if len(stale) > 0 {
		if err := r.client.SRem(ctx, indexKey, stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune session index: %w", err)
		}
	}

	return result, nil
}
