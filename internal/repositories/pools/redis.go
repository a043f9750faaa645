package pools

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
	"github.com/KirkDiggler/dune-bot-discord/internal/repositories"
)

const (
	fieldMomentum    = "momentum"
	fieldThreat      = "threat"
	fieldLastUpdated = "last_updated"
)

// redisRepo stores each pool as a hash and indexes channels per guild
type redisRepo struct {
	client redis.UniversalClient
}

// NewRedis creates a new Redis-backed pool repository
func NewRedis(client redis.UniversalClient) Repository {
	if client == nil {
		panic("Redis client cannot be nil")
	}
	return &redisRepo{client: client}
}

func (r *redisRepo) key(guildID, channelID string) string {
	return fmt.Sprintf("pool:%s", entities.PoolKey(guildID, channelID))
}

func (r *redisRepo) guildPoolsKey(guildID string) string {
	return fmt.Sprintf("guild:%s:pools", guildID)
}

func (r *redisRepo) Get(ctx context.Context, guildID, channelID string) (*entities.ResourcePool, error) {
	if err := validateKey(guildID, channelID); err != nil {
		return nil, err
	}

	fields, err := r.client.HGetAll(ctx, r.key(guildID, channelID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get pool from Redis: %w", err)
	}
	if len(fields) == 0 {
		return nil, notFound(guildID, channelID)
	}

	return fromFields(guildID, channelID, fields)
}

func (r *redisRepo) Save(ctx context.Context, pool *entities.ResourcePool) error {
	if pool == nil {
		return repositories.NewNilRecordError("pool")
	}
	if err := validateKey(pool.GuildID, pool.ChannelID); err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, r.key(pool.GuildID, pool.ChannelID),
		fieldMomentum, pool.Momentum,
		fieldThreat, pool.Threat,
		fieldLastUpdated, pool.LastUpdated.UTC().Format(time.RFC3339Nano))
	pipe.SAdd(ctx, r.guildPoolsKey(pool.GuildID), pool.ChannelID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save pool in Redis: %w", err)
	}

	return nil
}

func (r *redisRepo) ListByGuild(ctx context.Context, guildID string) ([]*entities.ResourcePool, error) {
	if guildID == "" {
		return nil, repositories.NewMissingKeyError("guild ID")
	}

	channelIDs, err := r.client.SMembers(ctx, r.guildPoolsKey(guildID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list guild pools from Redis: %w", err)
	}

	loaded := make([]*entities.ResourcePool, len(channelIDs))

	g, gctx := errgroup.WithContext(ctx)
	for i, channelID := range channelIDs {
		g.Go(func() error {
			pool, err := r.Get(gctx, guildID, channelID)
			if dnderr.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get pool %s: %w", channelID, err)
			}
			loaded[i] = pool
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]*entities.ResourcePool, 0, len(loaded))
	for _, pool := range loaded {
		if pool != nil {
			result = append(result, pool)
		}
	}
	sortByChannel(result)
	return result, nil
}

func fromFields(guildID, channelID string, fields map[string]string) (*entities.ResourcePool, error) {
	pool := entities.NewResourcePool(guildID, channelID)

	var err error
	if pool.Momentum, err = strconv.Atoi(fields[fieldMomentum]); err != nil {
		return nil, fmt.Errorf("invalid momentum for pool %s: %w", pool.Key(), err)
	}
	if pool.Threat, err = strconv.Atoi(fields[fieldThreat]); err != nil {
		return nil, fmt.Errorf("invalid threat for pool %s: %w", pool.Key(), err)
	}
	if ts := fields[fieldLastUpdated]; ts != "" {
		if pool.LastUpdated, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("invalid timestamp for pool %s: %w", pool.Key(), err)
		}
	}
	return pool, nil
}
