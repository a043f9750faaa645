package pools

//go:generate mockgen -destination=mock/mock_service.go -package=mockpools -source=service.go

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
	"github.com/KirkDiggler/dune-bot-discord/internal/keylock"
	poolRepo "github.com/KirkDiggler/dune-bot-discord/internal/repositories/pools"
)

// Repository is an alias for the pool repository interface
type Repository = poolRepo.Repository

// Service is the momentum and threat ledger of each channel
type Service interface {
	// Get returns the stored pool or an unsaved empty one
	Get(ctx context.Context, guildID, channelID string) (*entities.ResourcePool, error)

	// Update applies the deltas, never letting a counter drop below zero
	Update(ctx context.Context, guildID, channelID string, momentum, threat int) (*entities.ResourcePool, error)

	// Reset sets both counters to zero
	Reset(ctx context.Context, guildID, channelID string) (*entities.ResourcePool, error)

	// Spend removes momentum, failing when the pool holds less than amount
	Spend(ctx context.Context, guildID, channelID string, amount int) (*entities.ResourcePool, error)

	// List returns the stored pools of a guild
	List(ctx context.Context, guildID string) ([]*entities.ResourcePool, error)
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository Repository       // Required
	Now        func() time.Time // Optional
	Logger     *zap.Logger      // Optional
}

type service struct {
	repository Repository
	now        func() time.Time
	logger     *zap.Logger
	locks      *keylock.Locker
}

// NewService creates a new pool ledger
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("repository is required")
	}

	svc := &service{
		repository: cfg.Repository,
		now:        cfg.Now,
		logger:     cfg.Logger,
		locks:      keylock.New(),
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

func (s *service) Get(ctx context.Context, guildID, channelID string) (*entities.ResourcePool, error) {
	if err := validateKey(guildID, channelID); err != nil {
		return nil, err
	}
	return s.load(ctx, guildID, channelID)
}

func (s *service) Update(ctx context.Context, guildID, channelID string, momentum, threat int) (*entities.ResourcePool, error) {
	return s.mutate(ctx, guildID, channelID, func(pool *entities.ResourcePool, now time.Time) error {
		pool.Apply(momentum, threat, now)
		return nil
	})
}

func (s *service) Reset(ctx context.Context, guildID, channelID string) (*entities.ResourcePool, error) {
	return s.mutate(ctx, guildID, channelID, func(pool *entities.ResourcePool, now time.Time) error {
		pool.Reset(now)
		return nil
	})
}

func (s *service) Spend(ctx context.Context, guildID, channelID string, amount int) (*entities.ResourcePool, error) {
	if amount < 1 {
		return nil, dnderr.Validation("spend at least 1 momentum").
			WithField("amount", ">= 1", amount)
	}

	return s.mutate(ctx, guildID, channelID, func(pool *entities.ResourcePool, now time.Time) error {
		if amount > pool.Momentum {
			return dnderr.Validationf("only %d momentum available", pool.Momentum).
				WithField("amount", pool.Momentum, amount)
		}
		pool.Apply(-amount, 0, now)
		return nil
	})
}

func (s *service) List(ctx context.Context, guildID string) ([]*entities.ResourcePool, error) {
	if guildID == "" {
		return nil, dnderr.InvalidArgument("guild ID is required")
	}

	pools, err := s.repository.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to list pools")
	}
	return pools, nil
}

// mutate serializes read-modify-write on a channel and writes the result
// through to the repository.
func (s *service) mutate(ctx context.Context, guildID, channelID string, apply func(*entities.ResourcePool, time.Time) error) (*entities.ResourcePool, error) {
	if err := validateKey(guildID, channelID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(entities.PoolKey(guildID, channelID))
	defer unlock()

	pool, err := s.load(ctx, guildID, channelID)
	if err != nil {
		return nil, err
	}

	before := *pool
	if err := apply(pool, s.now()); err != nil {
		return nil, err
	}

	if err := s.repository.Save(ctx, pool); err != nil {
		s.logger.Error("failed to save pool",
			zap.String("guild_id", guildID),
			zap.String("channel_id", channelID),
			zap.Error(err))
		return nil, dnderr.Wrap(err, "failed to save pool")
	}

	s.logger.Debug("pool updated",
		zap.String("guild_id", guildID),
		zap.String("channel_id", channelID),
		zap.Int("momentum_before", before.Momentum),
		zap.Int("momentum", pool.Momentum),
		zap.Int("threat_before", before.Threat),
		zap.Int("threat", pool.Threat))

	return pool, nil
}

func (s *service) load(ctx context.Context, guildID, channelID string) (*entities.ResourcePool, error) {
	pool, err := s.repository.Get(ctx, guildID, channelID)
	if dnderr.IsNotFound(err) {
		return entities.NewResourcePool(guildID, channelID), nil
	}
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to load pool")
	}
	return pool, nil
}

func validateKey(guildID, channelID string) error {
	if guildID == "" {
		return dnderr.InvalidArgument("guild ID is required")
	}
	if channelID == "" {
		return dnderr.InvalidArgument("channel ID is required")
	}
	return nil
}
