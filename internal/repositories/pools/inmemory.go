package pools

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
	"github.com/KirkDiggler/dune-bot-discord/internal/repositories"
)

// InMemoryRepository is an in-memory implementation of the pool repository
type InMemoryRepository struct {
	mu    sync.RWMutex
	pools map[string]entities.ResourcePool
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() Repository {
	return &InMemoryRepository{
		pools: make(map[string]entities.ResourcePool),
	}
}

func (r *InMemoryRepository) Get(ctx context.Context, guildID, channelID string) (*entities.ResourcePool, error) {
	if err := validateKey(guildID, channelID); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	pool, exists := r.pools[entities.PoolKey(guildID, channelID)]
	if !exists {
		return nil, notFound(guildID, channelID)
	}
	return &pool, nil
}

func (r *InMemoryRepository) Save(ctx context.Context, pool *entities.ResourcePool) error {
	if pool == nil {
		return repositories.NewNilRecordError("pool")
	}
	if err := validateKey(pool.GuildID, pool.ChannelID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pools[pool.Key()] = *pool
	return nil
}

func (r *InMemoryRepository) ListByGuild(ctx context.Context, guildID string) ([]*entities.ResourcePool, error) {
	if guildID == "" {
		return nil, repositories.NewMissingKeyError("guild ID")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*entities.ResourcePool
	for _, pool := range r.pools {
		if pool.GuildID == guildID {
			p := pool
			result = append(result, &p)
		}
	}
	sortByChannel(result)
	return result, nil
}

func validateKey(guildID, channelID string) error {
	if guildID == "" {
		return repositories.NewMissingKeyError("guild ID")
	}
	if channelID == "" {
		return repositories.NewMissingKeyError("channel ID")
	}
	return nil
}

func notFound(guildID, channelID string) error {
	return repositories.NewRecordNotFoundError("pool", entities.PoolKey(guildID, channelID))
}

func sortByChannel(pools []*entities.ResourcePool) {
	sort.Slice(pools, func(i, j int) bool {
		return pools[i].ChannelID < pools[j].ChannelID
	})
}
