package pools

//go:generate mockgen -destination=mock/mock.go -package=mockpools -source=interface.go

import (
	"context"

	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
)

// Repository persists momentum and threat pools keyed by guild and channel
type Repository interface {
	// Get returns a NotFound error when the channel has no stored pool
	Get(ctx context.Context, guildID, channelID string) (*entities.ResourcePool, error)

	// Save creates or replaces the pool
	Save(ctx context.Context, pool *entities.ResourcePool) error

	// ListByGuild returns every stored pool of a guild
	ListByGuild(ctx context.Context, guildID string) ([]*entities.ResourcePool, error)
}
