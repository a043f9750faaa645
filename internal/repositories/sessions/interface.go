package sessions

//go:generate mockgen -destination=mock/mock.go -package=mocksessions -source=interface.go

import (
	"context"

	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
)

// Repository persists character creation sessions, one per user and guild
type Repository interface {
	// Save creates or replaces the session and refreshes its TTL
	Save(ctx context.Context, session *entities.CreationSession) error

	// Get returns a NotFound error when the session is absent or expired
	Get(ctx context.Context, userID, guildID string) (*entities.CreationSession, error)

	// Delete is idempotent
	Delete(ctx context.Context, userID, guildID string) error

	// List returns every stored, unexpired session
	List(ctx context.Context) ([]*entities.CreationSession, error)
}
