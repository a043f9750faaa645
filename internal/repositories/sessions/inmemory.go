package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
	"github.com/KirkDiggler/dune-bot-discord/internal/repositories"
)

// InMemoryRepository keeps sessions in a map, expiring them by LastUpdated
// the way the Redis TTL does.
type InMemoryRepository struct {
	mu           sync.RWMutex
	sessions     map[string]*entities.CreationSession
	timeProvider TimeProvider
	ttl          time.Duration
}

// InMemoryConfig holds configuration for the in-memory repository
type InMemoryConfig struct {
	TimeProvider TimeProvider  // Optional
	TTL          time.Duration // Optional, defaults to DefaultTTL
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository(cfg *InMemoryConfig) Repository {
	repo := &InMemoryRepository{
		sessions:     make(map[string]*entities.CreationSession),
		timeProvider: &RealTimeProvider{},
		ttl:          DefaultTTL,
	}
	if cfg != nil {
		if cfg.TimeProvider != nil {
			repo.timeProvider = cfg.TimeProvider
		}
		if cfg.TTL > 0 {
			repo.ttl = cfg.TTL
		}
	}
	return repo
}

func (r *InMemoryRepository) Save(ctx context.Context, session *entities.CreationSession) error {
	if session == nil {
		return repositories.NewNilRecordError("session")
	}
	if err := validateKey(session.UserID, session.GuildID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.Key()] = session.Clone()
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, userID, guildID string) (*entities.CreationSession, error) {
	if err := validateKey(userID, guildID); err != nil {
		return nil, err
	}

	key := entities.SessionKey(userID, guildID)

	r.mu.RLock()
	session, exists := r.sessions[key]
	r.mu.RUnlock()

	if !exists {
		return nil, NewSessionNotFoundError(userID, guildID)
	}
	if session.IsExpired(r.timeProvider.Now(), r.ttl) {
		r.mu.Lock()
		delete(r.sessions, key)
		r.mu.Unlock()
		return nil, NewSessionNotFoundError(userID, guildID)
	}

	return session.Clone(), nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, userID, guildID string) error {
	if err := validateKey(userID, guildID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, entities.SessionKey(userID, guildID))
	return nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*entities.CreationSession, error) {
	now := r.timeProvider.Now()

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entities.CreationSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		if session.IsExpired(now, r.ttl) {
			continue
		}
		result = append(result, session.Clone())
	}
	return result, nil
}
