package characters

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the character repository
// Useful for testing and development
type InMemoryRepository struct {
	mu         sync.RWMutex
	characters map[string]*entities.Character
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() Repository {
	return &InMemoryRepository{
		characters: make(map[string]*entities.Character),
	}
}

// Create stores a new character
func (r *InMemoryRepository) Create(ctx context.Context, character *entities.Character) error {
	if err := validateCharacter(character); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[character.ID]; exists {
		return dnderr.AlreadyExistsf("character with ID '%s' already exists", character.ID).
			WithMeta("character_id", character.ID)
	}

	r.characters[character.ID] = character.Clone()
	return nil
}

// Get retrieves a character by ID
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*entities.Character, error) {
	if id == "" {
		return nil, dnderr.InvalidArgument("character ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	character, exists := r.characters[id]
	if !exists {
		return nil, notFound(id)
	}

	return character.Clone(), nil
}

// GetByOwner retrieves all characters for a specific owner
func (r *InMemoryRepository) GetByOwner(ctx context.Context, ownerID string) ([]*entities.Character, error) {
	if ownerID == "" {
		return nil, dnderr.InvalidArgument("owner ID is required")
	}

	return r.filter(func(c *entities.Character) bool {
		return c.OwnerID == ownerID
	}), nil
}

// GetByOwnerAndRealm retrieves all characters for a specific owner in a realm
func (r *InMemoryRepository) GetByOwnerAndRealm(ctx context.Context, ownerID, realmID string) ([]*entities.Character, error) {
	if ownerID == "" {
		return nil, dnderr.InvalidArgument("owner ID is required")
	}
	if realmID == "" {
		return nil, dnderr.InvalidArgument("realm ID is required")
	}

	return r.filter(func(c *entities.Character) bool {
		return c.OwnerID == ownerID && c.RealmID == realmID
	}), nil
}

func (r *InMemoryRepository) filter(keep func(*entities.Character) bool) []*entities.Character {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*entities.Character
	for _, char := range r.characters {
		if keep(char) {
			result = append(result, char.Clone())
		}
	}
	sortByCreation(result)
	return result
}

// Update updates an existing character
func (r *InMemoryRepository) Update(ctx context.Context, character *entities.Character) error {
	if character == nil {
		return dnderr.InvalidArgument("character cannot be nil")
	}
	if character.ID == "" {
		return dnderr.InvalidArgument("character ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[character.ID]; !exists {
		return notFound(character.ID)
	}

	r.characters[character.ID] = character.Clone()
	return nil
}

// Delete removes a character
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dnderr.InvalidArgument("character ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[id]; !exists {
		return notFound(id)
	}

	delete(r.characters, id)
	return nil
}

func validateCharacter(char *entities.Character) error {
	if char == nil {
		return dnderr.InvalidArgument("character cannot be nil")
	}
	if char.ID == "" {
		return dnderr.InvalidArgument("character ID is required")
	}
	if char.OwnerID == "" {
		return dnderr.InvalidArgument("character owner ID is required")
	}
	if char.RealmID == "" {
		return dnderr.InvalidArgument("character realm ID is required")
	}
	return nil
}

func notFound(id string) error {
	return dnderr.NotFoundf("character with ID '%s' not found", id).
		WithMeta("character_id", id)
}

// Oldest first, ties broken by ID so listings are stable
func sortByCreation(chars []*entities.Character) {
	sort.Slice(chars, func(i, j int) bool {
		if !chars[i].CreatedAt.Equal(chars[j].CreatedAt) {
			return chars[i].CreatedAt.Before(chars[j].CreatedAt)
		}
		return chars[i].ID < chars[j].ID
	})
}
