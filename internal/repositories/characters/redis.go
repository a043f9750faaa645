package characters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
)

// redisRepo implements the Repository interface using Redis
type redisRepo struct {
	client redis.UniversalClient
	now    func() time.Time
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
	Now    func() time.Time // Optional, defaults to time.Now
}

// NewRedisRepository creates a new Redis-backed character repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("Redis client cannot be nil")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &redisRepo{
		client: cfg.Client,
		now:    now,
	}
}

// key generates the Redis key for a character
func (r *redisRepo) key(id string) string {
	return fmt.Sprintf("character:%s", id)
}

// ownerCharactersKey generates the Redis key for an owner's character list
func (r *redisRepo) ownerCharactersKey(ownerID string) string {
	return fmt.Sprintf("owner:%s:characters", ownerID)
}

// ownerRealmCharactersKey generates the Redis key for an owner's characters in a specific realm
func (r *redisRepo) ownerRealmCharactersKey(ownerID, realmID string) string {
	return fmt.Sprintf("owner:%s:realm:%s:characters", ownerID, realmID)
}

// Create stores a new character
func (r *redisRepo) Create(ctx context.Context, char *entities.Character) error {
	if err := validateCharacter(char); err != nil {
		return err
	}

	exists, err := r.client.Exists(ctx, r.key(char.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check character existence: %w", err)
	}
	if exists > 0 {
		return dnderr.AlreadyExistsf("character with ID '%s' already exists", char.ID).
			WithMeta("character_id", char.ID)
	}

	data := char.Clone()
	data.CreatedAt = r.now().UTC()
	data.UpdatedAt = data.CreatedAt

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal character: %w", err)
	}

	// Store in Redis using pipeline for atomicity
	pipe := r.client.Pipeline()

	// No expiration for finalized characters
	pipe.Set(ctx, r.key(char.ID), jsonData, 0)
	pipe.SAdd(ctx, r.ownerCharactersKey(char.OwnerID), char.ID)
	pipe.SAdd(ctx, r.ownerRealmCharactersKey(char.OwnerID, char.RealmID), char.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create character: %w", err)
	}

	char.CreatedAt = data.CreatedAt
	char.UpdatedAt = data.UpdatedAt
	return nil
}

// Get retrieves a character by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*entities.Character, error) {
	if id == "" {
		return nil, dnderr.InvalidArgument("character ID is required")
	}

	jsonData, err := r.client.Get(ctx, r.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get character: %w", err)
	}

	var char entities.Character
	if err := json.Unmarshal([]byte(jsonData), &char); err != nil {
		return nil, fmt.Errorf("failed to unmarshal character: %w", err)
	}

	return &char, nil
}

// GetByOwner retrieves all characters for a specific owner
func (r *redisRepo) GetByOwner(ctx context.Context, ownerID string) ([]*entities.Character, error) {
	if ownerID == "" {
		return nil, dnderr.InvalidArgument("owner ID is required")
	}

	return r.list(ctx, r.ownerCharactersKey(ownerID))
}

// GetByOwnerAndRealm retrieves all characters for a specific owner in a realm
func (r *redisRepo) GetByOwnerAndRealm(ctx context.Context, ownerID, realmID string) ([]*entities.Character, error) {
	if ownerID == "" {
		return nil, dnderr.InvalidArgument("owner ID is required")
	}
	if realmID == "" {
		return nil, dnderr.InvalidArgument("realm ID is required")
	}

	return r.list(ctx, r.ownerRealmCharactersKey(ownerID, realmID))
}

func (r *redisRepo) list(ctx context.Context, indexKey string) ([]*entities.Character, error) {
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list character IDs: %w", err)
	}

	characters := make([]*entities.Character, 0, len(ids))
	for _, id := range ids {
		char, err := r.Get(ctx, id)
		if err != nil {
			// Skip characters that can't be loaded
			continue
		}
		characters = append(characters, char)
	}

	sortByCreation(characters)
	return characters, nil
}

// Update updates an existing character
func (r *redisRepo) Update(ctx context.Context, char *entities.Character) error {
	if char == nil {
		return dnderr.InvalidArgument("character cannot be nil")
	}
	if char.ID == "" {
		return dnderr.InvalidArgument("character ID is required")
	}

	// Get existing character to verify it exists and preserve created timestamp
	existing, err := r.Get(ctx, char.ID)
	if err != nil {
		return err
	}

	data := char.Clone()
	data.CreatedAt = existing.CreatedAt
	data.UpdatedAt = r.now().UTC()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal character: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(char.ID), jsonData, 0)

	// If owner or realm changed, update indexes
	if existing.OwnerID != char.OwnerID || existing.RealmID != char.RealmID {
		pipe.SRem(ctx, r.ownerCharactersKey(existing.OwnerID), char.ID)
		pipe.SRem(ctx, r.ownerRealmCharactersKey(existing.OwnerID, existing.RealmID), char.ID)
		pipe.SAdd(ctx, r.ownerCharactersKey(char.OwnerID), char.ID)
		pipe.SAdd(ctx, r.ownerRealmCharactersKey(char.OwnerID, char.RealmID), char.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update character: %w", err)
	}

	char.CreatedAt = data.CreatedAt
	char.UpdatedAt = data.UpdatedAt
	return nil
}

// Delete removes a character
func (r *redisRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dnderr.InvalidArgument("character ID is required")
	}

	// Get character to find owner/realm for cleanup
	char, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.key(id))
	pipe.SRem(ctx, r.ownerCharactersKey(char.OwnerID), id)
	pipe.SRem(ctx, r.ownerRealmCharactersKey(char.OwnerID, char.RealmID), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete character: %w", err)
	}

	return nil
}
