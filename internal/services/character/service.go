package character

//go:generate mockgen -destination=mock/mock_service.go -package=mockcharacter -source=service.go

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
	"github.com/KirkDiggler/dune-bot-discord/internal/keylock"
	"github.com/KirkDiggler/dune-bot-discord/internal/repositories/characters"
)

// Repository is an alias for the character repository interface
type Repository = characters.Repository

// Service defines the character service interface
type Service interface {
	// Get retrieves a character by ID
	Get(ctx context.Context, characterID string) (*entities.Character, error)

	// ListByOwner lists the characters of a user, optionally within one realm
	ListByOwner(ctx context.Context, ownerID, realmID string) ([]*entities.Character, error)

	// Delete removes a character owned by ownerID
	Delete(ctx context.Context, ownerID, characterID string) error

	// UpdateDetermination applies delta clamped to [0, max]
	UpdateDetermination(ctx context.Context, characterID string, delta int) (*entities.Character, error)

	// SpendDetermination uses one point, failing when none is left
	SpendDetermination(ctx context.Context, characterID string) (*entities.Character, error)
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

// NewService creates a new character service
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

func (s *service) Get(ctx context.Context, characterID string) (*entities.Character, error) {
	if characterID == "" {
		return nil, dnderr.InvalidArgument("character ID is required")
	}

	char, err := s.repository.Get(ctx, characterID)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to get character '%s'", characterID)
	}
	return char, nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID, realmID string) ([]*entities.Character, error) {
	if ownerID == "" {
		return nil, dnderr.InvalidArgument("owner ID is required")
	}

	var (
		chars []*entities.Character
		err   error
	)
	if realmID == "" {
		chars, err = s.repository.GetByOwner(ctx, ownerID)
	} else {
		chars, err = s.repository.GetByOwnerAndRealm(ctx, ownerID, realmID)
	}
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to list characters")
	}
	return chars, nil
}

func (s *service) Delete(ctx context.Context, ownerID, characterID string) error {
	if ownerID == "" {
		return dnderr.InvalidArgument("owner ID is required")
	}

	unlock := s.locks.Lock(characterID)
	defer unlock()

	char, err := s.Get(ctx, characterID)
	if err != nil {
		return err
	}
	// Other users' characters are reported as missing
	if char.OwnerID != ownerID {
		return dnderr.NotFoundf("character '%s' not found", characterID).
			WithMeta("character_id", characterID)
	}

	if err := s.repository.Delete(ctx, characterID); err != nil {
		return dnderr.Wrapf(err, "failed to delete character '%s'", characterID)
	}

	s.logger.Info("character deleted",
		zap.String("owner_id", ownerID),
		zap.String("character_id", characterID))
	return nil
}

func (s *service) UpdateDetermination(ctx context.Context, characterID string, delta int) (*entities.Character, error) {
	return s.mutate(ctx, characterID, func(char *entities.Character) error {
		char.Resources.AdjustDetermination(delta)
		return nil
	})
}

func (s *service) SpendDetermination(ctx context.Context, characterID string) (*entities.Character, error) {
	return s.mutate(ctx, characterID, func(char *entities.Character) error {
		if !char.Resources.SpendDetermination() {
			return dnderr.Validationf("%s has no determination left", char.Name).
				WithField("determination", ">= 1", char.Resources.Determination)
		}
		return nil
	})
}

func (s *service) mutate(ctx context.Context, characterID string, apply func(*entities.Character) error) (*entities.Character, error) {
	unlock := s.locks.Lock(characterID)
	defer unlock()

	char, err := s.Get(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if !char.IsActive() {
		return nil, dnderr.Statef("character '%s' is archived", char.Name).
			WithMeta("character_id", characterID)
	}

	if err := apply(char); err != nil {
		return nil, err
	}
	char.UpdatedAt = s.now()

	if err := s.repository.Update(ctx, char); err != nil {
		return nil, dnderr.Wrapf(err, "failed to update character '%s'", characterID)
	}

	s.logger.Debug("character resources updated",
		zap.String("character_id", characterID),
		zap.Int("determination", char.Resources.Determination))

	return char, nil
}
