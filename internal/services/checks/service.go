// Package checks runs skill tests for stored characters and feeds the
// outcome into the channel's momentum and threat pool.
package checks

import (
	"context"

	"go.uber.org/zap"

	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
	"github.com/KirkDiggler/dune-bot-discord/internal/resolution"
	"github.com/KirkDiggler/dune-bot-discord/internal/rules"
	"github.com/KirkDiggler/dune-bot-discord/internal/services/character"
	"github.com/KirkDiggler/dune-bot-discord/internal/services/pools"
)

// Service performs skill tests
type Service interface {
	Perform(ctx context.Context, input *PerformInput) (*PerformOutput, error)
}

// PerformInput describes a test taken by a user's character
type PerformInput struct {
	UserID    string
	GuildID   string
	ChannelID string

	// CharacterID is optional; the user's first character in the guild is
	// used when empty
	CharacterID string

	Skill      string
	Drive      string
	Difficulty int
	BonusDice  int
	AssistDice int

	UseDetermination      bool
	ComplicationThreshold int
}

// PerformOutput is the resolved test with the updated pool
type PerformOutput struct {
	Character *entities.Character
	Request   resolution.Request
	Result    *resolution.Result
	Pool      *entities.ResourcePool
}

// Narrative renders the outcome text of the test
func (o *PerformOutput) Narrative() string {
	return o.Result.Narrative(o.Request)
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Ruleset          *rules.Ruleset       // Required
	CharacterService character.Service    // Required
	PoolService      pools.Service        // Required
	Resolver         *resolution.Resolver // Optional
	Logger           *zap.Logger          // Optional
}

type service struct {
	ruleset    *rules.Ruleset
	characters character.Service
	pools      pools.Service
	resolver   *resolution.Resolver
	logger     *zap.Logger
}

// NewService creates a new checks service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Ruleset == nil {
		panic("ruleset is required")
	}
	if cfg.CharacterService == nil {
		panic("character service is required")
	}
	if cfg.PoolService == nil {
		panic("pool service is required")
	}

	svc := &service{
		ruleset:    cfg.Ruleset,
		characters: cfg.CharacterService,
		pools:      cfg.PoolService,
		resolver:   cfg.Resolver,
		logger:     cfg.Logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.resolver == nil {
		svc.resolver = resolution.NewResolver(&resolution.ResolverConfig{Logger: svc.logger})
	}
	return svc
}

func (s *service) Perform(ctx context.Context, input *PerformInput) (*PerformOutput, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input is required")
	}
	if input.UserID == "" || input.GuildID == "" || input.ChannelID == "" {
		return nil, dnderr.InvalidArgument("user, guild and channel IDs are required")
	}

	char, err := s.character(ctx, input)
	if err != nil {
		return nil, err
	}

	skill, ok := s.ruleset.SkillName(input.Skill)
	if !ok {
		return nil, dnderr.Validationf("unknown skill '%s'", input.Skill).
			WithField("skill", s.ruleset.Skills.Names, input.Skill)
	}
	drive, ok := s.ruleset.DriveName(input.Drive)
	if !ok {
		return nil, dnderr.Validationf("unknown drive '%s'", input.Drive).
			WithField("drive", s.ruleset.Drives.Names, input.Drive)
	}

	skillValue, _ := char.Skill(skill)
	driveValue, _ := char.Drive(drive)

	req := resolution.Request{
		Attribute:             driveValue,
		Skill:                 skillValue,
		Difficulty:            input.Difficulty,
		BonusDice:             input.BonusDice,
		AssistDice:            input.AssistDice,
		Determination:         input.UseDetermination,
		ComplicationThreshold: input.ComplicationThreshold,
		AttributeName:         drive,
		SkillName:             skill,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if input.UseDetermination {
		if char, err = s.characters.SpendDetermination(ctx, char.ID); err != nil {
			return nil, err
		}
	}

	result, err := s.resolver.Resolve(req)
	if err != nil {
		s.refundDetermination(ctx, char, input.UseDetermination)
		return nil, err
	}

	pool, err := s.pools.Update(ctx, input.GuildID, input.ChannelID, result.Momentum, result.Threat)
	if err != nil {
		s.refundDetermination(ctx, char, input.UseDetermination)
		return nil, err
	}

	s.logger.Info("skill test resolved",
		zap.String("character_id", char.ID),
		zap.String("skill", skill),
		zap.String("drive", drive),
		zap.Int("difficulty", req.Difficulty),
		zap.Int("successes", result.Successes),
		zap.Bool("success", result.Success),
		zap.Int("momentum", result.Momentum),
		zap.Int("threat", result.Threat))

	return &PerformOutput{
		Character: char,
		Request:   req,
		Result:    result,
		Pool:      pool,
	}, nil
}

// refundDetermination returns a point spent on a test that did not complete
func (s *service) refundDetermination(ctx context.Context, char *entities.Character, spent bool) {
	if !spent {
		return
	}
	if _, err := s.characters.UpdateDetermination(ctx, char.ID, 1); err != nil {
		s.logger.Error("failed to refund determination",
			zap.String("character_id", char.ID),
			zap.Error(err))
	}
}

func (s *service) character(ctx context.Context, input *PerformInput) (*entities.Character, error) {
	if input.CharacterID != "" {
		char, err := s.characters.Get(ctx, input.CharacterID)
		if err != nil {
			return nil, err
		}
		if char.OwnerID != input.UserID || char.RealmID != input.GuildID {
			return nil, dnderr.NotFoundf("character '%s' not found", input.CharacterID).
				WithMeta("character_id", input.CharacterID)
		}
		if !char.IsActive() {
			return nil, dnderr.Statef("%s is archived", char.Name).
				WithMeta("character_id", char.ID)
		}
		return char, nil
	}

	chars, err := s.characters.ListByOwner(ctx, input.UserID, input.GuildID)
	if err != nil {
		return nil, err
	}
	for _, char := range chars {
		if char.IsActive() {
			return char, nil
		}
	}
	return nil, dnderr.NotFound("you have no character in this server").
		WithMeta("user_id", input.UserID).
		WithMeta("guild_id", input.GuildID)
}
