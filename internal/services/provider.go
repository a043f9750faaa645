package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/KirkDiggler/dune-bot-discord/internal/dice"
	"github.com/KirkDiggler/dune-bot-discord/internal/repositories/characters"
	"github.com/KirkDiggler/dune-bot-discord/internal/repositories/pools"
	"github.com/KirkDiggler/dune-bot-discord/internal/repositories/sessions"
	"github.com/KirkDiggler/dune-bot-discord/internal/resolution"
	"github.com/KirkDiggler/dune-bot-discord/internal/rules"
	characterService "github.com/KirkDiggler/dune-bot-discord/internal/services/character"
	checksService "github.com/KirkDiggler/dune-bot-discord/internal/services/checks"
	creationService "github.com/KirkDiggler/dune-bot-discord/internal/services/creation"
	poolService "github.com/KirkDiggler/dune-bot-discord/internal/services/pools"
	"github.com/KirkDiggler/dune-bot-discord/internal/uuid"
)

// Provider holds all service instances
type Provider struct {
	Ruleset          *rules.Ruleset
	Dice             *dice.Engine
	Resolver         *resolution.Resolver
	CharacterService characterService.Service
	CreationService  creationService.Service
	PoolService      poolService.Service
	ChecksService    checksService.Service
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	Ruleset             *rules.Ruleset
	CharacterRepository characters.Repository
	SessionRepository   sessions.Repository
	PoolRepository      pools.Repository
	DiceRoller          dice.Roller
	UUIDGenerator       uuid.Generator
	SessionTTL          time.Duration
	Logger              *zap.Logger
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ruleset := cfg.Ruleset
	if ruleset == nil {
		ruleset = rules.MustDefault()
	}

	// Use in-memory repositories if none provided
	charRepo := cfg.CharacterRepository
	if charRepo == nil {
		charRepo = characters.NewInMemoryRepository()
	}

	sessionRepo := cfg.SessionRepository
	if sessionRepo == nil {
		sessionRepo = sessions.NewInMemoryRepository(&sessions.InMemoryConfig{TTL: cfg.SessionTTL})
	}

	poolRepo := cfg.PoolRepository
	if poolRepo == nil {
		poolRepo = pools.NewInMemoryRepository()
	}

	engine := dice.NewEngine(&dice.EngineConfig{
		Roller: cfg.DiceRoller,
		Logger: logger.Named("dice"),
	})
	resolver := resolution.NewResolver(&resolution.ResolverConfig{
		Engine: engine,
		Logger: logger.Named("resolution"),
	})

	charService := characterService.NewService(&characterService.ServiceConfig{
		Repository: charRepo,
		Logger:     logger.Named("character"),
	})

	creation := creationService.NewService(&creationService.ServiceConfig{
		Ruleset:       ruleset,
		CharacterRepo: charRepo,
		SessionRepo:   sessionRepo,
		UUIDGenerator: cfg.UUIDGenerator,
		TTL:           cfg.SessionTTL,
		Logger:        logger.Named("creation"),
	})

	ledger := poolService.NewService(&poolService.ServiceConfig{
		Repository: poolRepo,
		Logger:     logger.Named("pools"),
	})

	checks := checksService.NewService(&checksService.ServiceConfig{
		Ruleset:          ruleset,
		CharacterService: charService,
		PoolService:      ledger,
		Resolver:         resolver,
		Logger:           logger.Named("checks"),
	})

	return &Provider{
		Ruleset:          ruleset,
		Dice:             engine,
		Resolver:         resolver,
		CharacterService: charService,
		CreationService:  creation,
		PoolService:      ledger,
		ChecksService:    checks,
	}
}
