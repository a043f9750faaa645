package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/dune-bot-discord/internal/config"
	"github.com/KirkDiggler/dune-bot-discord/internal/handlers/discord"
	"github.com/KirkDiggler/dune-bot-discord/internal/logging"
	"github.com/KirkDiggler/dune-bot-discord/internal/repositories/characters"
	"github.com/KirkDiggler/dune-bot-discord/internal/repositories/pools"
	"github.com/KirkDiggler/dune-bot-discord/internal/repositories/sessions"
	"github.com/KirkDiggler/dune-bot-discord/internal/rules"
	"github.com/KirkDiggler/dune-bot-discord/internal/services"
	"github.com/KirkDiggler/dune-bot-discord/internal/services/creation"
)

func main() {
	// Load .env file
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Info("no .env file found")
	}

	logger.Info("starting bot",
		zap.String("token", cfg.Discord.Token[:min(8, len(cfg.Discord.Token))]+"..."),
		zap.String("app_id", cfg.Discord.AppID),
		zap.String("guild_id", cfg.Discord.GuildID))

	ruleset, err := loadRuleset(cfg.Rules.Path)
	if err != nil {
		logger.Fatal("failed to load ruleset", zap.String("path", cfg.Rules.Path), zap.Error(err))
	}
	logger.Info("ruleset loaded", zap.String("name", ruleset.Name))

	providerConfig := &services.ProviderConfig{
		Ruleset:    ruleset,
		SessionTTL: cfg.Sessions.TTL,
		Logger:     logger,
	}

	// Keep Redis client for cleanup
	redisClient := connectRedis(cfg.Redis.URL, logger)
	if redisClient != nil {
		providerConfig.CharacterRepository = characters.NewRedis(redisClient)
		providerConfig.SessionRepository = sessions.NewRedis(redisClient, cfg.Sessions.TTL)
		providerConfig.PoolRepository = pools.NewRedis(redisClient)
		logger.Info("using Redis for persistence")
	}

	if cfg.Storage.SQLitePath != "" {
		repo, err := characters.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			logger.Fatal("failed to open sqlite", zap.String("path", cfg.Storage.SQLitePath), zap.Error(err))
		}
		defer func() {
			if err := repo.Close(); err != nil {
				logger.Warn("failed to close sqlite", zap.Error(err))
			}
		}()
		providerConfig.CharacterRepository = repo
		logger.Info("using SQLite for characters", zap.String("path", cfg.Storage.SQLitePath))
	}

	if providerConfig.CharacterRepository == nil {
		logger.Info("no persistent store configured, using in-memory repositories")
	}

	serviceProvider := services.NewProvider(providerConfig)

	// Create Discord session
	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		logger.Fatal("failed to create Discord session", zap.Error(err))
	}

	handler := discord.NewHandler(&discord.HandlerConfig{
		ServiceProvider: serviceProvider,
		Logger:          logger.Named("discord"),
	})
	dg.AddHandler(discord.RecoverMiddleware(logger, "interaction", handler.HandleInteraction))

	if err := dg.Open(); err != nil {
		logger.Error("failed to open Discord connection", zap.Error(err))
		return
	}
	defer func() {
		if err := dg.Close(); err != nil {
			logger.Warn("failed to close Discord connection", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Use empty string for global commands, or set a specific guild ID for testing
		return handler.RegisterCommands(dg, cfg.Discord.GuildID)
	})
	g.Go(func() error {
		restored, err := serviceProvider.CreationService.Restore(gctx)
		if err != nil {
			return fmt.Errorf("restore creation sessions: %w", err)
		}
		logger.Info("creation sessions restored", zap.Int("count", restored))
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("startup failed", zap.Error(err))
		return
	}

	if cfg.Discord.GuildID == "" {
		logger.Info("registered global commands (may take up to 1 hour to propagate)")
	}

	go runCleanup(ctx, serviceProvider.CreationService, cfg.Sessions.CleanupInterval, logger)

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	<-ctx.Done()
	fmt.Println("Shutting down...")

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("error closing Redis connection", zap.Error(err))
		}
	}
}

func loadRuleset(path string) (*rules.Ruleset, error) {
	if path == "" {
		return rules.Default()
	}
	return rules.Load(path)
}

// connectRedis returns nil when Redis is not configured or unreachable
func connectRedis(url string, logger *zap.Logger) *redis.Client {
	if url == "" {
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn("failed to parse Redis URL, falling back to in-memory repositories", zap.Error(err))
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("failed to connect to Redis, falling back to in-memory repositories", zap.Error(err))
		_ = client.Close()
		return nil
	}
	logger.Info("connected to Redis", zap.String("addr", opts.Addr))
	return client
}

func runCleanup(ctx context.Context, svc creation.Service, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := svc.CleanupExpired(ctx); removed > 0 {
				logger.Info("expired creation sessions removed", zap.Int("count", removed))
			}
		}
	}
}
