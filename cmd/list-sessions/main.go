package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/dune-bot-discord/internal/repositories/pools"
	"github.com/KirkDiggler/dune-bot-discord/internal/repositories/sessions"
)

// Lists the creation sessions stored in Redis. With a guild ID argument it
// also prints the momentum and threat pools of that guild.
func main() {
	ctx := context.Background()

	// Set up Redis
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}

	client := redis.NewClient(opts)
	defer client.Close()

	// Test connection
	if _, pingErr := client.Ping(ctx).Result(); pingErr != nil {
		log.Fatalf("Failed to connect to Redis: %v", pingErr)
	}

	ttl := 24 * time.Hour
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		if ttl, err = time.ParseDuration(raw); err != nil {
			log.Fatalf("Invalid SESSION_TTL: %v", err)
		}
	}

	list, err := sessions.NewRedis(client, ttl).List(ctx)
	if err != nil {
		log.Fatalf("Failed to list sessions: %v", err)
	}

	fmt.Printf("Found %d creation sessions:\n", len(list))
	for _, session := range list {
		name := session.Data.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("  %s %s: step %s, idle %s\n",
			session.Key(), name, session.CurrentStep, time.Since(session.LastUpdated).Round(time.Second))
	}

	if len(os.Args) < 2 {
		return
	}

	guildID := os.Args[1]
	guildPools, err := pools.NewRedis(client).ListByGuild(ctx, guildID)
	if err != nil {
		log.Fatalf("Failed to list pools: %v", err)
	}

	fmt.Printf("\nFound %d pools in guild %s:\n", len(guildPools), guildID)
	for _, pool := range guildPools {
		fmt.Printf("  %s: momentum %d, threat %d\n", pool.ChannelID, pool.Momentum, pool.Threat)
	}
}
