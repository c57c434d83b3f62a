package database

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/config"
)

// InitRedis initializes the Redis client used for session and blog caching.
func InitRedis(config *config.Config) *redis.Client {
	if !config.HasRedis() {
		log.Println("⚠️  Redis is not configured, caching is disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	redisAddr := config.GetRedisAddr()
	log.Printf("Connecting to Redis at %s...", redisAddr)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Username: config.RedisUsername,
		Password: config.RedisPassword,
	})

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		log.Printf("⚠️  Warning: Failed to connect to Redis: %v", err)
		log.Println("⚠️  Application will continue without Redis caching")
		redisClient.Close()
		return nil // callers treat a nil client as caching disabled
	}

	log.Println("✅ Successfully connected to Redis")
	return redisClient
}
