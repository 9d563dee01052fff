package db

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/zenvx/CodeBattleCoordService/internal/config"
)

func NewRedisClient(cfg config.Config) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// RDB saves tuned for realtime coordination data: battles and lobbies
	// should survive a restart without hammering the disk.
	if err := rdb.ConfigSet(ctx, "save", "900 1 300 10 60 10000").Err(); err != nil {
		log.Printf("Warning: failed to set Redis RDB save configuration: %v", err)
	}
	if err := rdb.ConfigSet(ctx, "dbfilename", "battle-coord.rdb").Err(); err != nil {
		log.Printf("Warning: failed to set Redis RDB filename: %v", err)
	}

	fmt.Println("Connected to Redis successfully")
	return rdb
}
