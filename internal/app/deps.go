package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rantsmith/backend/internal/auth"
	"github.com/rantsmith/backend/internal/chat"
	"github.com/rantsmith/backend/internal/config"
	"github.com/rantsmith/backend/internal/db"
	"github.com/rantsmith/backend/internal/handlers"
	"github.com/rantsmith/backend/internal/middleware"
	"github.com/rantsmith/backend/internal/repositories"
	"github.com/rantsmith/backend/internal/storage"
	"github.com/rantsmith/backend/internal/transform"
)

// buildDependencies wires concrete implementations for the HTTP handlers.
// The returned cleanup releases resources that outlive request handling.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, func(context.Context) error, error) {
	sessionStore := repositories.NewPostgresSessionStore(pool)
	tokens := auth.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL, sessionStore)

	var provider transform.Provider
	if cfg.AI.APIKey != "" {
		provider = transform.NewGeminiProvider(cfg.AI.Endpoint, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout)
	}
	engine := transform.NewEngine(provider)

	var redisClient *redis.Client
	var cache transform.ResultCache
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		redisCache, err := transform.NewRedisCache(ctx, redisClient)
		if err != nil {
			_ = redisClient.Close()
			return handlers.Dependencies{}, nil, fmt.Errorf("connect redis: %w", err)
		}
		cache = redisCache
	} else {
		cache = transform.NewMemoryCache()
	}

	var blobs storage.BlobStorage
	if cfg.ObjectStore.Bucket != "" {
		s3Store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			if redisClient != nil {
				_ = redisClient.Close()
			}
			return handlers.Dependencies{}, nil, fmt.Errorf("configure object storage: %w", err)
		}
		blobs = s3Store
	}

	deps := handlers.Dependencies{
		Users:       repositories.NewPostgresUserRepository(pool),
		Rants:       repositories.NewPostgresRantRepository(pool),
		Contents:    repositories.NewPostgresContentRepository(pool),
		Tokens:      tokens,
		Transformer: transform.NewCachingTransformer(engine, cache, cfg.TransformCacheTTL),
		Responder:   chat.NewResponder(provider),
		Transcriber: handlers.PlaceholderTranscriber{},
		Storage:     blobs,
		Limiter:     middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute),
	}

	cleanup := func(context.Context) error {
		if redisClient != nil {
			return redisClient.Close()
		}
		return nil
	}

	return deps, cleanup, nil
}
