package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/agriconnect/agriconnect/internal/domain/auth"
	"github.com/agriconnect/agriconnect/internal/domain/chat"
	"github.com/agriconnect/agriconnect/internal/domain/community"
	"github.com/agriconnect/agriconnect/internal/domain/diagnosis"
	"github.com/agriconnect/agriconnect/internal/domain/market"
	"github.com/agriconnect/agriconnect/internal/domain/media"
	"github.com/agriconnect/agriconnect/internal/domain/pricing"
	"github.com/agriconnect/agriconnect/internal/domain/weatheradvice"
	"github.com/agriconnect/agriconnect/internal/infra/chatrepo"
	"github.com/agriconnect/agriconnect/internal/infra/communityrepo"
	"github.com/agriconnect/agriconnect/internal/infra/config"
	"github.com/agriconnect/agriconnect/internal/infra/croprec/hfspace"
	"github.com/agriconnect/agriconnect/internal/infra/llm/gemini"
	"github.com/agriconnect/agriconnect/internal/infra/mandi/datagovin"
	"github.com/agriconnect/agriconnect/internal/infra/marketrepo"
	"github.com/agriconnect/agriconnect/internal/infra/mediastore"
	"github.com/agriconnect/agriconnect/internal/infra/trendstore"
	"github.com/agriconnect/agriconnect/internal/infra/userrepo"
	"github.com/agriconnect/agriconnect/internal/infra/weather/weatherapi"
)

func provideGeminiClient(cfg *config.Config) *gemini.Client {
	return gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.BaseURL)
}

func provideMandiClient(cfg *config.Config, logger *slog.Logger) *datagovin.Client {
	return datagovin.NewClient(cfg.Mandi.APIBaseURL, cfg.Mandi.APIKey, cfg.Mandi.ResourceID, logger)
}

func provideWeatherClient(cfg *config.Config) *weatherapi.Client {
	return weatherapi.NewClient(cfg.Weather.APIBaseURL, cfg.Weather.APIKey)
}

func provideCropRecClient(cfg *config.Config) *hfspace.Client {
	return hfspace.NewClient(cfg.CropRec.Endpoint)
}

func provideDiagnosisConfig(cfg *config.Config) diagnosis.Config {
	return diagnosis.Config{
		Model:           cfg.Gemini.Model,
		Temperature:     float32(cfg.Diagnosis.Temperature),
		MaxOutputTokens: cfg.Diagnosis.MaxOutputTokens,
		RetryAttempts:   cfg.Diagnosis.RetryAttempts,
		RetryBackoff:    cfg.Diagnosis.RetryBackoff,
	}
}

func providePricingConfig(cfg *config.Config) pricing.Config {
	return pricing.Config{
		Model:           cfg.Gemini.Model,
		Temperature:     float32(cfg.Pricing.Temperature),
		MaxOutputTokens: cfg.Pricing.MaxOutputTokens,
	}
}

func provideWeatherAdviceConfig(cfg *config.Config) weatheradvice.Config {
	return weatheradvice.Config{
		Model:           cfg.Gemini.Model,
		Temperature:     float32(cfg.Weather.Temperature),
		MaxOutputTokens: cfg.Weather.MaxOutputTokens,
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
		Google: auth.GoogleConfig{
			ClientID:     cfg.Auth.Google.ClientID,
			ClientSecret: cfg.Auth.Google.ClientSecret,
			RedirectURL:  cfg.Auth.Google.RedirectURL,
		},
	}
}

func provideCommunityConfig(cfg *config.Config) community.Config {
	return community.Config{
		EmbeddingModel: cfg.Gemini.EmbeddingModel,
		RelatedLimit:   cfg.Community.RelatedLimit,
		TrendingLimit:  cfg.Community.TrendingLimit,
	}
}

func provideMediaConfig(cfg *config.Config) media.Config {
	return media.Config{
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
		PublicBaseURL:  cfg.Media.PublicBaseURL,
	}
}

// providePostgresPool returns nil when no usable DSN is configured. The
// repository providers fall back to memory stores in that case.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres repositories enabled")
	return pool
}

func provideUserRepository(pool *pgxpool.Pool) auth.Repository {
	if pool == nil {
		return userrepo.NewMemoryRepository()
	}
	return userrepo.NewPostgresRepository(pool)
}

func provideCommunityRepository(pool *pgxpool.Pool) community.Repository {
	if pool == nil {
		return communityrepo.NewMemoryRepository()
	}
	return communityrepo.NewPostgresRepository(pool)
}

func provideMarketRepository(pool *pgxpool.Pool) market.Repository {
	if pool == nil {
		return marketrepo.NewMemoryRepository()
	}
	return marketrepo.NewPostgresRepository(pool)
}

func provideChatRepository(pool *pgxpool.Pool) chat.Repository {
	if pool == nil {
		return chatrepo.NewMemoryRepository()
	}
	return chatrepo.NewPostgresRepository(pool)
}

func provideTrendStore(cfg *config.Config, logger *slog.Logger) community.TrendStore {
	if cfg.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return trendstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return trendstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("valkey trend store enabled", "addr", cfg.Valkey.Addr)
			return trendstore.NewValkeyStore(client, "community")
		}
	}
	return trendstore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideObjectStorage(cfg *config.Config, logger *slog.Logger) media.ObjectStorage {
	if strings.TrimSpace(cfg.Storage.Endpoint) == "" {
		logger.Info("object storage endpoint not set, using memory storage")
		return mediastore.NewMemoryStorage()
	}
	storage, err := mediastore.NewS3Storage(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.Region, logger)
	if err != nil {
		logger.Error("failed to initialize object storage, using memory storage", "error", err)
		return mediastore.NewMemoryStorage()
	}
	logger.Info("s3 object storage enabled", "bucket", cfg.Storage.Bucket)
	return storage
}
