package app

import (
	"context"
	"fmt"

	"github.com/kapu/messenger-api-go/internal/api"
	"github.com/kapu/messenger-api-go/internal/config"
	"github.com/kapu/messenger-api-go/internal/constants"
	"github.com/kapu/messenger-api-go/internal/contact"
	"github.com/kapu/messenger-api-go/internal/featureflag"
	"github.com/kapu/messenger-api-go/internal/notification"
	"github.com/kapu/messenger-api-go/internal/service/cache"
	"github.com/kapu/messenger-api-go/internal/service/database"
	"github.com/kapu/messenger-api-go/internal/session"
	"github.com/kapu/messenger-api-go/internal/stream"
	"github.com/kapu/messenger-api-go/internal/util"
	"go.uber.org/zap"
)

// Container bundles the assembled services the CLI commands run against.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	API           *api.Client
	Cache         *cache.CacheService
	Flags         *featureflag.Flags
	Sessions      *session.Store
	Notifications notification.Settings

	// Conversations is nil when no PostgreSQL store is configured.
	Conversations *contact.ConversationRepository

	closers []func()
}

// Build assembles every service. Anything opened before a failure is closed
// again before the error is returned.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	notifications, err := notification.ParseSettings(cfg.Notification.Actions)
	if err != nil {
		return nil, fmt.Errorf("invalid notification actions: %w", err)
	}

	// API client
	apiOpts := []api.Option{
		api.WithBaseURL(cfg.APIBaseURL()),
		api.WithTimeout(cfg.API.Timeout),
	}
	if cfg.API.CircuitBreaker {
		breaker := util.NewCircuitBreaker(
			"messenger-api",
			constants.CircuitBreakerConfig.FailureThreshold,
			constants.CircuitBreakerConfig.ResetTimeout,
			constants.CircuitBreakerConfig.HealthCheckInterval,
			nil,
			logger,
		)
		apiOpts = append(apiOpts, api.WithCircuitBreaker(breaker))
	}
	apiClient := api.New(cfg.API.Environment, logger, apiOpts...)

	// Cache backed state
	cacheSvc, err := cache.NewCacheService(ctx, cache.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache service: %w", err)
	}
	closers = append(closers, func() {
		_ = cacheSvc.Close()
	})

	flags := featureflag.New(cacheSvc, cfg.FeatureFlags.GlobalDefault, logger)
	if err := flags.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load feature flags: %w", err)
	}

	sessions := session.NewStore(cacheSvc, cfg.Session.TTL, logger)

	// Local conversation store
	var conversations *contact.ConversationRepository
	if cfg.Postgres.Enabled() {
		postgresSvc, err := database.NewPostgresService(ctx, database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
			SSLMode:  cfg.Postgres.SSLMode,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres service: %w", err)
		}
		closers = append(closers, func() {
			_ = postgresSvc.Close()
		})
		conversations = contact.NewConversationRepository(postgresSvc, logger)
	} else {
		logger.Info("PostgreSQL not configured, conversation store disabled")
	}

	container = &Container{
		Config:        cfg,
		Logger:        logger,
		API:           apiClient,
		Cache:         cacheSvc,
		Flags:         flags,
		Sessions:      sessions,
		Notifications: notifications,
		Conversations: conversations,
		closers:       closers,
	}

	logger.Info("Services assembled",
		zap.String("environment", cfg.API.Environment.String()),
		zap.String("api_base_url", apiClient.BaseURL()),
		zap.Bool("circuit_breaker", cfg.API.CircuitBreaker),
		zap.Bool("conversation_store", conversations != nil),
	)

	return container, nil
}

// NewSubscriber opens nothing yet; the caller connects it.
func (c *Container) NewSubscriber(accountID string) (*stream.Subscriber, error) {
	streamURL, err := stream.URL(c.Config.Stream.URL, accountID)
	if err != nil {
		return nil, fmt.Errorf("invalid stream url: %w", err)
	}
	return stream.NewSubscriber(
		streamURL,
		nil,
		constants.WebSocketConfig.MaxReconnectAttempts,
		constants.WebSocketConfig.ReconnectDelay,
		c.Logger,
	), nil
}

// Close releases everything Build opened, newest first.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
