package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/upb/studio-dashboard/access"
	"github.com/upb/studio-dashboard/auth"
	"github.com/upb/studio-dashboard/config"
	"github.com/upb/studio-dashboard/handlers"
	"github.com/upb/studio-dashboard/repositories"
	"github.com/upb/studio-dashboard/repositories/postgres"
	"github.com/upb/studio-dashboard/session"
	"github.com/upb/studio-dashboard/views"
	"go.uber.org/zap"
)

const (
	memoryCacheSize       = 4096
	memoryCleanupInterval = time.Minute
	redisPingTimeout      = 3 * time.Second
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory
	Repos       *repositories.Repositories

	// Sessions
	SessionCache session.Cache
	Resolver     *session.CookieResolver
	redisCache   *session.RedisCache
	redisClient  *redis.Client
	stopCleanup  chan struct{}
	closeOnce    sync.Once

	// Access control
	Policy *access.Policy

	// HTTP
	Renderer    *views.Renderer
	AuthHandler *auth.Handler
	Pages       *handlers.PageHandler
	API         *handlers.APIHandler
	Health      *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := NewDependenciesWithFactory(ctx, cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesWithFactory wires everything on top of an existing repository factory
func NewDependenciesWithFactory(ctx context.Context, cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
		Repos:       factory.NewRepositories(),
	}

	if err := deps.initSessionCache(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize session cache: %w", err)
	}

	if err := deps.initPolicy(cfg); err != nil {
		deps.stopCaches()
		return nil, fmt.Errorf("failed to load access policy: %w", err)
	}

	renderer, err := views.NewRenderer(logger)
	if err != nil {
		deps.stopCaches()
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	deps.Renderer = renderer

	deps.initAuth(cfg)
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully",
		zap.Strings("access_routes", deps.Policy.Routes()),
		zap.Bool("shared_session_cache", deps.redisCache != nil))
	return deps, nil
}

// initSessionCache uses Redis when REDIS_URL is set and an in-process LRU otherwise
func (d *Dependencies) initSessionCache(ctx context.Context, cfg *config.Config) error {
	if cfg.Redis.URL == "" {
		cache := session.NewMemoryCache(memoryCacheSize)
		d.stopCleanup = make(chan struct{})
		go cache.StartCleanupWorker(memoryCleanupInterval, d.stopCleanup)
		d.SessionCache = cache
		d.Logger.Info("using in-memory session cache")
		return nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	d.redisClient = client
	d.redisCache = session.NewRedisCache(client, cfg.Redis.KeyPrefix, d.Logger)
	d.SessionCache = d.redisCache
	d.Logger.Info("using redis session cache", zap.String("addr", opts.Addr))
	return nil
}

func (d *Dependencies) initPolicy(cfg *config.Config) error {
	policy := access.DefaultPolicy()
	if cfg.Access.PolicyFile != "" {
		loaded, err := access.LoadFile(cfg.Access.PolicyFile, policy)
		if err != nil {
			return err
		}
		policy = loaded
		d.Logger.Info("access policy loaded", zap.String("file", cfg.Access.PolicyFile))
	}

	for _, route := range policy.Routes() {
		allow, _ := policy.For(route)
		d.Logger.Debug("route allow-list", zap.String("route", route), zap.Stringer("roles", allow))
	}
	d.Policy = policy
	return nil
}

func (d *Dependencies) initAuth(cfg *config.Config) {
	if cfg.Auth.JWTSecret == "" && cfg.Auth.JWKSURL == "" {
		d.Logger.Warn("no token verification key configured, every request is unauthenticated")
	}

	validator := session.NewTokenValidator(session.ValidatorConfig{
		Secret:      cfg.Auth.JWTSecret,
		JWKSURL:     cfg.Auth.JWKSURL,
		Issuer:      cfg.Auth.Issuer,
		Audience:    cfg.Auth.Audience,
		HTTPTimeout: cfg.Auth.HTTPTimeout,
	})

	d.Resolver = session.NewCookieResolver(session.CookieResolverConfig{
		CookieName: cfg.Auth.CookieName,
		Verifier:   validator,
		Profiles:   d.Repos.Profiles,
		Cache:      d.SessionCache,
		CacheTTL:   cfg.Auth.CacheTTL,
	}, d.Logger)

	grant := session.NewPasswordGrant(cfg.Auth.URL, cfg.Auth.AnonKey, cfg.Auth.HTTPTimeout)
	d.AuthHandler = auth.NewHandler(auth.Config{
		CookieName:   cfg.Auth.CookieName,
		CookieSecure: cfg.Auth.CookieSecure,
		LoginPath:    cfg.Edge.LoginPath,
	}, grant, d.Resolver, d.Renderer, d.Logger)
}

func (d *Dependencies) initHandlers() {
	var cache handlers.Pinger
	if d.redisCache != nil {
		cache = d.redisCache
	}
	d.Health = handlers.NewHealthHandler(d.DB, cache, d.Logger)
	d.Pages = handlers.NewPageHandler(d.Repos, d.Policy, d.Renderer, d.Logger)
	d.API = handlers.NewAPIHandler(d.Repos.Designs, d.Policy, d.Logger)
}

func (d *Dependencies) stopCaches() {
	if d.stopCleanup != nil {
		close(d.stopCleanup)
		d.stopCleanup = nil
	}
	if d.redisClient != nil {
		if err := d.redisClient.Close(); err != nil {
			d.Logger.Warn("failed to close redis client", zap.Error(err))
		}
		d.redisClient = nil
	}
}

// Close gracefully shuts down all dependencies. It is safe to call more than once.
func (d *Dependencies) Close(ctx context.Context) error {
	var errs []error

	d.closeOnce.Do(func() {
		d.Logger.Info("shutting down dependencies")

		if mem, ok := d.SessionCache.(*session.MemoryCache); ok {
			hits, misses := mem.Stats()
			d.Logger.Info("session cache stats", zap.Uint64("hits", hits), zap.Uint64("misses", misses))
		}
		d.stopCaches()

		// Close database connection
		if d.RepoFactory != nil {
			if err := d.RepoFactory.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close database: %w", err))
			} else {
				d.Logger.Info("database connection closed")
			}
		}

		// Sync logger
		_ = d.Logger.Sync()
	})

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
