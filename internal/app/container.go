package app

import (
	"context"
	"fmt"
	"hash/fnv"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/kapu/player-generator-go/internal/config"
	"github.com/kapu/player-generator-go/internal/constants"
	"github.com/kapu/player-generator-go/internal/domain"
	"github.com/kapu/player-generator-go/internal/ensemble"
	"github.com/kapu/player-generator-go/internal/generator"
	"github.com/kapu/player-generator-go/internal/sanitizer"
	"github.com/kapu/player-generator-go/internal/server"
	"github.com/kapu/player-generator-go/internal/service/cache"
	"github.com/kapu/player-generator-go/internal/service/database"
	"github.com/kapu/player-generator-go/internal/service/profile"
	"github.com/kapu/player-generator-go/internal/trainingdata"
	"go.uber.org/zap"
)

// Container bundles the trained models and the services built on them.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Registry     *domain.Registry
	Ensemble     *ensemble.Ensemble
	Generator    *generator.Generator
	Profiles     *profile.Service
	ModelVersion string

	healthChecks map[string]server.HealthCheck
	closers      []func()
}

// NewServer returns the HTTP shell over the container's profile service.
func (c *Container) NewServer() (*server.Server, error) {
	if c == nil || c.Profiles == nil {
		return nil, fmt.Errorf("profile service not initialized")
	}
	return server.New(server.Config{
		Addr:            c.Config.Server.Addr,
		ReadTimeout:     constants.ServerConfig.ReadTimeout,
		WriteTimeout:    constants.ServerConfig.WriteTimeout,
		ShutdownTimeout: constants.ServerConfig.ShutdownTimeout,
		HealthChecks:    c.healthChecks,
	}, c.Profiles, c.Logger)
}

// Close releases external connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build loads the training data, trains the ensemble and assembles the
// generation services. Training happens once here; the result is read-only.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	container := &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			container.Close()
		}
	}()

	registry, err := domain.NewRegistry(domain.DefaultNationalities())
	if err != nil {
		return nil, fmt.Errorf("invalid nationality registry: %w", err)
	}
	container.Registry = registry

	profiles, source, err := LoadTrainingProfiles(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := ensemble.Options{
		BiographyOrder: constants.GenerationConfig.BiographyOrder,
		NameOrder:      constants.GenerationConfig.NameOrder,
		MaxTokens:      constants.GenerationConfig.MaxTokens,
		Sanitizer:      sanitizer.New(append(slices.Clone(sanitizer.DefaultDenylist), cfg.Generation.ExtraDenylist...)...),
	}
	models, err := ensemble.Build(registry, profiles, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to train models from %s: %w", source, err)
	}
	container.Ensemble = models

	for _, stat := range models.Stats() {
		logger.Debug("Nationality model",
			zap.String("nationality", stat.Nationality.Name),
			zap.Int("profiles", stat.Profiles),
			zap.Int("surnames", stat.Surnames),
			zap.Int("given_names", stat.GivenNames))
	}

	container.Generator = generator.New(registry, models, generator.Config{
		MinProfileLength:  cfg.Generation.MinProfileLength,
		MaxBiographyLines: cfg.Generation.MaxBiographyLines,
	})
	container.ModelVersion = ModelVersion(trainingdata.Fingerprint(profiles), opts, cfg.Generation.ExtraDenylist, cfg.Generation.MinProfileLength)

	profileCache, err := container.buildCache(cfg, logger)
	if err != nil {
		return nil, err
	}

	container.Profiles = profile.NewService(profile.Config{
		Registry:     registry,
		Generator:    container.Generator,
		Cache:        profileCache,
		ModelVersion: container.ModelVersion,
		Logger:       logger,
	})

	logger.Info("Generator ready",
		zap.String("source", source),
		zap.Int("profiles", len(profiles)),
		zap.Int("biography_lines", models.BiographyLines()),
		zap.String("model_version", container.ModelVersion))

	return container, nil
}

// ModelVersion identifies everything that shapes generated profiles: the
// training set, the chain options, the extra denylist (order-insensitive) and
// the minimum biography length. Cached profiles are keyed by it.
func ModelVersion(fingerprint string, opts ensemble.Options, extraWords []string, minLength int) string {
	words := make([]string, 0, len(extraWords))
	for _, w := range extraWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			words = append(words, w)
		}
	}
	sort.Strings(words)

	h := fnv.New64a()
	fmt.Fprintf(h, "bio=%d;name=%d;max=%d;min=%d;deny=%s",
		opts.BiographyOrder, opts.NameOrder, opts.MaxTokens, minLength, strings.Join(words, "\x1f"))
	return fingerprint + "-" + strconv.FormatUint(h.Sum64(), 36)
}

// buildCache layers the in-process LRU in front of Redis when Redis is
// enabled. An unreachable Redis degrades to memory only.
func (c *Container) buildCache(cfg *config.Config, logger *zap.Logger) (cache.ProfileCache, error) {
	tiers := make([]cache.ProfileCache, 0, 2)

	if cfg.Cache.Size > 0 {
		memory, err := cache.NewMemoryCache(cfg.Cache.Size)
		if err != nil {
			return nil, fmt.Errorf("failed to create memory cache: %w", err)
		}
		tiers = append(tiers, memory)
	}

	if cfg.Redis.Enabled {
		redisCache, err := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Cache.TTL,
		}, logger)
		if err != nil {
			logger.Warn("Redis unavailable, using in-process cache only", zap.Error(err))
		} else {
			c.closers = append(c.closers, func() {
				_ = redisCache.Close()
			})
			c.healthChecks = map[string]server.HealthCheck{"redis": redisCache.IsConnected}
			tiers = append(tiers, redisCache)
		}
	}

	if len(tiers) == 0 {
		return nil, nil
	}
	return cache.NewTiered(tiers...), nil
}

// LoadTrainingProfiles reads the configured training source and reports a
// description of where the data came from.
func LoadTrainingProfiles(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]domain.TrainingProfile, string, error) {
	switch cfg.Training.Source {
	case config.SourceSQLite, config.SourcePostgres:
		store, err := OpenStore(cfg, logger)
		if err != nil {
			return nil, "", err
		}
		defer store.Close()

		profiles, err := store.LoadProfiles(ctx, cfg.Training.RunID)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load training profiles: %w", err)
		}
		return profiles, cfg.Training.Source, nil
	default:
		path, err := TrainingFile(cfg)
		if err != nil {
			return nil, "", err
		}
		profiles, err := trainingdata.LoadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load training file: %w", err)
		}
		return profiles, path, nil
	}
}

// TrainingFile resolves the explicit training file or the newest one in the
// training directory.
func TrainingFile(cfg *config.Config) (string, error) {
	if cfg.Training.File != "" {
		return cfg.Training.File, nil
	}
	path, err := trainingdata.LatestFile(cfg.Training.Dir, trainingdata.DefaultPattern)
	if err != nil {
		return "", fmt.Errorf("failed to locate training file: %w", err)
	}
	return path, nil
}

// OpenStore opens the configured database store. File sources fall back to
// SQLite so import and crawl always have somewhere to write.
func OpenStore(cfg *config.Config, logger *zap.Logger) (database.TrainingStore, error) {
	if cfg.Training.Source == config.SourcePostgres {
		store, err := database.NewPostgresStore(database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
			SSLMode:  cfg.Postgres.SSLMode,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return store, nil
	}

	store, err := database.NewSQLiteStore(cfg.Training.SQLitePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	return store, nil
}
