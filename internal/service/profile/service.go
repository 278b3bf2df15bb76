package profile

import (
	"context"
	"math/rand/v2"

	"github.com/kapu/player-generator-go/internal/domain"
	"github.com/kapu/player-generator-go/internal/seedcodec"
	"github.com/kapu/player-generator-go/internal/service/cache"
	"go.uber.org/zap"
)

// Generator is the generation entry point the service wraps.
type Generator interface {
	Generate(nationalityID int, seed *uint64) (*domain.GeneratedProfile, uint64, error)
}

// Service resolves external identifiers (slug + seed string) into generated
// profiles, consulting the cache first.
type Service struct {
	registry     *domain.Registry
	generator    Generator
	cache        cache.ProfileCache
	modelVersion string
	logger       *zap.Logger
	pick         func(n int) int
	seeds        func() uint64
}

type Config struct {
	Registry     *domain.Registry
	Generator    Generator
	Cache        cache.ProfileCache
	ModelVersion string
	Logger       *zap.Logger
}

func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry:     cfg.Registry,
		generator:    cfg.Generator,
		cache:        cfg.Cache,
		modelVersion: cfg.ModelVersion,
		logger:       logger,
		pick:         rand.IntN,
		seeds:        rand.Uint64,
	}
}

func (s *Service) Registry() *domain.Registry {
	return s.registry
}

// BySlug returns the profile for a nationality slug and an encoded seed.
// Unknown slugs are NotFound; undecodable seeds are MalformedSeed.
func (s *Service) BySlug(ctx context.Context, slug, seedCode string) (*domain.GeneratedProfile, error) {
	nationality, err := s.registry.BySlug(slug)
	if err != nil {
		return nil, err
	}
	seed, err := seedcodec.Decode(seedCode)
	if err != nil {
		return nil, err
	}
	return s.Generate(ctx, nationality.ID, &seed)
}

// Generate returns the profile for nationalityID and seed (nil draws a fresh
// seed) with its SeedCode filled in.
func (s *Service) Generate(ctx context.Context, nationalityID int, seed *uint64) (*domain.GeneratedProfile, error) {
	var key string
	if seed != nil && s.cache != nil {
		key = cache.ProfileKey(s.modelVersion, nationalityID, *seed)
		if cached, ok := s.cache.GetProfile(ctx, key); ok {
			return cached, nil
		}
	}

	profile, used, err := s.generator.Generate(nationalityID, seed)
	if err != nil {
		s.logger.Warn("Profile generation failed",
			zap.Int("nationality_id", nationalityID),
			zap.Error(err))
		return nil, err
	}
	profile.SeedCode = seedcodec.Encode(used)

	if s.cache != nil {
		if key == "" {
			key = cache.ProfileKey(s.modelVersion, nationalityID, used)
		}
		s.cache.SetProfile(ctx, key, profile)
	}

	s.logger.Debug("Profile generated",
		zap.Int("nationality_id", nationalityID),
		zap.String("seed", profile.SeedCode))

	return profile, nil
}

// Random picks a nationality and a fresh seed, for "surprise me" links.
func (s *Service) Random() (domain.Nationality, string) {
	all := s.registry.All()
	nationality := all[s.pick(len(all))]
	return nationality, s.NewSeedCode()
}

// NewSeedCode draws a fresh seed and returns it encoded.
func (s *Service) NewSeedCode() string {
	return seedcodec.Encode(s.seeds())
}
