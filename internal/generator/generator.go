// Package generator turns a nationality and a seed into a complete,
// reproducible player profile.
package generator

import (
	"math/rand/v2"
	"strings"

	"github.com/kapu/player-generator-go/internal/domain"
	"github.com/kapu/player-generator-go/internal/templating"
	"github.com/kapu/player-generator-go/pkg/errors"
)

const (
	DefaultMinProfileLength  = 100
	DefaultMaxBiographyLines = 1000
	maxGivenNames            = 3
)

// Sampler is the view of the trained models a Generator needs.
type Sampler interface {
	SampleSurname(nationalityID int, r *rand.Rand) (string, error)
	SampleGivenName(nationalityID int, r *rand.Rand) (string, error)
	SampleBiographyLine(r *rand.Rand) (string, error)
}

// SeedSource supplies seeds for callers that did not provide one.
type SeedSource func() uint64

type Config struct {
	// MinProfileLength is the cumulative biography length, in characters,
	// at which sampling stops.
	MinProfileLength int
	// MaxBiographyLines bounds biography sampling for degenerate models.
	MaxBiographyLines int
	// Seeds overrides the source of fresh seeds.
	Seeds SeedSource
}

type Generator struct {
	registry *domain.Registry
	sampler  Sampler
	cfg      Config
}

func New(registry *domain.Registry, sampler Sampler, cfg Config) *Generator {
	if cfg.MinProfileLength <= 0 {
		cfg.MinProfileLength = DefaultMinProfileLength
	}
	if cfg.MaxBiographyLines <= 0 {
		cfg.MaxBiographyLines = DefaultMaxBiographyLines
	}
	if cfg.Seeds == nil {
		// the top-level math/rand/v2 functions are randomly seeded
		cfg.Seeds = rand.Uint64
	}
	return &Generator{registry: registry, sampler: sampler, cfg: cfg}
}

// Generate builds the profile determined by nationalityID and seed. A nil
// seed draws a fresh one; the seed actually used is always returned so the
// profile can be reproduced later.
//
// Randomness is consumed in a fixed order: surname, given-name count, given
// names, biography lines. Changing that order changes every profile.
func (g *Generator) Generate(nationalityID int, seed *uint64) (*domain.GeneratedProfile, uint64, error) {
	nationality, err := g.registry.ByID(nationalityID)
	if err != nil {
		return nil, 0, err
	}

	var used uint64
	if seed != nil {
		used = *seed
	} else {
		used = g.cfg.Seeds()
	}

	r := newRand(used)

	surname, err := g.sampler.SampleSurname(nationality.ID, r)
	if err != nil {
		return nil, used, err
	}

	count := r.IntN(maxGivenNames) + 1
	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		name, err := g.sampler.SampleGivenName(nationality.ID, r)
		if err != nil {
			return nil, used, err
		}
		names = append(names, name)
	}
	givenNames := strings.Join(names, " ")
	fullName := givenNames + " " + surname

	fields := templating.Fields{
		FullName:        fullName,
		Surname:         surname,
		GivenNames:      givenNames,
		NationalityName: nationality.Name,
	}

	biography, err := g.biography(r, fields, nationality.ID)
	if err != nil {
		return nil, used, err
	}

	return &domain.GeneratedProfile{
		NationalityID:   nationality.ID,
		NationalityName: nationality.Name,
		NationalitySlug: nationality.Slug,
		GivenNames:      givenNames,
		Surname:         surname,
		FullName:        fullName,
		Biography:       biography,
		Seed:            used,
	}, used, nil
}

// newRand returns the source for one profile. PCG keeps all 64 bits of seed
// significant.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

func (g *Generator) biography(r *rand.Rand, fields templating.Fields, nationalityID int) ([]string, error) {
	lines := make([]string, 0, 4)
	total := 0
	for attempts := 0; total < g.cfg.MinProfileLength; attempts++ {
		if attempts >= g.cfg.MaxBiographyLines {
			return nil, errors.NewEmptyModelError("biography", map[string]any{
				"nationality_id": nationalityID,
				"attempts":       attempts,
				"length":         total,
				"min_length":     g.cfg.MinProfileLength,
			})
		}

		line, err := g.sampler.SampleBiographyLine(r)
		if err != nil {
			return nil, err
		}
		line = templating.FromTemplate(line, fields)
		total += len([]rune(line))
		lines = append(lines, strings.TrimSpace(line))
	}
	return lines, nil
}
