// Package ensemble holds the Markov chains a generator samples from: one
// shared biography chain plus a surname chain and a given-name chain per
// nationality.
package ensemble

import (
	stderrors "errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/kapu/player-generator-go/internal/domain"
	"github.com/kapu/player-generator-go/internal/markov"
	"github.com/kapu/player-generator-go/internal/sanitizer"
	"github.com/kapu/player-generator-go/internal/templating"
	"github.com/kapu/player-generator-go/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultBiographyOrder = 3
	DefaultNameOrder      = 4
)

type Options struct {
	BiographyOrder int
	NameOrder      int
	MaxTokens      int
	Sanitizer      *sanitizer.Sanitizer
}

func (o Options) withDefaults() Options {
	if o.BiographyOrder <= 0 {
		o.BiographyOrder = DefaultBiographyOrder
	}
	if o.NameOrder <= 0 {
		o.NameOrder = DefaultNameOrder
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = markov.DefaultMaxTokens
	}
	if o.Sanitizer == nil {
		o.Sanitizer = sanitizer.New()
	}
	return o
}

// Ensemble must not be trained once generation has started; after Build it
// is safe to share between goroutines.
type Ensemble struct {
	registry   *domain.Registry
	sanitizer  *sanitizer.Sanitizer
	biography  *markov.Chain
	surnames   []*markov.Chain
	givenNames []*markov.Chain
	profiles   []int
	lines      int
}

// New returns an untrained ensemble with one chain pair per registry entry.
func New(registry *domain.Registry, opts Options) *Ensemble {
	opts = opts.withDefaults()

	e := &Ensemble{
		registry:   registry,
		sanitizer:  opts.Sanitizer,
		biography:  markov.New(opts.BiographyOrder, markov.WithMaxTokens(opts.MaxTokens)),
		surnames:   make([]*markov.Chain, registry.Len()),
		givenNames: make([]*markov.Chain, registry.Len()),
		profiles:   make([]int, registry.Len()),
	}
	for i := range e.surnames {
		e.surnames[i] = markov.New(opts.NameOrder, markov.WithMaxTokens(opts.MaxTokens))
		e.givenNames[i] = markov.New(opts.NameOrder, markov.WithMaxTokens(opts.MaxTokens))
	}
	return e
}

// Build trains a fresh ensemble on every profile and fails fast on the first
// bad record. An ensemble without any biography data is rejected.
func Build(registry *domain.Registry, profiles []domain.TrainingProfile, opts Options, logger *zap.Logger) (*Ensemble, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := New(registry, opts)
	for i := range profiles {
		if err := e.Train(profiles[i]); err != nil {
			return nil, fmt.Errorf("training profile %d: %w", i+1, err)
		}
	}

	if e.biography.Empty() {
		return nil, errors.NewEmptyModelError("biography", map[string]any{
			"profiles": len(profiles),
		})
	}

	for _, stat := range e.Stats() {
		if stat.Profiles == 0 {
			logger.Warn("Nationality has no training data",
				zap.Int("nationality_id", stat.Nationality.ID),
				zap.String("nationality", stat.Nationality.Name))
		}
	}

	logger.Info("Ensemble trained",
		zap.Int("profiles", len(profiles)),
		zap.Int("biography_lines", e.lines))

	return e, nil
}

// Train adds one profile. Unknown nationalities are malformed records.
func (e *Ensemble) Train(p domain.TrainingProfile) error {
	nationality, err := e.registry.ByID(p.NationalityID)
	if err != nil {
		return errors.NewMalformedRecordError(0, err)
	}
	idx, _ := e.registry.Index(nationality.ID)

	givenNames := p.EffectiveGivenNames()
	fields := templating.Fields{
		FullName:        strings.TrimSpace(p.FullName),
		KnownAs:         strings.TrimSpace(p.KnownAs),
		Surname:         strings.TrimSpace(p.Surname),
		GivenNames:      givenNames,
		NationalityName: nationality.Name,
	}

	for _, line := range e.sanitizer.FilterSafe(p.Biography) {
		tokens := strings.Fields(templating.ToTemplate(line, fields))
		if len(tokens) == 0 {
			continue
		}
		e.biography.Train(tokens)
		e.lines++
	}

	if fields.Surname != "" {
		e.surnames[idx].Train(markov.Characters(fields.Surname))
	}
	for _, name := range strings.Fields(givenNames) {
		e.givenNames[idx].Train(markov.Characters(name))
	}

	e.profiles[idx]++
	return nil
}

func (e *Ensemble) Registry() *domain.Registry {
	return e.registry
}

func (e *Ensemble) SampleSurname(nationalityID int, r *rand.Rand) (string, error) {
	idx, err := e.registry.Index(nationalityID)
	if err != nil {
		return "", err
	}
	return sampleName(e.surnames[idx], "surname", nationalityID, r)
}

func (e *Ensemble) SampleGivenName(nationalityID int, r *rand.Rand) (string, error) {
	idx, err := e.registry.Index(nationalityID)
	if err != nil {
		return "", err
	}
	return sampleName(e.givenNames[idx], "given_names", nationalityID, r)
}

// SampleBiographyLine returns one templated biography line, tokens joined by
// single spaces.
func (e *Ensemble) SampleBiographyLine(r *rand.Rand) (string, error) {
	tokens, err := e.biography.Sample(r)
	if err != nil {
		return "", wrapEmpty(err, "biography", nil)
	}
	return strings.Join(tokens, " "), nil
}

func sampleName(chain *markov.Chain, model string, nationalityID int, r *rand.Rand) (string, error) {
	ctx := map[string]any{"nationality_id": nationalityID}
	tokens, err := chain.Sample(r)
	if err != nil {
		return "", wrapEmpty(err, model, ctx)
	}
	name := strings.Join(tokens, "")
	if name == "" {
		return "", errors.NewEmptyModelError(model, ctx)
	}
	return name, nil
}

func wrapEmpty(err error, model string, ctx map[string]any) error {
	if stderrors.Is(err, markov.ErrEmptyChain) {
		empty := errors.NewEmptyModelError(model, ctx)
		empty.Cause = err
		return empty
	}
	return err
}

// NationalityStats summarises what one nationality was trained on.
type NationalityStats struct {
	Nationality domain.Nationality `json:"nationality"`
	Profiles    int                `json:"profiles"`
	Surnames    int                `json:"surnames"`
	GivenNames  int                `json:"given_names"`
}

func (e *Ensemble) Stats() []NationalityStats {
	all := e.registry.All()
	stats := make([]NationalityStats, len(all))
	for i, n := range all {
		stats[i] = NationalityStats{
			Nationality: n,
			Profiles:    e.profiles[i],
			Surnames:    e.surnames[i].Sequences(),
			GivenNames:  e.givenNames[i].Sequences(),
		}
	}
	return stats
}

// BiographyLines returns how many templated lines the biography chain saw.
func (e *Ensemble) BiographyLines() int {
	return e.lines
}
