package ensemble

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/kapu/player-generator-go/internal/domain"
	apperrors "github.com/kapu/player-generator-go/pkg/errors"
	"go.uber.org/zap"
)

func butcher() domain.TrainingProfile {
	return domain.TrainingProfile{
		NationalityID: 1,
		Surname:       "Butcher",
		FullName:      "Mark Alan Butcher",
		Biography: []string{
			"Mark Alan Butcher played 71 test matches for England",
			"He died a thousand deaths at slip",
		},
	}
}

func TestBuildTemplatesBiography(t *testing.T) {
	e, err := Build(domain.MustDefaultRegistry(), []domain.TrainingProfile{butcher()}, Options{}, zap.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if e.BiographyLines() != 1 {
		t.Fatalf("expected the unsafe line to be filtered, trained %d lines", e.BiographyLines())
	}

	line, err := e.SampleBiographyLine(rand.New(rand.NewPCG(1, 0)))
	if err != nil {
		t.Fatalf("SampleBiographyLine: %v", err)
	}
	if want := "$fullname played 71 test matches for $team"; line != want {
		t.Fatalf("expected %q, got %q", want, line)
	}
}

func TestBuildTrainsNames(t *testing.T) {
	e, err := Build(domain.MustDefaultRegistry(), []domain.TrainingProfile{butcher()}, Options{}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r := rand.New(rand.NewPCG(5, 0))
	surname, err := e.SampleSurname(1, r)
	if err != nil || surname != "Butcher" {
		t.Fatalf("expected Butcher, got %q (%v)", surname, err)
	}

	for i := 0; i < 10; i++ {
		name, err := e.SampleGivenName(1, r)
		if err != nil {
			t.Fatalf("SampleGivenName: %v", err)
		}
		if name != "Mark" && name != "Alan" {
			t.Fatalf("unexpected given name %q", name)
		}
	}

	stats := e.Stats()
	if stats[0].Profiles != 1 || stats[0].Surnames != 1 || stats[0].GivenNames != 2 {
		t.Fatalf("unexpected stats for England: %+v", stats[0])
	}
	if stats[1].Profiles != 0 {
		t.Fatalf("expected no Australian profiles, got %+v", stats[1])
	}
}

func TestSampleUntrainedNationality(t *testing.T) {
	e, err := Build(domain.MustDefaultRegistry(), []domain.TrainingProfile{butcher()}, Options{}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r := rand.New(rand.NewPCG(1, 0))
	if _, err := e.SampleSurname(2, r); !errors.Is(err, apperrors.ErrEmptyModel) {
		t.Fatalf("expected EmptyModel for untrained surnames, got %v", err)
	}
	if _, err := e.SampleGivenName(2, r); !errors.Is(err, apperrors.ErrEmptyModel) {
		t.Fatalf("expected EmptyModel for untrained given names, got %v", err)
	}
	if _, err := e.SampleSurname(42, r); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected NotFound for unknown nationality, got %v", err)
	}
}

func TestBuildFailsWithoutBiography(t *testing.T) {
	profile := butcher()
	profile.Biography = []string{"He died young", "   "}

	_, err := Build(domain.MustDefaultRegistry(), []domain.TrainingProfile{profile}, Options{}, nil)
	var empty *apperrors.EmptyModelError
	if !errors.As(err, &empty) || empty.Model != "biography" {
		t.Fatalf("expected biography EmptyModelError, got %v", err)
	}

	if _, err := Build(domain.MustDefaultRegistry(), nil, Options{}, nil); !errors.Is(err, apperrors.ErrEmptyModel) {
		t.Fatalf("expected EmptyModel for no profiles, got %v", err)
	}
}

func TestBuildRejectsUnknownNationality(t *testing.T) {
	profile := butcher()
	profile.NationalityID = 77

	_, err := Build(domain.MustDefaultRegistry(), []domain.TrainingProfile{profile}, Options{}, nil)
	if !errors.Is(err, apperrors.ErrMalformedRecord) {
		t.Fatalf("expected MalformedRecord, got %v", err)
	}
}
