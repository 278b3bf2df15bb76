package domain

import (
	"fmt"

	"github.com/kapu/player-generator-go/internal/util"
	"github.com/kapu/player-generator-go/pkg/errors"
)

// Nationality is a supported team identity. Values are immutable once the
// registry is built.
type Nationality struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// NewNationality derives the slug from name.
func NewNationality(id int, name string) Nationality {
	return Nationality{ID: id, Name: name, Slug: util.Slugify(name)}
}

// DefaultNationalities lists the test-playing nations the crawler knows about,
// keyed by the source site's country ids.
func DefaultNationalities() []Nationality {
	return []Nationality{
		NewNationality(1, "England"),
		NewNationality(2, "Australia"),
		NewNationality(3, "South Africa"),
		NewNationality(4, "West Indies"),
		NewNationality(5, "New Zealand"),
		NewNationality(6, "India"),
		NewNationality(7, "Pakistan"),
		NewNationality(8, "Sri Lanka"),
		NewNationality(9, "Zimbabwe"),
		NewNationality(25, "Bangladesh"),
	}
}

// Registry is the fixed catalog of nationalities with id and slug indexes.
type Registry struct {
	all    []Nationality
	byID   map[int]int
	bySlug map[string]int
}

// NewRegistry validates and indexes entries. Ids must be unique and slugs
// must be non-empty and injective.
func NewRegistry(entries []Nationality) (*Registry, error) {
	if len(entries) == 0 {
		return nil, errors.NewValidationError("registry needs at least one nationality", "entries", 0)
	}

	r := &Registry{
		all:    make([]Nationality, len(entries)),
		byID:   make(map[int]int, len(entries)),
		bySlug: make(map[string]int, len(entries)),
	}
	copy(r.all, entries)

	for idx, n := range r.all {
		if n.Slug == "" {
			return nil, errors.NewValidationError(fmt.Sprintf("nationality %q has an empty slug", n.Name), "slug", n.ID)
		}
		if prev, dup := r.byID[n.ID]; dup {
			return nil, errors.NewValidationError(
				fmt.Sprintf("duplicate nationality id %d (%s, %s)", n.ID, r.all[prev].Name, n.Name), "id", n.ID)
		}
		if prev, dup := r.bySlug[n.Slug]; dup {
			return nil, errors.NewValidationError(
				fmt.Sprintf("slug %q shared by %s and %s", n.Slug, r.all[prev].Name, n.Name), "slug", n.Slug)
		}
		r.byID[n.ID] = idx
		r.bySlug[n.Slug] = idx
	}

	return r, nil
}

// MustDefaultRegistry builds the registry over DefaultNationalities.
func MustDefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultNationalities())
	if err != nil {
		panic(err)
	}
	return r
}

// All returns every nationality in catalog order.
func (r *Registry) All() []Nationality {
	out := make([]Nationality, len(r.all))
	copy(out, r.all)
	return out
}

// Len returns the catalog size.
func (r *Registry) Len() int {
	return len(r.all)
}

func (r *Registry) ByID(id int) (Nationality, error) {
	idx, ok := r.byID[id]
	if !ok {
		return Nationality{}, errors.NewNotFoundError("nationality", id)
	}
	return r.all[idx], nil
}

func (r *Registry) BySlug(slug string) (Nationality, error) {
	idx, ok := r.bySlug[slug]
	if !ok {
		return Nationality{}, errors.NewNotFoundError("nationality", slug)
	}
	return r.all[idx], nil
}

// Index returns the dense catalog position of id, for fixed per-nationality
// arrays.
func (r *Registry) Index(id int) (int, error) {
	idx, ok := r.byID[id]
	if !ok {
		return 0, errors.NewNotFoundError("nationality", id)
	}
	return idx, nil
}
