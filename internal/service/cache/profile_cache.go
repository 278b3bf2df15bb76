package cache

import (
	"context"
	"fmt"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/kapu/player-generator-go/internal/constants"
	"github.com/kapu/player-generator-go/internal/domain"
)

// ProfileCache stores generated profiles by key. Implementations must be safe
// for concurrent use and treat failures as misses.
type ProfileCache interface {
	GetProfile(ctx context.Context, key string) (*domain.GeneratedProfile, bool)
	SetProfile(ctx context.Context, key string, profile *domain.GeneratedProfile)
}

// ProfileKey namespaces cached profiles by model version so that a retrained
// ensemble never serves stale entries.
func ProfileKey(modelVersion string, nationalityID int, seed uint64) string {
	return fmt.Sprintf("%s:%s:profile:%d:%d", constants.CacheConfig.KeyPrefix, modelVersion, nationalityID, seed)
}

// MemoryCache is an in-process LRU.
type MemoryCache struct {
	lru *lru.Cache[string, *domain.GeneratedProfile]
}

func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = 1024
	}
	c, err := lru.New[string, *domain.GeneratedProfile](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{lru: c}, nil
}

func (m *MemoryCache) GetProfile(_ context.Context, key string) (*domain.GeneratedProfile, bool) {
	return m.lru.Get(key)
}

func (m *MemoryCache) SetProfile(_ context.Context, key string, profile *domain.GeneratedProfile) {
	m.lru.Add(key, profile)
}

func (m *MemoryCache) Len() int {
	return m.lru.Len()
}

// Tiered checks caches in order and back-fills the earlier tiers on a hit in
// a later one. Sets go to every tier.
type Tiered struct {
	tiers []ProfileCache
}

func NewTiered(tiers ...ProfileCache) *Tiered {
	kept := make([]ProfileCache, 0, len(tiers))
	for _, tier := range tiers {
		if tier != nil {
			kept = append(kept, tier)
		}
	}
	return &Tiered{tiers: kept}
}

func (t *Tiered) GetProfile(ctx context.Context, key string) (*domain.GeneratedProfile, bool) {
	for i, tier := range t.tiers {
		if profile, ok := tier.GetProfile(ctx, key); ok {
			for j := 0; j < i; j++ {
				t.tiers[j].SetProfile(ctx, key, profile)
			}
			return profile, true
		}
	}
	return nil, false
}

func (t *Tiered) SetProfile(ctx context.Context, key string, profile *domain.GeneratedProfile) {
	for _, tier := range t.tiers {
		tier.SetProfile(ctx, key, profile)
	}
}
