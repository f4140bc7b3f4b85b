package memory

import (
	"time"

	"ai-synthesis-be/pkg/ai/synthesis"

	"github.com/patrickmn/go-cache"
)

// SynthesisRepository keeps recently produced syntheses for lookup by id
type SynthesisRepository struct {
	cache *cache.Cache
}

func NewSynthesisRepository(ttl time.Duration) *SynthesisRepository {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	// purge interval: a third of the ttl, capped at one minute
	cleanup := ttl / 3
	if cleanup > time.Minute {
		cleanup = time.Minute
	}
	return &SynthesisRepository{
		cache: cache.New(ttl, cleanup),
	}
}

func (r *SynthesisRepository) Save(resp *synthesis.SynthesizedResponse) {
	r.cache.Set(resp.SynthesisID, resp, cache.DefaultExpiration)
}

func (r *SynthesisRepository) Get(id string) (*synthesis.SynthesizedResponse, bool) {
	if x, found := r.cache.Get(id); found {
		return x.(*synthesis.SynthesizedResponse), true
	}
	return nil, false
}

func (r *SynthesisRepository) Delete(id string) {
	r.cache.Delete(id)
}

func (r *SynthesisRepository) Count() int {
	return r.cache.ItemCount()
}
