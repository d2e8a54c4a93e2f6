package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"tai-backend/pkg/guardrail"
)

// PolicyCache keeps decoded guardrail configs hot so each chat turn avoids a
// guardrails lookup. Entries are invalidated when an instructor updates the
// policy and expire on their own as a safety net.
type PolicyCache struct {
	cache *cache.Cache
}

func NewPolicyCache() *PolicyCache {
	c := cache.New(5*time.Minute, 10*time.Minute)
	return &PolicyCache{
		cache: c,
	}
}

func (r *PolicyCache) Save(courseId uuid.UUID, policy guardrail.Policy) {
	r.cache.Set(courseId.String(), policy, cache.DefaultExpiration)
}

func (r *PolicyCache) Get(courseId uuid.UUID) (guardrail.Policy, bool) {
	if x, found := r.cache.Get(courseId.String()); found {
		return x.(guardrail.Policy), true
	}
	return guardrail.Policy{}, false
}

func (r *PolicyCache) Invalidate(courseId uuid.UUID) {
	r.cache.Delete(courseId.String())
}
