package store

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ProgramCache stores compiled expression programs keyed by engine and
// expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type memoryProgramCache struct {
	items *gocache.Cache
}

// NewProgramCache returns an in-memory ProgramCache. Entries expire after
// ttl; a ttl of zero or less keeps them until the process exits.
func NewProgramCache(ttl time.Duration) ProgramCache {
	if ttl <= 0 {
		return &memoryProgramCache{items: gocache.New(gocache.NoExpiration, 0)}
	}
	return &memoryProgramCache{items: gocache.New(ttl, 2*ttl)}
}

func (c *memoryProgramCache) Get(key string) (any, bool) {
	return c.items.Get(key)
}

func (c *memoryProgramCache) Set(key string, value any) {
	c.items.SetDefault(key, value)
}
