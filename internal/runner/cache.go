package runner

import (
	"github.com/cespare/xxhash/v2"
	"github.com/cybertec-postgresql/pgsubst/pkg/pgsubst"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of parsed templates a Renderer keeps
const DefaultCacheSize = 256

// TemplateCache keeps parsed templates keyed by a hash of their text, so
// identical templates and unchanged files in watch mode are scanned once
type TemplateCache struct {
	cache *lru.Cache[uint64, *pgsubst.Template]
}

// NewTemplateCache creates a cache holding at most size templates
func NewTemplateCache(size int) *TemplateCache {
	if size < 1 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[uint64, *pgsubst.Template](size)
	return &TemplateCache{cache: cache}
}

// Get returns the parsed template for content, parsing it on a miss
func (c *TemplateCache) Get(content string) *pgsubst.Template {
	key := xxhash.Sum64String(content)
	if tmpl, ok := c.cache.Get(key); ok && tmpl.Source() == content {
		return tmpl
	}

	tmpl := pgsubst.Parse(content)
	c.cache.Add(key, tmpl)
	return tmpl
}

// Len returns the number of cached templates
func (c *TemplateCache) Len() int {
	return c.cache.Len()
}
