package display

import (
	"github.com/chazu/contour/pkg/sketch"
	"github.com/deadsy/sdfx/sdf"
)

// Cache memoizes entity outlines and rebuilds one only when the entity's
// content hash changes. Install Release as the sketch's release hook so
// deleted entities drop their outlines.
type Cache struct {
	style   Style
	entries map[sketch.Entity]cacheEntry
}

type cacheEntry struct {
	hash    uint64
	outline sdf.SDF2
}

// NewCache returns an empty cache drawing with st.
func NewCache(st Style) *Cache {
	return &Cache{style: st, entries: make(map[sketch.Entity]cacheEntry)}
}

// Representation returns the cached outline of e, rebuilding it if e changed.
func (c *Cache) Representation(e sketch.Entity) (sdf.SDF2, error) {
	h := e.Hash()
	if ent, ok := c.entries[e]; ok && ent.hash == h {
		return ent.outline, nil
	}
	s, err := c.style.Representation(e)
	if err != nil {
		return nil, err
	}
	c.entries[e] = cacheEntry{hash: h, outline: s}
	return s, nil
}

// Release drops the outline of e.
func (c *Cache) Release(e sketch.Entity) { delete(c.entries, e) }

// Len returns the number of cached outlines.
func (c *Cache) Len() int { return len(c.entries) }
