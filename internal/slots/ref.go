package slots

import "sync/atomic"

// Ref is a hot-swappable handle on the active catalog, updated when
// slots.yaml is reloaded. Readers always see a complete catalog.
type Ref struct {
	v atomic.Pointer[Catalog]
}

// NewRef creates a handle holding c.
func NewRef(c *Catalog) *Ref {
	r := &Ref{}
	r.v.Store(c)
	return r
}

// Load returns the active catalog.
func (r *Ref) Load() *Catalog {
	return r.v.Load()
}

// Store swaps in a new catalog.
func (r *Ref) Store(c *Catalog) {
	r.v.Store(c)
}
