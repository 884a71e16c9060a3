package hierarchy

import "sync/atomic"

// Registry publishes the current tier Table to readers. Lookups never block;
// configuration refresh swaps in a complete replacement table.
type Registry struct {
	current atomic.Pointer[Table]
}

// NewRegistry returns a registry seeded with the given table.
func NewRegistry(t *Table) *Registry {
	r := &Registry{}
	r.current.Store(t)
	return r
}

// Current returns the table in effect. The returned table is immutable.
func (r *Registry) Current() *Table {
	return r.current.Load()
}

// Replace swaps in a new table wholesale. In-flight readers keep the table
// they loaded.
func (r *Registry) Replace(t *Table) {
	r.current.Store(t)
}
