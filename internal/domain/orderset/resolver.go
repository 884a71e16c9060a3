package orderset

import "github.com/diverse/diverse/internal/domain/hierarchy"

// Resolvable is a raw override row subject to hierarchy resolution.
type Resolvable interface {
	// Key identifies the item the override applies to. Rows with the same key
	// from different tiers compete.
	Key() string
	// ScopeOf reports who authored the row.
	ScopeOf() hierarchy.Scope
}

// Resolve filters raw override rows down to the ones visible to the user and
// keeps, per item, the row from the most specific tier. Rows from scopes not
// covered by the visible set are dropped before resolution, so an invisible
// high-tier row never shadows a visible low-tier one.
//
// Output preserves the order items were first seen in the input. When two
// visible rows for the same item share a tier the first one wins, so the
// result is deterministic for deterministic input.
func Resolve[R Resolvable](rows []R, visible []hierarchy.Scope) []R {
	winners := make(map[string]int, len(rows))
	out := make([]R, 0, len(rows))
	for _, r := range rows {
		if !r.ScopeOf().Visible(visible) {
			continue
		}
		key := r.Key()
		at, seen := winners[key]
		if !seen {
			winners[key] = len(out)
			out = append(out, r)
			continue
		}
		if r.ScopeOf().Tier > out[at].ScopeOf().Tier {
			out[at] = r
		}
	}
	return out
}
