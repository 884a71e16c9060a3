package hierarchy

import "fmt"

// Tier identifies one level of the entity specificity hierarchy. Higher
// values are more specific and win conflict resolution.
type Tier int

const (
	TierGlobal           Tier = 1
	TierSpecialtyDefault Tier = 2
	TierOrganization     Tier = 3
	TierLocation         Tier = 4
	TierGroup            Tier = 5
	TierUser             Tier = 6
)

func (t Tier) String() string {
	switch t {
	case TierGlobal:
		return "global"
	case TierSpecialtyDefault:
		return "specialty"
	case TierOrganization:
		return "organization"
	case TierLocation:
		return "location"
	case TierGroup:
		return "group"
	case TierUser:
		return "user"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// TierInfo carries the configuration for one tier: its display token and the
// numeric base added to item-local order indices so order values from
// different tiers never collide after merge.
type TierInfo struct {
	Tier      Tier   `json:"id"`
	Name      string `json:"name"`
	OrderBase int    `json:"orderBase"`
}

// Table is an immutable snapshot of the tier configuration. A Table is never
// mutated after construction; configuration refresh builds a new Table and
// swaps it into a Registry.
type Table struct {
	byTier map[Tier]TierInfo
	byName map[string]TierInfo
	infos  []TierInfo
}

// NewTable builds a Table from tier rows, typically loaded from the entity
// type catalog.
func NewTable(infos []TierInfo) *Table {
	t := &Table{
		byTier: make(map[Tier]TierInfo, len(infos)),
		byName: make(map[string]TierInfo, len(infos)),
		infos:  make([]TierInfo, len(infos)),
	}
	copy(t.infos, infos)
	for _, info := range infos {
		t.byTier[info.Tier] = info
		t.byName[info.Name] = info
	}
	return t
}

// DefaultTable returns the tier table shipped with the service. Deployments
// normally override the order bases from the entity type catalog.
func DefaultTable() *Table {
	return NewTable([]TierInfo{
		{Tier: TierGlobal, Name: "global", OrderBase: 0},
		{Tier: TierSpecialtyDefault, Name: "specialty", OrderBase: 100},
		{Tier: TierOrganization, Name: "organization", OrderBase: 200},
		{Tier: TierLocation, Name: "location", OrderBase: 300},
		{Tier: TierGroup, Name: "group", OrderBase: 400},
		{Tier: TierUser, Name: "user", OrderBase: 500},
	})
}

// ByName resolves an entity-type token to its tier configuration.
func (t *Table) ByName(name string) (TierInfo, bool) {
	info, ok := t.byName[name]
	return info, ok
}

// OrderBase returns the order base for a tier, or zero when the tier is not
// configured.
func (t *Table) OrderBase(tier Tier) int {
	return t.byTier[tier].OrderBase
}

// Tiers returns the configured tiers in the order they were loaded.
func (t *Table) Tiers() []TierInfo {
	out := make([]TierInfo, len(t.infos))
	copy(out, t.infos)
	return out
}

// Names returns the entity-type tokens for all configured tiers.
func (t *Table) Names() []string {
	out := make([]string, 0, len(t.infos))
	for _, info := range t.infos {
		out = append(out, info.Name)
	}
	return out
}
