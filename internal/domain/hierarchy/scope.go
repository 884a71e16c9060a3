package hierarchy

// Scope identifies who authored an override and for which specialty. EntityID
// is empty at the global and specialty tiers, which apply to everyone.
type Scope struct {
	Tier        Tier   `json:"etId"`
	EntityID    string `json:"entityId,omitempty"`
	SpecialtyID int    `json:"specId,omitempty"`
}

// Membership is the set of entity identifiers a user belongs to, resolved
// from the account record. Empty fields mean the user has no entity at that
// tier and overrides written there are invisible to them. FacTypeID is the
// facility type of the account and scopes which test associations it sees.
type Membership struct {
	AccountID string
	OrgID     string
	LocID     string
	GroupID   string
	FacTypeID string
}

// VisibleScopes builds the scopes whose overrides the user may see for one
// specialty, from least to most specific.
func VisibleScopes(m Membership, specialtyID int) []Scope {
	scopes := []Scope{
		{Tier: TierGlobal},
		{Tier: TierSpecialtyDefault, SpecialtyID: specialtyID},
	}
	if m.OrgID != "" {
		scopes = append(scopes, Scope{Tier: TierOrganization, EntityID: m.OrgID, SpecialtyID: specialtyID})
	}
	if m.LocID != "" {
		scopes = append(scopes, Scope{Tier: TierLocation, EntityID: m.LocID, SpecialtyID: specialtyID})
	}
	if m.GroupID != "" {
		scopes = append(scopes, Scope{Tier: TierGroup, EntityID: m.GroupID, SpecialtyID: specialtyID})
	}
	if m.AccountID != "" {
		scopes = append(scopes, Scope{Tier: TierUser, EntityID: m.AccountID, SpecialtyID: specialtyID})
	}
	return scopes
}

// CoveredBy reports whether a record written at scope s is visible under the
// given visible scope. Global records match regardless of specialty; every
// other tier requires the specialty to match, and the entity-bound tiers
// additionally require the entity to match.
func (s Scope) CoveredBy(v Scope) bool {
	if s.Tier != v.Tier {
		return false
	}
	if s.Tier == TierGlobal {
		return true
	}
	if s.SpecialtyID != v.SpecialtyID {
		return false
	}
	if s.Tier == TierSpecialtyDefault {
		return true
	}
	return s.EntityID == v.EntityID
}

// Visible reports whether a record scope is covered by any of the visible
// scopes.
func (s Scope) Visible(visible []Scope) bool {
	for _, v := range visible {
		if s.CoveredBy(v) {
			return true
		}
	}
	return false
}
