package orderset

import (
	"testing"

	"github.com/diverse/diverse/internal/domain/hierarchy"
)

var testVisible = hierarchy.VisibleScopes(hierarchy.Membership{
	AccountID: "acct-1",
	OrgID:     "org-1",
	LocID:     "loc-1",
	GroupID:   "grp-1",
}, 5)

func TestResolveHigherTierWins(t *testing.T) {
	rows := []SectionOrder{
		{SectionID: 1, Name: "Vitals", Order: 1, Scope: hierarchy.Scope{Tier: hierarchy.TierGlobal}},
		{SectionID: 1, Name: "Vitals", Order: 503, Hide: true, Scope: hierarchy.Scope{Tier: hierarchy.TierUser, EntityID: "acct-1", SpecialtyID: 5}},
		{SectionID: 2, Name: "Tests", Order: 2, Scope: hierarchy.Scope{Tier: hierarchy.TierGlobal}},
	}

	got := Resolve(rows, testVisible)
	if len(got) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(got))
	}
	if got[0].SectionID != 1 || got[0].Order != 503 || !got[0].Hide {
		t.Errorf("expected user override to win for section 1, got %+v", got[0])
	}
	if got[1].SectionID != 2 || got[1].Order != 2 {
		t.Errorf("expected global row for section 2, got %+v", got[1])
	}
}

func TestResolveInvisibleRowsNeverShadow(t *testing.T) {
	// A user-tier row for someone else must not beat the visible global row.
	rows := []TestOrder{
		{Loinc: "2345-7", Order: 10, Scope: hierarchy.Scope{Tier: hierarchy.TierGlobal}},
		{Loinc: "2345-7", Order: 599, Hide: true, Scope: hierarchy.Scope{Tier: hierarchy.TierUser, EntityID: "someone-else", SpecialtyID: 5}},
	}

	got := Resolve(rows, testVisible)
	if len(got) != 1 {
		t.Fatalf("expected 1 test, got %d", len(got))
	}
	if got[0].Order != 10 || got[0].Hide {
		t.Errorf("expected global row to survive, got %+v", got[0])
	}
}

func TestResolveGlobalIgnoresSpecialty(t *testing.T) {
	rows := []PanelOrder{
		{PanelID: 1, Order: 1, Scope: hierarchy.Scope{Tier: hierarchy.TierGlobal, SpecialtyID: 99}},
		{PanelID: 2, Order: 2, Scope: hierarchy.Scope{Tier: hierarchy.TierSpecialtyDefault, SpecialtyID: 99}},
	}

	got := Resolve(rows, testVisible)
	if len(got) != 1 {
		t.Fatalf("expected 1 panel, got %d", len(got))
	}
	if got[0].PanelID != 1 {
		t.Errorf("expected the global panel, got %+v", got[0])
	}
}

func TestResolveEqualTierFirstWins(t *testing.T) {
	rows := []SectionOrder{
		{SectionID: 1, Column: 1, Scope: hierarchy.Scope{Tier: hierarchy.TierGlobal}},
		{SectionID: 1, Column: 2, Scope: hierarchy.Scope{Tier: hierarchy.TierGlobal}},
	}

	got := Resolve(rows, testVisible)
	if len(got) != 1 {
		t.Fatalf("expected 1 section, got %d", len(got))
	}
	if got[0].Column != 1 {
		t.Errorf("expected first row to win the tie, got column %d", got[0].Column)
	}
}

func TestResolveMixedTiers(t *testing.T) {
	scope := func(tier hierarchy.Tier, entity string) hierarchy.Scope {
		return hierarchy.Scope{Tier: tier, EntityID: entity, SpecialtyID: 5}
	}
	rows := []TestOrder{
		{Loinc: "718-7", Order: 1, Scope: hierarchy.Scope{Tier: hierarchy.TierGlobal}},
		{Loinc: "718-7", Order: 210, Scope: scope(hierarchy.TierOrganization, "org-1")},
		{Loinc: "718-7", Order: 310, Scope: scope(hierarchy.TierLocation, "loc-1")},
		{Loinc: "4544-3", Order: 2, Scope: hierarchy.Scope{Tier: hierarchy.TierGlobal}},
		{Loinc: "4544-3", Order: 410, Hide: true, Scope: scope(hierarchy.TierGroup, "grp-1")},
	}

	got := Resolve(rows, testVisible)
	if len(got) != 2 {
		t.Fatalf("expected 2 tests, got %d", len(got))
	}
	if got[0].Loinc != "718-7" || got[0].Order != 310 {
		t.Errorf("expected location override for 718-7, got %+v", got[0])
	}
	if got[1].Loinc != "4544-3" || !got[1].Hide {
		t.Errorf("expected hidden group override for 4544-3, got %+v", got[1])
	}
}

func TestResolveEmptyInput(t *testing.T) {
	got := Resolve([]SectionOrder{}, testVisible)
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d rows", len(got))
	}
}
