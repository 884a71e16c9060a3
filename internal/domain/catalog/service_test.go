package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/diverse/diverse/internal/domain/hierarchy"
)

type mockSectionRepo struct{ sections []Section }

func (m *mockSectionRepo) List(_ context.Context) ([]Section, error) { return m.sections, nil }

type mockPanelRepo struct {
	panels []Panel
	nextID int
}

func (m *mockPanelRepo) List(_ context.Context) ([]Panel, error) { return m.panels, nil }

func (m *mockPanelRepo) Create(_ context.Context, p *Panel, _ string) error {
	m.nextID++
	p.ID = m.nextID
	m.panels = append(m.panels, *p)
	return nil
}

func (m *mockPanelRepo) Update(_ context.Context, id int, name string, graphable bool) (int64, error) {
	for i := range m.panels {
		if m.panels[i].ID == id {
			m.panels[i].Name = name
			m.panels[i].Graphable = graphable
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockPanelRepo) Delete(_ context.Context, id int) (int64, error) {
	for i := range m.panels {
		if m.panels[i].ID == id {
			m.panels = append(m.panels[:i], m.panels[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

type mockSpecialtyRepo struct {
	specialties []Specialty
	nextID      int
}

func (m *mockSpecialtyRepo) List(_ context.Context) ([]Specialty, error) { return m.specialties, nil }

func (m *mockSpecialtyRepo) Create(_ context.Context, name, _ string) (int, error) {
	m.nextID++
	m.specialties = append(m.specialties, Specialty{ID: m.nextID, Name: name})
	return m.nextID, nil
}

func (m *mockSpecialtyRepo) Update(_ context.Context, id int, name string) (int64, error) {
	for i := range m.specialties {
		if m.specialties[i].ID == id {
			m.specialties[i].Name = name
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockSpecialtyRepo) Delete(_ context.Context, id int) (int64, error) {
	for i := range m.specialties {
		if m.specialties[i].ID == id {
			m.specialties = append(m.specialties[:i], m.specialties[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

type mockTestNameRepo struct{ names map[string]string }

func (m *mockTestNameRepo) Get(_ context.Context, loinc string) (string, error) {
	name, ok := m.names[loinc]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return name, nil
}

func (m *mockTestNameRepo) Create(_ context.Context, loinc, name, _ string) error {
	m.names[loinc] = name
	return nil
}

func (m *mockTestNameRepo) Update(_ context.Context, loinc, name string) (int64, error) {
	if _, ok := m.names[loinc]; !ok {
		return 0, nil
	}
	m.names[loinc] = name
	return 1, nil
}

func (m *mockTestNameRepo) Delete(_ context.Context, loinc string) (int64, error) {
	if _, ok := m.names[loinc]; !ok {
		return 0, nil
	}
	delete(m.names, loinc)
	return 1, nil
}

func (m *mockTestNameRepo) Search(_ context.Context, term string, limit int) ([]TestMatch, error) {
	var out []TestMatch
	for loinc, name := range m.names {
		out = append(out, TestMatch{Name: name, Loinc: loinc})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type mockAssocRepo struct {
	assocs map[int]TestAssoc
	nextID int
}

func (m *mockAssocRepo) Create(_ context.Context, a *TestAssoc) error {
	m.nextID++
	a.ID = m.nextID
	m.assocs[a.ID] = *a
	return nil
}

func (m *mockAssocRepo) Delete(_ context.Context, id int) (int64, error) {
	if _, ok := m.assocs[id]; !ok {
		return 0, nil
	}
	delete(m.assocs, id)
	return 1, nil
}

type mockEntityTypeRepo struct{ infos []hierarchy.TierInfo }

func (m *mockEntityTypeRepo) List(_ context.Context) ([]hierarchy.TierInfo, error) {
	return m.infos, nil
}

type mockMembers struct{ members map[string]hierarchy.Membership }

func (m *mockMembers) Membership(_ context.Context, accountID string) (hierarchy.Membership, error) {
	return m.members[accountID], nil
}

func newTestCatalog() (*Service, *mockSpecialtyRepo, *hierarchy.Registry) {
	sections := &mockSectionRepo{sections: []Section{{ID: 1, Name: "Vitals"}, {ID: 2, Name: "Tests"}}}
	panels := &mockPanelRepo{panels: []Panel{{ID: 1, SecID: 2, Name: "Lipids", Graphable: true}}, nextID: 1}
	specialties := &mockSpecialtyRepo{specialties: []Specialty{{ID: 1, Name: "Cardiology"}}, nextID: 1}
	tiers := hierarchy.NewRegistry(hierarchy.DefaultTable())
	members := &mockMembers{members: map[string]hierarchy.Membership{
		"acct-1": {AccountID: "acct-1", FacTypeID: "hospital"},
	}}
	svc := NewService(sections, panels, specialties,
		&mockTestNameRepo{names: map[string]string{"2093-3": "Cholesterol"}},
		&mockAssocRepo{assocs: map[int]TestAssoc{}},
		&mockEntityTypeRepo{infos: []hierarchy.TierInfo{
			{Tier: hierarchy.TierGlobal, Name: "global", OrderBase: 0},
			{Tier: hierarchy.TierUser, Name: "user", OrderBase: 900},
		}},
		members, tiers, 20)
	return svc, specialties, tiers
}

func TestLoadBuildsSnapshotsAndTierTable(t *testing.T) {
	svc, _, tiers := newTestCatalog()

	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id, ok := svc.SectionID("Tests"); !ok || id != 2 {
		t.Errorf("expected Tests section id 2, got %d (%v)", id, ok)
	}
	if got := svc.Panels()["Tests"]; len(got) != 1 || got[0].Name != "Lipids" {
		t.Errorf("unexpected panels snapshot %+v", svc.Panels())
	}
	if got := tiers.Current().OrderBase(hierarchy.TierUser); got != 900 {
		t.Errorf("expected tier table replaced from repo, got base %d", got)
	}
}

func TestCreateSpecialtyReloadsSnapshot(t *testing.T) {
	svc, _, _ := newTestCatalog()
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id, err := svc.CreateSpecialty(context.Background(), "Nephrology", "acct-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 2 {
		t.Errorf("expected new id 2, got %d", id)
	}
	if got := svc.Specialties(); len(got) != 2 {
		t.Errorf("expected snapshot reloaded with 2 specialties, got %d", len(got))
	}
}

func TestUpdateSpecialtyNotFound(t *testing.T) {
	svc, _, _ := newTestCatalog()
	err := svc.UpdateSpecialty(context.Background(), 99, "Oncology")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTestNameLookup(t *testing.T) {
	svc, _, _ := newTestCatalog()

	name, err := svc.TestName(context.Background(), "2093-3")
	if err != nil || name != "Cholesterol" {
		t.Errorf("expected Cholesterol, got %q (%v)", name, err)
	}
	if _, err := svc.TestName(context.Background(), "0-0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateTestAssocValidates(t *testing.T) {
	svc, _, _ := newTestCatalog()

	a := TestAssoc{Loinc: "2093-3", CID: "55822004", PanelID: 1, SpecID: 1}
	if err := svc.CreateTestAssoc(context.Background(), &a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID == 0 {
		t.Error("expected assoc id assigned")
	}
	if err := svc.CreateTestAssoc(context.Background(), &TestAssoc{CID: "x"}); err == nil {
		t.Error("expected validation error for missing loinc and panel")
	}
}

func TestCreateTestAssocStampsFacilityType(t *testing.T) {
	svc, _, _ := newTestCatalog()

	a := TestAssoc{Loinc: "2093-3", CID: "55822004", PanelID: 1, SpecID: 1, CreatedBy: "acct-1"}
	if err := svc.CreateTestAssoc(context.Background(), &a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.FacTypeID != "hospital" {
		t.Errorf("expected facility type of the creator, got %q", a.FacTypeID)
	}

	b := TestAssoc{Loinc: "2093-3", CID: "55822004", PanelID: 1, SpecID: 1, CreatedBy: "nobody"}
	if err := svc.CreateTestAssoc(context.Background(), &b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.FacTypeID != "" {
		t.Errorf("expected empty facility type for unknown creator, got %q", b.FacTypeID)
	}
}

func TestSearchTestsRequiresTerm(t *testing.T) {
	svc, _, _ := newTestCatalog()
	if _, err := svc.SearchTests(context.Background(), ""); err == nil {
		t.Error("expected error for empty search term")
	}
}

func TestEntityTypesReflectTierTable(t *testing.T) {
	svc, _, _ := newTestCatalog()
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := svc.EntityTypes()
	if len(got) != 2 || got[0] != "global" || got[1] != "user" {
		t.Errorf("unexpected entity types %v", got)
	}
}
