package orderset

import (
	"context"
	"errors"
	"testing"

	"github.com/diverse/diverse/internal/domain/hierarchy"
)

// --- Mock Repositories ---

type mockSectionRepo struct {
	rows []SectionOrder
}

func (m *mockSectionRepo) FetchBySpecialty(_ context.Context, specialtyID int) ([]SectionOrder, error) {
	var out []SectionOrder
	for _, r := range m.rows {
		if r.Scope.Tier == hierarchy.TierGlobal || r.Scope.SpecialtyID == specialtyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockSectionRepo) FetchAll(_ context.Context, limit, offset int) ([]SectionOrder, error) {
	return m.rows, nil
}

func (m *mockSectionRepo) FetchByAccount(_ context.Context, accountID string) ([]SectionOrder, error) {
	var out []SectionOrder
	for _, r := range m.rows {
		if r.Scope.Tier == hierarchy.TierUser && r.Scope.EntityID == accountID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockSectionRepo) Insert(_ context.Context, scope hierarchy.Scope, rows []SectionOrderRow) error {
	for _, row := range rows {
		m.rows = append(m.rows, SectionOrder{
			SectionID: row.SectionID,
			NumCols:   row.NumCols,
			Column:    row.Column,
			Order:     row.Order,
			Hide:      row.Hide,
			Scope:     scope,
		})
	}
	return nil
}

func (m *mockSectionRepo) Delete(_ context.Context, scope hierarchy.Scope) (int64, error) {
	var kept []SectionOrder
	var n int64
	for _, r := range m.rows {
		if r.Scope == scope {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}

type mockPanelRepo struct {
	rows []PanelOrder
}

func (m *mockPanelRepo) FetchBySection(_ context.Context, sectionID, specialtyID int) ([]PanelOrder, error) {
	var out []PanelOrder
	for _, r := range m.rows {
		if r.Scope.Tier == hierarchy.TierGlobal || r.Scope.SpecialtyID == specialtyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockPanelRepo) Insert(_ context.Context, scope hierarchy.Scope, rows []PanelOrderRow) error {
	for _, row := range rows {
		m.rows = append(m.rows, PanelOrder{PanelID: row.PanelID, Order: row.Order, Hide: row.Hide, Scope: scope})
	}
	return nil
}

func (m *mockPanelRepo) Delete(_ context.Context, scope hierarchy.Scope, sectionID int) (int64, error) {
	var kept []PanelOrder
	var n int64
	for _, r := range m.rows {
		if r.Scope == scope {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}

type mockTestRepo struct {
	rows []TestOrder
	// facTypes maps assoc ids to the facility type stamped on the
	// association; absent entries read as "".
	facTypes map[int]string
}

func (m *mockTestRepo) FetchByPanel(_ context.Context, panelID, specialtyID int) ([]TestOrder, error) {
	var out []TestOrder
	for _, r := range m.rows {
		if r.PanelID != panelID {
			continue
		}
		if r.Scope.Tier == hierarchy.TierGlobal || r.Scope.SpecialtyID == specialtyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockTestRepo) FetchForProblem(_ context.Context, specialtyID int, problemCID, facTypeID string, _ PatientFilter) ([]TestOrder, error) {
	var out []TestOrder
	for _, r := range m.rows {
		if r.Scope.Tier == hierarchy.TierGlobal {
			out = append(out, r)
			continue
		}
		if r.Scope.SpecialtyID == specialtyID && m.facTypes[r.AssocID] == facTypeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockTestRepo) Insert(_ context.Context, scope hierarchy.Scope, rows []TestOrderRow) error {
	for _, row := range rows {
		m.rows = append(m.rows, TestOrder{AssocID: row.AssocID, Order: row.Order, Hide: row.Hide, Scope: scope})
	}
	return nil
}

func (m *mockTestRepo) Delete(_ context.Context, scope hierarchy.Scope, panelID int) (int64, error) {
	var kept []TestOrder
	var n int64
	for _, r := range m.rows {
		if r.Scope == scope {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}

type mockIdentity struct {
	m hierarchy.Membership
}

func (m *mockIdentity) Membership(_ context.Context, accountID string) (hierarchy.Membership, error) {
	out := m.m
	out.AccountID = accountID
	return out, nil
}

type mockTx struct {
	calls int
}

func (m *mockTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

func newTestService(sections *mockSectionRepo, panels *mockPanelRepo, tests *mockTestRepo) (*Service, *mockTx) {
	tx := &mockTx{}
	identity := &mockIdentity{m: hierarchy.Membership{OrgID: "org-1", LocID: "loc-1", GroupID: "grp-1"}}
	svc := NewService(sections, panels, tests, identity, hierarchy.NewRegistry(hierarchy.DefaultTable()), tx)
	return svc, tx
}

// --- Tests ---

func TestSectionOrdersetResolvesAndSorts(t *testing.T) {
	sections := &mockSectionRepo{rows: []SectionOrder{
		{SectionID: 2, Name: "Tests", Order: 2, Scope: hierarchy.Scope{Tier: hierarchy.TierGlobal}},
		{SectionID: 1, Name: "Vitals", Order: 1, Scope: hierarchy.Scope{Tier: hierarchy.TierGlobal}},
		{SectionID: 2, Name: "Tests", Order: 500, Scope: hierarchy.Scope{Tier: hierarchy.TierUser, EntityID: "acct-1", SpecialtyID: 5}},
	}}
	svc, _ := newTestService(sections, &mockPanelRepo{}, &mockTestRepo{})

	got, err := svc.SectionOrderset(context.Background(), "acct-1", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(got))
	}
	if got[0].SectionID != 1 || got[1].SectionID != 2 {
		t.Errorf("expected order sorted ascending, got %d then %d", got[0].SectionID, got[1].SectionID)
	}
	if got[1].Order != 500 {
		t.Errorf("expected user override order 500, got %d", got[1].Order)
	}
}

func TestReplaceSectionOrdersetAppliesOrderBase(t *testing.T) {
	sections := &mockSectionRepo{}
	svc, tx := newTestService(sections, &mockPanelRepo{}, &mockTestRepo{})

	err := svc.ReplaceSectionOrderset(context.Background(), "user", "acct-1", 5, 2, []SectionPlacement{
		{SectionID: 1, Order: 3, Column: 2},
		{SectionID: 2, Order: 1, Column: 1, Hide: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.calls != 1 {
		t.Errorf("expected 1 transaction, got %d", tx.calls)
	}
	if len(sections.rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(sections.rows))
	}
	if sections.rows[0].Order != 503 {
		t.Errorf("expected order 503 for declared order 3 at user tier, got %d", sections.rows[0].Order)
	}
	if sections.rows[1].Order != 501 || !sections.rows[1].Hide {
		t.Errorf("unexpected second row %+v", sections.rows[1])
	}
	if sections.rows[0].NumCols != 2 {
		t.Errorf("expected num cols 2, got %d", sections.rows[0].NumCols)
	}
}

func TestReplaceSectionOrdersetReplacesExisting(t *testing.T) {
	scope := hierarchy.Scope{Tier: hierarchy.TierUser, EntityID: "acct-1", SpecialtyID: 5}
	sections := &mockSectionRepo{rows: []SectionOrder{
		{SectionID: 9, Order: 509, Scope: scope},
		{SectionID: 1, Order: 1, Scope: hierarchy.Scope{Tier: hierarchy.TierGlobal}},
	}}
	svc, _ := newTestService(sections, &mockPanelRepo{}, &mockTestRepo{})

	err := svc.ReplaceSectionOrderset(context.Background(), "user", "acct-1", 5, 1, []SectionPlacement{
		{SectionID: 2, Order: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sections.rows) != 2 {
		t.Fatalf("expected old scope rows replaced, got %d rows", len(sections.rows))
	}
	for _, r := range sections.rows {
		if r.SectionID == 9 {
			t.Error("expected the prior scope row to be gone")
		}
	}
}

func TestReplaceWithNoPriorRowsSucceeds(t *testing.T) {
	svc, _ := newTestService(&mockSectionRepo{}, &mockPanelRepo{}, &mockTestRepo{})
	err := svc.ReplaceSectionOrderset(context.Background(), "organization", "org-1", 5, 1, []SectionPlacement{{SectionID: 1, Order: 1}})
	if err != nil {
		t.Fatalf("expected replace with no prior rows to succeed, got %v", err)
	}
}

func TestReplaceUnknownEntityType(t *testing.T) {
	svc, _ := newTestService(&mockSectionRepo{}, &mockPanelRepo{}, &mockTestRepo{})
	err := svc.ReplaceSectionOrderset(context.Background(), "galaxy", "x", 5, 1, nil)
	if !errors.Is(err, ErrInvalidEntityType) {
		t.Errorf("expected ErrInvalidEntityType, got %v", err)
	}
}

func TestReplaceEntityTierRequiresEntityID(t *testing.T) {
	svc, _ := newTestService(&mockSectionRepo{}, &mockPanelRepo{}, &mockTestRepo{})
	err := svc.ReplaceSectionOrderset(context.Background(), "organization", "", 5, 1, nil)
	if !errors.Is(err, ErrInvalidEntityType) {
		t.Errorf("expected ErrInvalidEntityType, got %v", err)
	}
}

func TestDeleteOrdersetNotFound(t *testing.T) {
	svc, _ := newTestService(&mockSectionRepo{}, &mockPanelRepo{}, &mockTestRepo{})
	err := svc.DeleteSectionOrderset(context.Background(), "user", "acct-1", 5)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteOrdersetRemovesScope(t *testing.T) {
	scope := hierarchy.Scope{Tier: hierarchy.TierUser, EntityID: "acct-1", SpecialtyID: 5}
	sections := &mockSectionRepo{rows: []SectionOrder{{SectionID: 1, Scope: scope}}}
	svc, _ := newTestService(sections, &mockPanelRepo{}, &mockTestRepo{})

	if err := svc.DeleteSectionOrderset(context.Background(), "user", "acct-1", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sections.rows) != 0 {
		t.Errorf("expected rows removed, %d remain", len(sections.rows))
	}
}

func TestReplacePanelOrdersetUsesArrayIndex(t *testing.T) {
	panels := &mockPanelRepo{}
	svc, _ := newTestService(&mockSectionRepo{}, panels, &mockTestRepo{})

	err := svc.ReplacePanelOrderset(context.Background(), "specialty", "", 5, 1, []PanelPlacement{
		{PanelID: 7},
		{PanelID: 3, Hide: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(panels.rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(panels.rows))
	}
	if panels.rows[0].Order != 100 || panels.rows[1].Order != 101 {
		t.Errorf("expected orders 100 and 101, got %d and %d", panels.rows[0].Order, panels.rows[1].Order)
	}
	if panels.rows[0].Scope.Tier != hierarchy.TierSpecialtyDefault {
		t.Errorf("expected specialty tier, got %v", panels.rows[0].Scope.Tier)
	}
}

func TestReplaceTestOrdersetUsesArrayIndex(t *testing.T) {
	tests := &mockTestRepo{}
	svc, _ := newTestService(&mockSectionRepo{}, &mockPanelRepo{}, tests)

	err := svc.ReplaceTestOrderset(context.Background(), "group", "grp-1", 5, 1, []TestPlacement{
		{AssocID: 11},
		{AssocID: 12},
		{AssocID: 13, Hide: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tests.rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(tests.rows))
	}
	if tests.rows[2].Order != 402 || !tests.rows[2].Hide {
		t.Errorf("unexpected third row %+v", tests.rows[2])
	}
}

func TestGlobalWriteIgnoresEntity(t *testing.T) {
	sections := &mockSectionRepo{}
	svc, _ := newTestService(sections, &mockPanelRepo{}, &mockTestRepo{})

	err := svc.ReplaceSectionOrderset(context.Background(), "global", "ignored", 5, 1, []SectionPlacement{{SectionID: 1, Order: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := sections.rows[0].Scope
	if got.EntityID != "" || got.SpecialtyID != 0 {
		t.Errorf("expected bare global scope, got %+v", got)
	}
	if sections.rows[0].Order != 1 {
		t.Errorf("expected order 1 at global tier, got %d", sections.rows[0].Order)
	}
}

func TestProblemTestsFilteredByFacilityType(t *testing.T) {
	tests := &mockTestRepo{
		rows: []TestOrder{
			{Loinc: "2093-3", AssocID: 1, Order: 1, Scope: hierarchy.Scope{Tier: hierarchy.TierGlobal}},
			{Loinc: "2571-8", AssocID: 2, Order: 101, Scope: hierarchy.Scope{Tier: hierarchy.TierSpecialtyDefault, SpecialtyID: 5}},
			{Loinc: "2085-9", AssocID: 3, Order: 102, Scope: hierarchy.Scope{Tier: hierarchy.TierSpecialtyDefault, SpecialtyID: 5}},
		},
		facTypes: map[int]string{2: "hospital", 3: "clinic"},
	}
	identity := &mockIdentity{m: hierarchy.Membership{FacTypeID: "hospital"}}
	svc := NewService(&mockSectionRepo{}, &mockPanelRepo{}, tests, identity, hierarchy.NewRegistry(hierarchy.DefaultTable()), &mockTx{})

	got, err := svc.ResolvedTestsForProblem(context.Background(), "acct-1", 5, "55822004", PatientFilter{Gender: "F", Age: 40})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected global row plus matching facility row, got %d rows", len(got))
	}
	if got[0].AssocID != 1 || got[1].AssocID != 2 {
		t.Errorf("expected assocs 1 and 2, got %d and %d", got[0].AssocID, got[1].AssocID)
	}
	for _, r := range got {
		if r.Loinc == "2085-9" {
			t.Error("expected other facility's association to be filtered out")
		}
	}
}
