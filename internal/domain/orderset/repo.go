package orderset

import (
	"context"

	"github.com/diverse/diverse/internal/domain/hierarchy"
)

// SectionOrderRow is a section override as persisted. Order carries the
// tier's base already applied.
type SectionOrderRow struct {
	SectionID int
	NumCols   int
	Column    int
	Order     int
	Hide      bool
}

// PanelOrderRow is a panel override as persisted.
type PanelOrderRow struct {
	PanelID int
	Order   int
	Hide    bool
}

// TestOrderRow is a test override as persisted. AssocID names the
// test-to-panel association the override applies to.
type TestOrderRow struct {
	AssocID int
	Order   int
	Hide    bool
}

// SectionOrderRepository defines persistence for section overrides. Fetch
// methods return raw rows from every tier; visibility filtering happens in
// the resolver.
type SectionOrderRepository interface {
	// FetchBySpecialty returns global rows plus rows for the given specialty.
	FetchBySpecialty(ctx context.Context, specialtyID int) ([]SectionOrder, error)
	// FetchAll returns every section override row with its specialty name.
	FetchAll(ctx context.Context, limit, offset int) ([]SectionOrder, error)
	// FetchByAccount returns section override rows authored at the user tier
	// by one account, with specialty names.
	FetchByAccount(ctx context.Context, accountID string) ([]SectionOrder, error)
	Insert(ctx context.Context, scope hierarchy.Scope, rows []SectionOrderRow) error
	// Delete removes all rows for the scope and reports how many went away.
	Delete(ctx context.Context, scope hierarchy.Scope) (int64, error)
}

// PanelOrderRepository defines persistence for panel overrides.
type PanelOrderRepository interface {
	// FetchBySection returns global rows plus specialty rows for panels in
	// the given section. A zero section returns panels from every section.
	FetchBySection(ctx context.Context, sectionID, specialtyID int) ([]PanelOrder, error)
	Insert(ctx context.Context, scope hierarchy.Scope, rows []PanelOrderRow) error
	// Delete removes the scope's rows for panels in the given section, or in
	// every section when sectionID is zero.
	Delete(ctx context.Context, scope hierarchy.Scope, sectionID int) (int64, error)
}

// TestOrderRepository defines persistence for test overrides.
type TestOrderRepository interface {
	// FetchByPanel returns global rows plus specialty rows for tests
	// associated with the given panel.
	FetchByPanel(ctx context.Context, panelID, specialtyID int) ([]TestOrder, error)
	// FetchForProblem returns global rows plus specialty rows for tests
	// linked to the given problem concept, with reference ranges narrowed to
	// the patient filter. Specialty rows are limited to associations carrying
	// the given facility type.
	FetchForProblem(ctx context.Context, specialtyID int, problemCID, facTypeID string, f PatientFilter) ([]TestOrder, error)
	Insert(ctx context.Context, scope hierarchy.Scope, rows []TestOrderRow) error
	// Delete removes the scope's rows for tests in the given panel, or in
	// every panel when panelID is zero.
	Delete(ctx context.Context, scope hierarchy.Scope, panelID int) (int64, error)
}
