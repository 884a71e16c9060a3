package catalog

import (
	"context"

	"github.com/diverse/diverse/internal/domain/hierarchy"
)

// SectionRepository defines persistence for display sections.
type SectionRepository interface {
	List(ctx context.Context) ([]Section, error)
}

// PanelRepository defines persistence for panels.
type PanelRepository interface {
	List(ctx context.Context) ([]Panel, error)
	Create(ctx context.Context, p *Panel, createdBy string) error
	Update(ctx context.Context, id int, name string, graphable bool) (int64, error)
	Delete(ctx context.Context, id int) (int64, error)
}

// SpecialtyRepository defines persistence for specialties.
type SpecialtyRepository interface {
	List(ctx context.Context) ([]Specialty, error)
	Create(ctx context.Context, name, createdBy string) (int, error)
	Update(ctx context.Context, id int, name string) (int64, error)
	Delete(ctx context.Context, id int) (int64, error)
}

// TestNameRepository defines persistence for preferred test names. The
// fallback short names live in the LOINC reference table; Search consults
// both, preferring the overrides.
type TestNameRepository interface {
	Get(ctx context.Context, loinc string) (string, error)
	Create(ctx context.Context, loinc, name, createdBy string) error
	Update(ctx context.Context, loinc, name string) (int64, error)
	Delete(ctx context.Context, loinc string) (int64, error)
	Search(ctx context.Context, term string, limit int) ([]TestMatch, error)
}

// TestAssocRepository defines persistence for test-to-panel associations.
type TestAssocRepository interface {
	Create(ctx context.Context, a *TestAssoc) error
	Delete(ctx context.Context, id int) (int64, error)
}

// EntityTypeRepository loads the tier configuration.
type EntityTypeRepository interface {
	List(ctx context.Context) ([]hierarchy.TierInfo, error)
}
