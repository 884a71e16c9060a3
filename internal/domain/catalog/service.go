package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5"

	"github.com/diverse/diverse/internal/domain/hierarchy"
)

// snapshot is the immutable in-memory view of the reference data. Lookups
// read whichever snapshot is current; mutations rebuild and swap it.
type snapshot struct {
	sections    map[string]int
	panels      map[string][]Panel
	specialties []Specialty
}

// MembershipResolver looks up the hierarchy membership of an account. The
// identity service satisfies it.
type MembershipResolver interface {
	Membership(ctx context.Context, accountID string) (hierarchy.Membership, error)
}

// Service serves the reference catalogs and keeps their snapshots fresh.
type Service struct {
	sections    SectionRepository
	panels      PanelRepository
	specialties SpecialtyRepository
	testNames   TestNameRepository
	assocs      TestAssocRepository
	entityTypes EntityTypeRepository
	members     MembershipResolver
	tiers       *hierarchy.Registry
	searchLimit int

	current atomic.Pointer[snapshot]
}

func NewService(sections SectionRepository, panels PanelRepository, specialties SpecialtyRepository,
	testNames TestNameRepository, assocs TestAssocRepository, entityTypes EntityTypeRepository,
	members MembershipResolver, tiers *hierarchy.Registry, searchLimit int) *Service {
	s := &Service{
		sections:    sections,
		panels:      panels,
		specialties: specialties,
		testNames:   testNames,
		assocs:      assocs,
		entityTypes: entityTypes,
		members:     members,
		tiers:       tiers,
		searchLimit: searchLimit,
	}
	s.current.Store(&snapshot{sections: map[string]int{}, panels: map[string][]Panel{}})
	return s
}

// Load builds the catalog snapshots and the tier table from the database.
// Called at startup before the server accepts requests.
func (s *Service) Load(ctx context.Context) error {
	if err := s.reloadTiers(ctx); err != nil {
		return fmt.Errorf("load entity types: %w", err)
	}
	if err := s.reload(ctx); err != nil {
		return fmt.Errorf("load catalogs: %w", err)
	}
	return nil
}

func (s *Service) reloadTiers(ctx context.Context) error {
	infos, err := s.entityTypes.List(ctx)
	if err != nil {
		return err
	}
	if len(infos) > 0 {
		s.tiers.Replace(hierarchy.NewTable(infos))
	}
	return nil
}

// reload rebuilds the whole snapshot. Mutations are rare, so rebuilding
// everything keeps the section and panel views consistent with each other.
func (s *Service) reload(ctx context.Context) error {
	sections, err := s.sections.List(ctx)
	if err != nil {
		return err
	}
	panels, err := s.panels.List(ctx)
	if err != nil {
		return err
	}
	specialties, err := s.specialties.List(ctx)
	if err != nil {
		return err
	}

	next := &snapshot{
		sections:    make(map[string]int, len(sections)),
		panels:      make(map[string][]Panel, len(sections)),
		specialties: specialties,
	}
	byID := make(map[int]string, len(sections))
	for _, sec := range sections {
		next.sections[sec.Name] = sec.ID
		byID[sec.ID] = sec.Name
	}
	for _, p := range panels {
		name, ok := byID[p.SecID]
		if !ok {
			continue
		}
		next.panels[name] = append(next.panels[name], p)
	}
	s.current.Store(next)
	return nil
}

// EntityTypes returns the configured entity-type tokens, least specific
// first.
func (s *Service) EntityTypes() []string {
	return s.tiers.Current().Names()
}

// Sections returns the section name-to-id map.
func (s *Service) Sections() map[string]int {
	return s.current.Load().sections
}

// SectionID resolves a section name against the current snapshot.
func (s *Service) SectionID(name string) (int, bool) {
	id, ok := s.current.Load().sections[name]
	return id, ok
}

// Panels returns panels grouped by their section's name.
func (s *Service) Panels() map[string][]Panel {
	return s.current.Load().panels
}

// Specialties returns the current specialties.
func (s *Service) Specialties() []Specialty {
	return s.current.Load().specialties
}

func (s *Service) CreateSpecialty(ctx context.Context, name, createdBy string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("specialty name is required")
	}
	id, err := s.specialties.Create(ctx, name, createdBy)
	if err != nil {
		return 0, err
	}
	return id, s.reload(ctx)
}

func (s *Service) UpdateSpecialty(ctx context.Context, id int, name string) error {
	n, err := s.specialties.Update(ctx, id, name)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return s.reload(ctx)
}

func (s *Service) DeleteSpecialty(ctx context.Context, id int) error {
	n, err := s.specialties.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return s.reload(ctx)
}

func (s *Service) CreatePanel(ctx context.Context, p *Panel, createdBy string) error {
	if p.Name == "" || p.SecID == 0 {
		return fmt.Errorf("panel name and section are required")
	}
	if err := s.panels.Create(ctx, p, createdBy); err != nil {
		return err
	}
	return s.reload(ctx)
}

func (s *Service) UpdatePanel(ctx context.Context, id int, name string, graphable bool) error {
	n, err := s.panels.Update(ctx, id, name, graphable)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return s.reload(ctx)
}

func (s *Service) DeletePanel(ctx context.Context, id int) error {
	n, err := s.panels.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return s.reload(ctx)
}

// TestName returns the preferred name for a test.
func (s *Service) TestName(ctx context.Context, loinc string) (string, error) {
	name, err := s.testNames.Get(ctx, loinc)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return name, err
}

func (s *Service) CreateTestName(ctx context.Context, loinc, name, createdBy string) error {
	if loinc == "" || name == "" {
		return fmt.Errorf("loinc and name are required")
	}
	return s.testNames.Create(ctx, loinc, name, createdBy)
}

func (s *Service) UpdateTestName(ctx context.Context, loinc, name string) error {
	n, err := s.testNames.Update(ctx, loinc, name)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) DeleteTestName(ctx context.Context, loinc string) error {
	n, err := s.testNames.Delete(ctx, loinc)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchTests finds tests whose preferred or short name contains the term.
func (s *Service) SearchTests(ctx context.Context, term string) ([]TestMatch, error) {
	if term == "" {
		return nil, fmt.Errorf("search term is required")
	}
	return s.testNames.Search(ctx, term, s.searchLimit)
}

// CreateTestAssoc links a test to a panel for a problem concept and returns
// the association id used by test ordersets. The association inherits the
// facility type of the creating account, which scopes who sees it outside
// the global tier.
func (s *Service) CreateTestAssoc(ctx context.Context, a *TestAssoc) error {
	if a.Loinc == "" || a.PanelID == 0 {
		return fmt.Errorf("loinc and panel are required")
	}
	m, err := s.members.Membership(ctx, a.CreatedBy)
	if err != nil {
		return err
	}
	a.FacTypeID = m.FacTypeID
	return s.assocs.Create(ctx, a)
}

func (s *Service) DeleteTestAssoc(ctx context.Context, id int) error {
	n, err := s.assocs.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
