package orderset

import (
	"context"
	"fmt"
	"sort"

	"github.com/diverse/diverse/internal/domain/hierarchy"
)

// ScopeResolver resolves an account into its entity memberships.
type ScopeResolver interface {
	Membership(ctx context.Context, accountID string) (hierarchy.Membership, error)
}

// TxRunner runs a function inside a database transaction. The function's
// context carries the transaction for repositories to pick up.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service resolves and writes display ordersets.
type Service struct {
	sections SectionOrderRepository
	panels   PanelOrderRepository
	tests    TestOrderRepository
	identity ScopeResolver
	tiers    *hierarchy.Registry
	tx       TxRunner
}

func NewService(sections SectionOrderRepository, panels PanelOrderRepository, tests TestOrderRepository,
	identity ScopeResolver, tiers *hierarchy.Registry, tx TxRunner) *Service {
	return &Service{sections: sections, panels: panels, tests: tests, identity: identity, tiers: tiers, tx: tx}
}

// visibleScopes resolves the account's memberships into the scopes it may
// see for one specialty.
func (s *Service) visibleScopes(ctx context.Context, accountID string, specialtyID int) ([]hierarchy.Scope, error) {
	m, err := s.identity.Membership(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("resolve membership: %w", err)
	}
	return hierarchy.VisibleScopes(m, specialtyID), nil
}

// writeScope validates an entity-type token and builds the scope a write
// applies to. Entity-bound tiers require an entity id; the global and
// specialty tiers ignore it.
func (s *Service) writeScope(entityType, entityID string, specialtyID int) (hierarchy.Scope, error) {
	info, ok := s.tiers.Current().ByName(entityType)
	if !ok {
		return hierarchy.Scope{}, fmt.Errorf("%w: %q", ErrInvalidEntityType, entityType)
	}
	scope := hierarchy.Scope{Tier: info.Tier}
	switch info.Tier {
	case hierarchy.TierGlobal:
	case hierarchy.TierSpecialtyDefault:
		scope.SpecialtyID = specialtyID
	default:
		if entityID == "" {
			return hierarchy.Scope{}, fmt.Errorf("%w: entity id required for %q", ErrInvalidEntityType, entityType)
		}
		scope.EntityID = entityID
		scope.SpecialtyID = specialtyID
	}
	return scope, nil
}

// SectionOrderset returns the effective section layout for one user and
// specialty, ordered ascending by order value.
func (s *Service) SectionOrderset(ctx context.Context, accountID string, specialtyID int) ([]SectionOrder, error) {
	visible, err := s.visibleScopes(ctx, accountID, specialtyID)
	if err != nil {
		return nil, err
	}
	raw, err := s.sections.FetchBySpecialty(ctx, specialtyID)
	if err != nil {
		return nil, fmt.Errorf("fetch section orders: %w", err)
	}
	effective := Resolve(raw, visible)
	sort.SliceStable(effective, func(i, j int) bool { return effective[i].Order < effective[j].Order })
	return effective, nil
}

// SectionOrdersets lists every raw section override row across all tiers.
func (s *Service) SectionOrdersets(ctx context.Context, limit, offset int) ([]SectionOrder, error) {
	return s.sections.FetchAll(ctx, limit, offset)
}

// SectionOrdersetsByAccount lists one account's user-tier section overrides
// grouped by specialty name.
func (s *Service) SectionOrdersetsByAccount(ctx context.Context, accountID string) (map[string][]SectionOrder, error) {
	raw, err := s.sections.FetchByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]SectionOrder)
	for _, row := range raw {
		grouped[row.SpecName] = append(grouped[row.SpecName], row)
	}
	return grouped, nil
}

// ReplaceSectionOrderset replaces the section layout authored at one scope.
// Existing rows for the scope are removed and the new rows written in a
// single transaction, so readers never observe a partially written layout.
// Each section keeps its caller-declared order offset by the tier's base.
func (s *Service) ReplaceSectionOrderset(ctx context.Context, entityType, entityID string, specialtyID, numCols int, placements []SectionPlacement) error {
	scope, err := s.writeScope(entityType, entityID, specialtyID)
	if err != nil {
		return err
	}
	base := s.tiers.Current().OrderBase(scope.Tier)
	rows := make([]SectionOrderRow, 0, len(placements))
	for _, p := range placements {
		rows = append(rows, SectionOrderRow{
			SectionID: p.SectionID,
			NumCols:   numCols,
			Column:    p.Column,
			Order:     base + p.Order,
			Hide:      p.Hide,
		})
	}
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.sections.Delete(ctx, scope); err != nil {
			return fmt.Errorf("clear section orders: %w", err)
		}
		if err := s.sections.Insert(ctx, scope, rows); err != nil {
			return fmt.Errorf("write section orders: %w", err)
		}
		return nil
	})
}

// DeleteSectionOrderset removes the section layout authored at one scope.
func (s *Service) DeleteSectionOrderset(ctx context.Context, entityType, entityID string, specialtyID int) error {
	scope, err := s.writeScope(entityType, entityID, specialtyID)
	if err != nil {
		return err
	}
	n, err := s.sections.Delete(ctx, scope)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// PanelOrderset returns the effective panels of one section for a user,
// ordered ascending by order value.
func (s *Service) PanelOrderset(ctx context.Context, accountID string, specialtyID, sectionID int) ([]PanelOrder, error) {
	visible, err := s.visibleScopes(ctx, accountID, specialtyID)
	if err != nil {
		return nil, err
	}
	raw, err := s.panels.FetchBySection(ctx, sectionID, specialtyID)
	if err != nil {
		return nil, fmt.Errorf("fetch panel orders: %w", err)
	}
	effective := Resolve(raw, visible)
	sort.SliceStable(effective, func(i, j int) bool { return effective[i].Order < effective[j].Order })
	return effective, nil
}

// ReplacePanelOrderset replaces one section's panel order at one scope.
// Position comes from each panel's index in the request array.
func (s *Service) ReplacePanelOrderset(ctx context.Context, entityType, entityID string, specialtyID, sectionID int, placements []PanelPlacement) error {
	scope, err := s.writeScope(entityType, entityID, specialtyID)
	if err != nil {
		return err
	}
	base := s.tiers.Current().OrderBase(scope.Tier)
	rows := make([]PanelOrderRow, 0, len(placements))
	for i, p := range placements {
		rows = append(rows, PanelOrderRow{PanelID: p.PanelID, Order: base + i, Hide: p.Hide})
	}
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.panels.Delete(ctx, scope, sectionID); err != nil {
			return fmt.Errorf("clear panel orders: %w", err)
		}
		if err := s.panels.Insert(ctx, scope, rows); err != nil {
			return fmt.Errorf("write panel orders: %w", err)
		}
		return nil
	})
}

// DeletePanelOrderset removes one section's panel order at one scope.
func (s *Service) DeletePanelOrderset(ctx context.Context, entityType, entityID string, specialtyID, sectionID int) error {
	scope, err := s.writeScope(entityType, entityID, specialtyID)
	if err != nil {
		return err
	}
	n, err := s.panels.Delete(ctx, scope, sectionID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// TestOrderset returns the effective tests of one panel for a user, ordered
// ascending by order value.
func (s *Service) TestOrderset(ctx context.Context, accountID string, specialtyID, panelID int) ([]TestOrder, error) {
	visible, err := s.visibleScopes(ctx, accountID, specialtyID)
	if err != nil {
		return nil, err
	}
	raw, err := s.tests.FetchByPanel(ctx, panelID, specialtyID)
	if err != nil {
		return nil, fmt.Errorf("fetch test orders: %w", err)
	}
	effective := Resolve(raw, visible)
	sort.SliceStable(effective, func(i, j int) bool { return effective[i].Order < effective[j].Order })
	return effective, nil
}

// ReplaceTestOrderset replaces one panel's test order at one scope. Position
// comes from each test's index in the request array.
func (s *Service) ReplaceTestOrderset(ctx context.Context, entityType, entityID string, specialtyID, panelID int, placements []TestPlacement) error {
	scope, err := s.writeScope(entityType, entityID, specialtyID)
	if err != nil {
		return err
	}
	base := s.tiers.Current().OrderBase(scope.Tier)
	rows := make([]TestOrderRow, 0, len(placements))
	for i, p := range placements {
		rows = append(rows, TestOrderRow{AssocID: p.AssocID, Order: base + i, Hide: p.Hide})
	}
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.tests.Delete(ctx, scope, panelID); err != nil {
			return fmt.Errorf("clear test orders: %w", err)
		}
		if err := s.tests.Insert(ctx, scope, rows); err != nil {
			return fmt.Errorf("write test orders: %w", err)
		}
		return nil
	})
}

// DeleteTestOrderset removes one panel's test order at one scope.
func (s *Service) DeleteTestOrderset(ctx context.Context, entityType, entityID string, specialtyID, panelID int) error {
	scope, err := s.writeScope(entityType, entityID, specialtyID)
	if err != nil {
		return err
	}
	n, err := s.tests.Delete(ctx, scope, panelID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ResolvedPanels returns the effective panels across every section for a
// user, used when assembling the test display.
func (s *Service) ResolvedPanels(ctx context.Context, accountID string, specialtyID int) ([]PanelOrder, error) {
	return s.PanelOrderset(ctx, accountID, specialtyID, 0)
}

// ResolvedTestsForProblem returns the effective tests linked to a problem
// concept for a user, with ranges narrowed to the patient. Outside the
// global tier only associations matching the user's facility type apply.
func (s *Service) ResolvedTestsForProblem(ctx context.Context, accountID string, specialtyID int, problemCID string, f PatientFilter) ([]TestOrder, error) {
	m, err := s.identity.Membership(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("resolve membership: %w", err)
	}
	raw, err := s.tests.FetchForProblem(ctx, specialtyID, problemCID, m.FacTypeID, f)
	if err != nil {
		return nil, fmt.Errorf("fetch problem tests: %w", err)
	}
	return Resolve(raw, hierarchy.VisibleScopes(m, specialtyID)), nil
}
