package display

import (
	"context"
	"time"

	"github.com/diverse/diverse/internal/domain/orderset"
)

// SectionLookup resolves a section name to its catalog id.
type SectionLookup interface {
	SectionID(name string) (int, bool)
}

// testsSection names the section whose panels make up the test display.
const testsSection = "Tests"

// Service assembles the test display and evaluates submitted results.
type Service struct {
	ordersets *orderset.Service
	sections  SectionLookup
}

func NewService(ordersets *orderset.Service, sections SectionLookup) *Service {
	return &Service{ordersets: ordersets, sections: sections}
}

// TestsForDisplay resolves the effective panels and problem-linked tests for
// one user and nests them for presentation. When neither side has any
// underlying rows the input identifiers are considered invalid; one empty
// side alone is fine and yields panels with empty test lists.
func (s *Service) TestsForDisplay(ctx context.Context, accountID string, specialtyID int, problemCID string, f orderset.PatientFilter) ([]PanelDisplay, error) {
	sectionID, _ := s.sections.SectionID(testsSection)
	panels, err := s.ordersets.PanelOrderset(ctx, accountID, specialtyID, sectionID)
	if err != nil {
		return nil, err
	}
	tests, err := s.ordersets.ResolvedTestsForProblem(ctx, accountID, specialtyID, problemCID, f)
	if err != nil {
		return nil, err
	}
	if len(panels) == 0 && len(tests) == 0 {
		return nil, ErrNoData
	}
	return Compose(panels, tests), nil
}

// CheckTests evaluates submitted panels against the current time.
func (s *Service) CheckTests(panels []CheckPanel) []PanelMessages {
	return Evaluate(panels, time.Now())
}
