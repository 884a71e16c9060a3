package orderset

import (
	"strconv"

	"github.com/diverse/diverse/internal/domain/hierarchy"
)

// SectionOrder is one section override row joined with its section catalog
// entry. Order already includes the authoring tier's base.
type SectionOrder struct {
	SectionID int             `json:"secId" db:"sec_id"`
	Name      string          `json:"secName" db:"sec_name"`
	NumCols   int             `json:"numCols" db:"num_cols"`
	Column    int             `json:"column" db:"col"`
	Order     int             `json:"order" db:"order_val"`
	Hide      bool            `json:"hide" db:"hide"`
	SpecName  string          `json:"specName,omitempty" db:"spec_name"`
	Scope     hierarchy.Scope `json:"scope"`
}

func (s SectionOrder) Key() string              { return strconv.Itoa(s.SectionID) }
func (s SectionOrder) ScopeOf() hierarchy.Scope { return s.Scope }

// PanelOrder is one panel override row joined with its panel catalog entry.
type PanelOrder struct {
	PanelID   int             `json:"panelId" db:"panel_id"`
	Name      string          `json:"panelName" db:"panel_name"`
	Graphable bool            `json:"graphable" db:"graphable"`
	Order     int             `json:"order" db:"order_val"`
	Hide      bool            `json:"hide" db:"hide"`
	Scope     hierarchy.Scope `json:"scope"`
}

func (p PanelOrder) Key() string              { return strconv.Itoa(p.PanelID) }
func (p PanelOrder) ScopeOf() hierarchy.Scope { return p.Scope }

// TestOrder is one test override row joined with the test's preferred name
// and reference range. Tests are keyed by LOINC code.
type TestOrder struct {
	Loinc   string          `json:"loincNum" db:"loinc_num"`
	Name    string          `json:"testName" db:"test_name"`
	AssocID int             `json:"assocId" db:"assoc_id"`
	PanelID int             `json:"panelId" db:"panel_id"`
	Order   int             `json:"order" db:"order_val"`
	Hide    bool            `json:"hide" db:"hide"`
	Min     float64         `json:"min" db:"range_low"`
	Max     float64         `json:"max" db:"range_high"`
	Units   string          `json:"units" db:"range_units"`
	Scope   hierarchy.Scope `json:"scope"`
}

func (t TestOrder) Key() string              { return t.Loinc }
func (t TestOrder) ScopeOf() hierarchy.Scope { return t.Scope }

// SectionPlacement is one section in a replace request. Order is the
// caller's explicit position within the section orderset.
type SectionPlacement struct {
	SectionID int  `json:"secId"`
	Order     int  `json:"order"`
	Column    int  `json:"column"`
	Hide      bool `json:"hide"`
}

// PanelPlacement is one panel in a replace request. Position is taken from
// the element's index in the request array.
type PanelPlacement struct {
	PanelID int  `json:"panelId"`
	Hide    bool `json:"hide"`
}

// TestPlacement is one test in a replace request. Position is taken from the
// element's index in the request array.
type TestPlacement struct {
	AssocID int  `json:"assocId"`
	Hide    bool `json:"hide"`
}

// PatientFilter restricts the test fetch to ranges applicable to a patient.
type PatientFilter struct {
	Gender string
	Age    int
}
