package display

import (
	"errors"

	"github.com/diverse/diverse/internal/domain/hierarchy"
)

// ErrNoData is returned when neither panels nor tests exist for the request
// parameters, which means the identifiers do not name known data.
var ErrNoData = errors.New("display: no panels or tests for input")

// PanelDisplay is one panel of the assembled test display, with its
// effective tests nested inside.
type PanelDisplay struct {
	PanelID   int            `json:"panelId"`
	PanelName string         `json:"panelName"`
	Graphable bool           `json:"graphable"`
	Order     int            `json:"panelOrder"`
	Hide      bool           `json:"panelHide"`
	Tier      hierarchy.Tier `json:"panelEtId"`
	Tests     []TestDisplay  `json:"tests"`
}

// TestDisplay is one test of the assembled display. Range is the reference
// range rendered as "min-max" for direct presentation.
type TestDisplay struct {
	TestName string         `json:"testName"`
	Loinc    string         `json:"loinc"`
	AssocID  int            `json:"assocId"`
	Order    int            `json:"testOrder"`
	Hide     bool           `json:"testHide"`
	Tier     hierarchy.Tier `json:"testEtId"`
	Min      float64        `json:"testMin"`
	Max      float64        `json:"testMax"`
	Units    string         `json:"testUnits"`
	Range    string         `json:"range"`
}

// Sample is one observed result for a test. Value stays a string; results
// arrive as entered and may not parse as numbers.
type Sample struct {
	Date      string `json:"date"`
	ShortDate string `json:"shortdate,omitempty"`
	Value     string `json:"value"`
	Flag      string `json:"flag,omitempty"`
}

// CheckTest is one test submitted for evaluation, the display shape
// augmented with recent results. Min and Max are pointers so a test without
// a reference range skips the abnormal check entirely.
type CheckTest struct {
	TestName string   `json:"testName"`
	Min      *float64 `json:"testMin"`
	Max      *float64 `json:"testMax"`
	Units    string   `json:"testUnits"`
	Range    string   `json:"range"`
	HasData  bool     `json:"hasData"`
	Data     []Sample `json:"data"`
}

// CheckPanel is one panel submitted for evaluation.
type CheckPanel struct {
	PanelName string      `json:"panelName"`
	Tests     []CheckTest `json:"tests"`
}

// Message types produced by evaluation. MessageMissingTest is part of the
// response contract for clients but no rule emits it yet.
const (
	MessagePeriodicTestDue = "periodicTestDue"
	MessageAbnormalValue   = "abnormalValue"
	MessageMissingTest     = "missingTest"
)

// Message is one advisory produced by evaluation. Action is only present on
// message types that suggest something to do.
type Message struct {
	Type   string `json:"messageType"`
	Action string `json:"action,omitempty"`
	Reason string `json:"reason"`
	Note   string `json:"note"`
}

// PanelMessages groups evaluation messages under the panel they belong to.
// Panels that produced no messages are omitted from the response.
type PanelMessages struct {
	PanelName string    `json:"panelName"`
	Messages  []Message `json:"dsMessages"`
}
