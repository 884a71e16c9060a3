package catalog

import "errors"

var ErrNotFound = errors.New("catalog: not found")

// Section is one top-level display section.
type Section struct {
	ID   int    `json:"secId" db:"id"`
	Name string `json:"secName" db:"name"`
}

// Panel groups related tests under a section.
type Panel struct {
	ID        int    `json:"panId" db:"id"`
	SecID     int    `json:"secId" db:"sec_id"`
	Name      string `json:"panName" db:"name"`
	Graphable bool   `json:"graphable" db:"graphable"`
}

// Specialty is one clinical specialty.
type Specialty struct {
	ID   int    `json:"specId" db:"id"`
	Name string `json:"name" db:"name"`
}

// TestAssoc links a test to a panel for one problem concept and specialty.
type TestAssoc struct {
	ID        int    `json:"assocId" db:"id"`
	Loinc     string `json:"loinc" db:"loinc_num"`
	CID       string `json:"cid" db:"cid"`
	PanelID   int    `json:"panelId" db:"panel_id"`
	SpecID    int    `json:"specId" db:"spec_id"`
	FacTypeID string `json:"facTypeId" db:"fac_type_id"`
	CreatedBy string `json:"createdBy" db:"created_by"`
}

// TestMatch is one test search hit.
type TestMatch struct {
	Name  string `json:"name"`
	Loinc string `json:"loinc"`
}
