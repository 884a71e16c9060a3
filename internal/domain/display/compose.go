package display

import (
	"sort"
	"strconv"

	"github.com/diverse/diverse/internal/domain/orderset"
)

func formatRange(min, max float64) string {
	return strconv.FormatFloat(min, 'f', -1, 64) + "-" + strconv.FormatFloat(max, 'f', -1, 64)
}

// Compose nests effective tests under their effective panels. Panels and the
// tests within each panel come out ordered ascending by order value. A panel
// with no matching tests keeps an empty test list.
func Compose(panels []orderset.PanelOrder, tests []orderset.TestOrder) []PanelDisplay {
	byPanel := make(map[int][]TestDisplay)
	for _, t := range tests {
		byPanel[t.PanelID] = append(byPanel[t.PanelID], TestDisplay{
			TestName: t.Name,
			Loinc:    t.Loinc,
			AssocID:  t.AssocID,
			Order:    t.Order,
			Hide:     t.Hide,
			Tier:     t.Scope.Tier,
			Min:      t.Min,
			Max:      t.Max,
			Units:    t.Units,
			Range:    formatRange(t.Min, t.Max),
		})
	}

	out := make([]PanelDisplay, 0, len(panels))
	for _, p := range panels {
		nested := byPanel[p.PanelID]
		sort.SliceStable(nested, func(i, j int) bool { return nested[i].Order < nested[j].Order })
		if nested == nil {
			nested = []TestDisplay{}
		}
		out = append(out, PanelDisplay{
			PanelID:   p.PanelID,
			PanelName: p.Name,
			Graphable: p.Graphable,
			Order:     p.Order,
			Hide:      p.Hide,
			Tier:      p.Scope.Tier,
			Tests:     nested,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
