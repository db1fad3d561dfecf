package exporter

import "pollscope/pkg/contracts/domain"

// Table is a view rendered as rows of cells. A cell is a string, an int,
// a float64 or nil for an absent value.
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]interface{}
}

// RankingTable lays out a pollster ranking
func RankingTable(source string, entries []domain.RankingEntry) *Table {
	t := &Table{
		Sheet:   sheetName("Ranking " + source),
		Headers: []string{"Puesto", "Candidato", "Partido", "Valor", "Tendencia"},
		Rows:    make([][]interface{}, 0, len(entries)),
	}
	for _, e := range entries {
		t.Rows = append(t.Rows, []interface{}{e.Rank, e.Candidate, e.Party, e.LastValue, e.Trend})
	}
	return t
}

// ComparisonTable lays out the cross-pollster comparison. sources fixes
// the column order.
func ComparisonTable(sources []string, rows []domain.ComparisonRow) *Table {
	t := &Table{
		Sheet:   "Comparativa",
		Headers: make([]string, 0, len(sources)+2),
		Rows:    make([][]interface{}, 0, len(rows)),
	}
	t.Headers = append(t.Headers, "Candidato")
	t.Headers = append(t.Headers, sources...)
	t.Headers = append(t.Headers, "Promedio")

	for _, r := range rows {
		line := make([]interface{}, 0, len(t.Headers))
		line = append(line, r.Candidate)
		for _, s := range sources {
			if v := r.PerSource[s]; v != nil {
				line = append(line, *v)
			} else {
				line = append(line, nil)
			}
		}
		if r.Present > 0 {
			line = append(line, r.Mean)
		} else {
			line = append(line, nil)
		}
		t.Rows = append(t.Rows, line)
	}
	return t
}

// sheetName trims a worksheet name to the 31 characters Excel allows and
// drops characters it rejects
func sheetName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			continue
		}
		out = append(out, r)
		if len(out) == 31 {
			break
		}
	}
	if len(out) == 0 {
		return "Sheet1"
	}
	return string(out)
}
