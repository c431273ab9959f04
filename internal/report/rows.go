// SPDX-License-Identifier: Apache-2.0

// Package report flattens a ResultStore into long-format rows and renders
// them as CSV, JSON and a PNG chart.
package report

import "github.com/adiadia/eventbench/internal/domain"

// Row is one measured (checkpoint, variant, query) triple.
type Row struct {
	RecordCount int     `json:"record_count"`
	Variant     string  `json:"variant"`
	Query       string  `json:"query"`
	ElapsedMS   float64 `json:"elapsed_ms"`
}

// ToLongFormat emits one row per present measurement, ordered by checkpoint
// insertion order, then variant recording order, then declared query order.
// Missing measurements produce no row.
func ToLongFormat(store *domain.ResultStore) []Row {
	rows := make([]Row, 0)
	if store == nil {
		return rows
	}
	for _, cp := range store.Checkpoints() {
		for _, res := range store.Results(cp) {
			for _, q := range res.OrderedQueries() {
				rows = append(rows, Row{
					RecordCount: cp,
					Variant:     res.Variant,
					Query:       q,
					ElapsedMS:   res.Timings[q],
				})
			}
		}
	}
	return rows
}

// Series groups rows by (variant, query) in first-seen order.
type Series struct {
	Variant string
	Query   string
	Points  []Row
}

// Label is the chart legend entry.
func (s Series) Label() string {
	return s.Variant + " - " + s.Query
}

func GroupSeries(rows []Row) []Series {
	index := make(map[[2]string]int)
	out := make([]Series, 0)
	for _, r := range rows {
		key := [2]string{r.Variant, r.Query}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, Series{Variant: r.Variant, Query: r.Query})
		}
		out[i].Points = append(out[i].Points, r)
	}
	return out
}
