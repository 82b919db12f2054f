package web

import (
	"fmt"

	"parqedit/internal/table"
)

// columnPayload is the wire form of one column.
type columnPayload struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Values []any  `json:"values"`
}

// tablePayload is the wire form of a table: columns in grid order, values
// positionally aligned. Null cells are JSON null.
type tablePayload struct {
	Columns []columnPayload `json:"columns"`
}

// toTable converts a wire payload to a Table, coercing JSON's loose value
// types to the declared column types.
func toTable(p tablePayload) (*table.Table, error) {
	if len(p.Columns) == 0 {
		return nil, fmt.Errorf("table payload has no columns")
	}
	cols := make([]table.Column, len(p.Columns))
	for i, c := range p.Columns {
		colType, err := table.ParseColumnType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		cols[i] = table.Column{Name: c.Name, Type: colType, Values: c.Values}
	}
	return table.New(cols)
}

// fromTable converts a Table to its wire form. Canonical cell values
// marshal directly: int64 and float64 as numbers, time.Time as RFC 3339.
func fromTable(t *table.Table) tablePayload {
	cols := make([]columnPayload, len(t.Columns))
	for i, c := range t.Columns {
		values := make([]any, len(c.Values))
		copy(values, c.Values)
		cols[i] = columnPayload{Name: c.Name, Type: c.Type.String(), Values: values}
	}
	return tablePayload{Columns: cols}
}
