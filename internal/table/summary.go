package table

import (
	"time"
)

// ColumnSummary holds descriptive statistics for one column.
type ColumnSummary struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Count    int      `json:"count"` // non-null cells
	Nulls    int      `json:"nulls"`
	Distinct int      `json:"distinct"`
	Min      string   `json:"min,omitempty"`
	Max      string   `json:"max,omitempty"`
	Mean     *float64 `json:"mean,omitempty"` // numeric columns only
}

// Summary contains per-column descriptive statistics for a table.
type Summary struct {
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
}

// Summarize computes descriptive statistics for every column.
func Summarize(t *Table) Summary {
	s := Summary{
		Rows:    t.NumRows(),
		Columns: make([]ColumnSummary, 0, len(t.Columns)),
	}
	for _, col := range t.Columns {
		s.Columns = append(s.Columns, summarizeColumn(col))
	}
	return s
}

func summarizeColumn(col Column) ColumnSummary {
	cs := ColumnSummary{Name: col.Name, Type: col.Type.String()}

	distinct := make(map[any]struct{}, len(col.Values))
	var sum float64
	var haveMinMax bool
	var min, max any

	for _, v := range col.Values {
		if v == nil {
			cs.Nulls++
			continue
		}
		cs.Count++
		distinct[distinctKey(v)] = struct{}{}

		if !haveMinMax {
			min, max = v, v
			haveMinMax = true
		} else {
			if less(v, min) {
				min = v
			}
			if less(max, v) {
				max = v
			}
		}

		switch x := v.(type) {
		case int64:
			sum += float64(x)
		case float64:
			sum += x
		}
	}

	cs.Distinct = len(distinct)
	if haveMinMax {
		cs.Min = FormatValue(min)
		cs.Max = FormatValue(max)
	}
	if cs.Count > 0 && (col.Type == TypeInt64 || col.Type == TypeFloat64) {
		mean := sum / float64(cs.Count)
		cs.Mean = &mean
	}
	return cs
}

// distinctKey makes time.Time usable as a map key by normalizing location.
func distinctKey(v any) any {
	if ts, ok := v.(time.Time); ok {
		return ts.UTC().UnixNano()
	}
	return v
}

// less compares two cells of the same canonical type.
func less(a, b any) bool {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x < y
	case int64:
		y, ok := b.(int64)
		return ok && x < y
	case float64:
		y, ok := b.(float64)
		return ok && x < y
	case bool:
		y, ok := b.(bool)
		return ok && !x && y
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Before(y)
	default:
		return false
	}
}
