// Package table provides the in-memory tabular data model and the Parquet
// codec used to move tables between object storage and the editor.
// This package has no UI or storage dependencies and can be used by any
// frontend.
package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ColumnType identifies the uniform value type of a column.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInt64
	TypeFloat64
	TypeBool
	TypeTimestamp
)

// String returns the wire name of the column type.
func (t ColumnType) String() string {
	switch t {
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	case TypeBool:
		return "bool"
	case TypeTimestamp:
		return "timestamp"
	default:
		return "string"
	}
}

// ParseColumnType converts a wire name back to a ColumnType.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(s) {
	case "string", "":
		return TypeString, nil
	case "int64", "int":
		return TypeInt64, nil
	case "float64", "float", "double":
		return TypeFloat64, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "timestamp":
		return TypeTimestamp, nil
	default:
		return TypeString, fmt.Errorf("unknown column type %q", s)
	}
}

// Column is an ordered sequence of values of a uniform type.
// A nil entry in Values represents a null cell.
type Column struct {
	Name   string
	Type   ColumnType
	Values []any
}

// Table is an ordered collection of named columns with positionally
// aligned rows. A Table is owned by a single edit session and is never
// shared between sessions; callers that hand a Table across a boundary
// should Clone it first.
type Table struct {
	Columns []Column
}

// New validates column shape and returns a Table.
// All columns must have distinct names and equal lengths.
func New(cols []Column) (*Table, error) {
	seen := make(map[string]struct{}, len(cols))
	rows := -1
	for i, col := range cols {
		if col.Name == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		if _, dup := seen[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		seen[col.Name] = struct{}{}
		if rows == -1 {
			rows = len(col.Values)
		} else if len(col.Values) != rows {
			return nil, fmt.Errorf("column %q has %d values, want %d", col.Name, len(col.Values), rows)
		}
		for r, v := range col.Values {
			cv, err := CoerceValue(col.Type, v)
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", col.Name, r, err)
			}
			cols[i].Values[r] = cv
		}
	}
	return &Table{Columns: cols}, nil
}

// NumRows returns the row count. An empty table has zero rows.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// NumCols returns the column count.
func (t *Table) NumCols() int {
	return len(t.Columns)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, col). A nil value is a null cell.
func (t *Table) Cell(row, col int) (any, error) {
	if col < 0 || col >= len(t.Columns) {
		return nil, fmt.Errorf("column index %d out of range [0,%d)", col, len(t.Columns))
	}
	if row < 0 || row >= t.NumRows() {
		return nil, fmt.Errorf("row index %d out of range [0,%d)", row, t.NumRows())
	}
	return t.Columns[col].Values[row], nil
}

// SetCell replaces the value at (row, col), coercing v to the column type.
func (t *Table) SetCell(row, col int, v any) error {
	if col < 0 || col >= len(t.Columns) {
		return fmt.Errorf("column index %d out of range [0,%d)", col, len(t.Columns))
	}
	if row < 0 || row >= t.NumRows() {
		return fmt.Errorf("row index %d out of range [0,%d)", row, t.NumRows())
	}
	cv, err := CoerceValue(t.Columns[col].Type, v)
	if err != nil {
		return fmt.Errorf("column %q: %w", t.Columns[col].Name, err)
	}
	t.Columns[col].Values[row] = cv
	return nil
}

// AppendRow adds one row. values must have one entry per column; entries
// are coerced to the column types. A nil entry appends a null cell.
func (t *Table) AppendRow(values []any) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.Columns))
	}
	coerced := make([]any, len(values))
	for i, v := range values {
		cv, err := CoerceValue(t.Columns[i].Type, v)
		if err != nil {
			return fmt.Errorf("column %q: %w", t.Columns[i].Name, err)
		}
		coerced[i] = cv
	}
	for i := range t.Columns {
		t.Columns[i].Values = append(t.Columns[i].Values, coerced[i])
	}
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	cols := make([]Column, len(t.Columns))
	for i, col := range t.Columns {
		values := make([]any, len(col.Values))
		copy(values, col.Values)
		cols[i] = Column{Name: col.Name, Type: col.Type, Values: values}
	}
	return &Table{Columns: cols}
}

// Equal reports whether two tables have identical columns, row counts and
// cell values.
func (t *Table) Equal(other *Table) bool {
	if other == nil || len(t.Columns) != len(other.Columns) {
		return false
	}
	for i, col := range t.Columns {
		oc := other.Columns[i]
		if col.Name != oc.Name || col.Type != oc.Type || len(col.Values) != len(oc.Values) {
			return false
		}
		for r, v := range col.Values {
			if !valueEqual(v, oc.Values[r]) {
				return false
			}
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return a == b
}

// CoerceValue converts v to the canonical Go representation for the column
// type: string, int64, float64, bool or time.Time. It accepts the loose
// types produced by JSON decoding (float64 for numbers, string for
// timestamps) and string renderings of any type. nil passes through as null.
func CoerceValue(t ColumnType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t {
	case TypeString:
		switch x := v.(type) {
		case string:
			return x, nil
		default:
			return fmt.Sprintf("%v", x), nil
		}
	case TypeInt64:
		switch x := v.(type) {
		case int64:
			return x, nil
		case int:
			return int64(x), nil
		case int32:
			return int64(x), nil
		case float64:
			if x != float64(int64(x)) {
				return nil, fmt.Errorf("value %v is not an integer", x)
			}
			return int64(x), nil
		case string:
			i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid integer %q", x)
			}
			return i, nil
		}
	case TypeFloat64:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case int:
			return float64(x), nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q", x)
			}
			return f, nil
		}
	case TypeBool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(x))
			if err != nil {
				return nil, fmt.Errorf("invalid boolean %q", x)
			}
			return b, nil
		}
	case TypeTimestamp:
		switch x := v.(type) {
		case time.Time:
			return x.UTC(), nil
		case string:
			ts, err := time.Parse(time.RFC3339, strings.TrimSpace(x))
			if err != nil {
				return nil, fmt.Errorf("invalid timestamp %q (want RFC 3339)", x)
			}
			return ts.UTC(), nil
		case int64:
			return time.UnixMicro(x).UTC(), nil
		case float64:
			return time.UnixMicro(int64(x)).UTC(), nil
		}
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, t)
}

// FormatValue renders a cell value for display. Null cells render empty.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
