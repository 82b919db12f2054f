package table

import (
	"testing"
	"time"
)

// threeRows builds a small table with one column per supported type.
func threeRows(t *testing.T) *Table {
	t.Helper()
	ts := func(s string) time.Time {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			t.Fatalf("parse time %q: %v", s, err)
		}
		return parsed
	}
	tbl, err := New([]Column{
		{Name: "active", Type: TypeBool, Values: []any{true, false, nil}},
		{Name: "amount", Type: TypeFloat64, Values: []any{10.5, nil, 30.25}},
		{Name: "id", Type: TypeInt64, Values: []any{int64(1), int64(2), int64(3)}},
		{Name: "name", Type: TypeString, Values: []any{"alpha", "beta", "gamma"}},
		{Name: "updated", Type: TypeTimestamp, Values: []any{
			ts("2024-01-15T10:00:00Z"), ts("2024-02-20T11:30:00Z"), nil,
		}},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tbl
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cols []Column
	}{
		{
			name: "duplicate column names",
			cols: []Column{
				{Name: "id", Type: TypeInt64, Values: []any{int64(1)}},
				{Name: "id", Type: TypeString, Values: []any{"x"}},
			},
		},
		{
			name: "ragged columns",
			cols: []Column{
				{Name: "a", Type: TypeInt64, Values: []any{int64(1), int64(2)}},
				{Name: "b", Type: TypeString, Values: []any{"x"}},
			},
		},
		{
			name: "unnamed column",
			cols: []Column{{Name: "", Type: TypeString, Values: []any{"x"}}},
		},
		{
			name: "uncoercible value",
			cols: []Column{{Name: "n", Type: TypeInt64, Values: []any{"not a number"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cols); err == nil {
				t.Error("New() succeeded, want error")
			}
		})
	}
}

func TestNew_CoercesJSONValues(t *testing.T) {
	// JSON decoding produces float64 for numbers and string for timestamps.
	tbl, err := New([]Column{
		{Name: "id", Type: TypeInt64, Values: []any{float64(7)}},
		{Name: "when", Type: TypeTimestamp, Values: []any{"2024-03-01T00:00:00Z"}},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	v, _ := tbl.Cell(0, 0)
	if got, ok := v.(int64); !ok || got != 7 {
		t.Errorf("Cell(0,0) = %v (%T), want int64 7", v, v)
	}
	v, _ = tbl.Cell(0, 1)
	if _, ok := v.(time.Time); !ok {
		t.Errorf("Cell(0,1) = %T, want time.Time", v)
	}
}

func TestClone_Independent(t *testing.T) {
	tbl := threeRows(t)
	clone := tbl.Clone()

	if !tbl.Equal(clone) {
		t.Fatal("clone differs from original")
	}

	if err := clone.SetCell(0, 3, "changed"); err != nil {
		t.Fatalf("SetCell() error = %v", err)
	}
	v, _ := tbl.Cell(0, 3)
	if v != "alpha" {
		t.Errorf("original mutated through clone: Cell(0,3) = %v", v)
	}
}

func TestSetCell_CoercesAndRejects(t *testing.T) {
	tbl := threeRows(t)

	// id column is int64; strings coerce.
	if err := tbl.SetCell(1, 2, "42"); err != nil {
		t.Fatalf("SetCell() error = %v", err)
	}
	v, _ := tbl.Cell(1, 2)
	if v != int64(42) {
		t.Errorf("Cell(1,2) = %v, want 42", v)
	}

	if err := tbl.SetCell(1, 2, "nope"); err == nil {
		t.Error("SetCell() accepted a non-integer for an int64 column")
	}
	if err := tbl.SetCell(99, 0, true); err == nil {
		t.Error("SetCell() accepted an out-of-range row")
	}
}

func TestAppendRow(t *testing.T) {
	tbl := threeRows(t)

	err := tbl.AppendRow([]any{false, 1.5, int64(4), "delta", nil})
	if err != nil {
		t.Fatalf("AppendRow() error = %v", err)
	}
	if tbl.NumRows() != 4 {
		t.Errorf("NumRows() = %d, want 4", tbl.NumRows())
	}

	if err := tbl.AppendRow([]any{true}); err == nil {
		t.Error("AppendRow() accepted a short row")
	}
}

func TestEqual(t *testing.T) {
	a := threeRows(t)
	b := threeRows(t)
	if !a.Equal(b) {
		t.Error("identical tables reported unequal")
	}

	b.Columns[3].Values[0] = "other"
	if a.Equal(b) {
		t.Error("tables with different cells reported equal")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{int64(5), "5"},
		{3.5, "3.5"},
		{true, "true"},
		{"x", "x"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
