package table

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
)

// Encode serializes the table as a Parquet file with Snappy compression.
// The file's column order matches the in-memory column order, so a
// decode/encode cycle never permutes columns in the stored object.
func Encode(t *Table) ([]byte, error) {
	if t == nil || len(t.Columns) == 0 {
		return nil, errors.New("cannot encode a table with no columns")
	}

	group := parquet.Group{}
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		group[col.Name] = parquet.Optional(nodeOf(col.Type))
		names[i] = col.Name
	}
	schema := parquet.NewSchema("table", orderedGroup{Group: group, names: names})

	var buf bytes.Buffer
	w := parquet.NewWriter(&buf, schema, parquet.Compression(&parquet.Snappy))

	numRows := t.NumRows()
	row := make(parquet.Row, 0, len(t.Columns))
	for r := 0; r < numRows; r++ {
		row = row[:0]
		for leaf, col := range t.Columns {
			v := col.Values[r]
			if v == nil {
				row = append(row, parquet.NullValue().Level(0, 0, leaf))
				continue
			}
			pv, err := leafValue(col.Type, v)
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", col.Name, r, err)
			}
			row = append(row, pv.Level(0, 1, leaf))
		}
		if _, err := w.WriteRows([]parquet.Row{row}); err != nil {
			return nil, fmt.Errorf("write parquet row %d: %w", r, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

// orderedGroup wraps parquet.Group, whose Fields method sorts by name, and
// returns the fields in the table's column order instead. Leaf indexes in
// the written file therefore line up with table column positions.
type orderedGroup struct {
	parquet.Group
	names []string
}

func (g orderedGroup) Fields() []parquet.Field {
	byName := make(map[string]parquet.Field, len(g.names))
	for _, f := range g.Group.Fields() {
		byName[f.Name()] = f
	}
	fields := make([]parquet.Field, len(g.names))
	for i, name := range g.names {
		fields[i] = byName[name]
	}
	return fields
}

// Decode parses a Parquet file into a Table. Only flat schemas are
// supported; nested or repeated fields are rejected.
func Decode(data []byte) (*Table, error) {
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	fields := f.Schema().Fields()
	if len(fields) == 0 {
		return nil, errors.New("parquet file has no columns")
	}

	cols := make([]Column, len(fields))
	convs := make([]func(parquet.Value) any, len(fields))
	for i, field := range fields {
		if !field.Leaf() || field.Repeated() {
			return nil, fmt.Errorf("unsupported nested column %q", field.Name())
		}
		colType, conv, err := converterFor(field)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", field.Name(), err)
		}
		cols[i] = Column{Name: field.Name(), Type: colType}
		convs[i] = conv
	}

	for _, rg := range f.RowGroups() {
		rows := rg.Rows()
		buf := make([]parquet.Row, 64)
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				for _, v := range row {
					c := v.Column()
					if c < 0 || c >= len(cols) {
						rows.Close()
						return nil, fmt.Errorf("value for unknown column index %d", c)
					}
					if v.IsNull() {
						cols[c].Values = append(cols[c].Values, nil)
					} else {
						cols[c].Values = append(cols[c].Values, convs[c](v))
					}
				}
			}
			if err != nil {
				rows.Close()
				if errors.Is(err, io.EOF) {
					break
				}
				return nil, fmt.Errorf("read parquet rows: %w", err)
			}
		}
	}

	return New(cols)
}

// nodeOf returns the Parquet node for a column type.
func nodeOf(t ColumnType) parquet.Node {
	switch t {
	case TypeInt64:
		return parquet.Int(64)
	case TypeFloat64:
		return parquet.Leaf(parquet.DoubleType)
	case TypeBool:
		return parquet.Leaf(parquet.BooleanType)
	case TypeTimestamp:
		return parquet.Timestamp(parquet.Microsecond)
	default:
		return parquet.String()
	}
}

// leafValue builds the Parquet value for a canonical cell value.
func leafValue(t ColumnType, v any) (parquet.Value, error) {
	switch t {
	case TypeInt64:
		x, ok := v.(int64)
		if !ok {
			return parquet.Value{}, fmt.Errorf("expected int64, got %T", v)
		}
		return parquet.Int64Value(x), nil
	case TypeFloat64:
		x, ok := v.(float64)
		if !ok {
			return parquet.Value{}, fmt.Errorf("expected float64, got %T", v)
		}
		return parquet.DoubleValue(x), nil
	case TypeBool:
		x, ok := v.(bool)
		if !ok {
			return parquet.Value{}, fmt.Errorf("expected bool, got %T", v)
		}
		return parquet.BooleanValue(x), nil
	case TypeTimestamp:
		x, ok := v.(time.Time)
		if !ok {
			return parquet.Value{}, fmt.Errorf("expected time.Time, got %T", v)
		}
		return parquet.Int64Value(x.UnixMicro()), nil
	default:
		x, ok := v.(string)
		if !ok {
			return parquet.Value{}, fmt.Errorf("expected string, got %T", v)
		}
		return parquet.ByteArrayValue([]byte(x)), nil
	}
}

// converterFor inspects a leaf field and returns the column type plus a
// function converting raw Parquet values to canonical cell values.
func converterFor(field parquet.Field) (ColumnType, func(parquet.Value) any, error) {
	typ := field.Type()
	if lt := typ.LogicalType(); lt != nil && lt.Timestamp != nil {
		conv := timestampConverter(lt.Timestamp.Unit)
		return TypeTimestamp, conv, nil
	}

	switch typ.Kind() {
	case parquet.Boolean:
		return TypeBool, func(v parquet.Value) any { return v.Boolean() }, nil
	case parquet.Int32:
		return TypeInt64, func(v parquet.Value) any { return int64(v.Int32()) }, nil
	case parquet.Int64:
		return TypeInt64, func(v parquet.Value) any { return v.Int64() }, nil
	case parquet.Float:
		return TypeFloat64, func(v parquet.Value) any { return float64(v.Float()) }, nil
	case parquet.Double:
		return TypeFloat64, func(v parquet.Value) any { return v.Double() }, nil
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return TypeString, func(v parquet.Value) any { return string(v.ByteArray()) }, nil
	default:
		return TypeString, nil, fmt.Errorf("unsupported parquet type %s", typ)
	}
}

// timestampConverter maps a Parquet timestamp unit to a time.Time converter.
func timestampConverter(unit format.TimeUnit) func(parquet.Value) any {
	switch {
	case unit.Millis != nil:
		return func(v parquet.Value) any { return time.UnixMilli(v.Int64()).UTC() }
	case unit.Nanos != nil:
		return func(v parquet.Value) any { return time.Unix(0, v.Int64()).UTC() }
	default:
		return func(v parquet.Value) any { return time.UnixMicro(v.Int64()).UTC() }
	}
}
