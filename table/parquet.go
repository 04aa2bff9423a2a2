package table

import (
	"bytes"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
)

// WriteParquet writes the table as a single row group Parquet file with one
// optional column per table column. Blank cells in typed columns are written
// as nulls. Parquet orders the columns by name. Blank column names are
// written as 'column_<n>' and repeated names get a '_<n>' suffix, where n is
// the 1-based column number.
func (t *Table) WriteParquet(w io.Writer) error {
	fields := t.fields()
	schema := t.schema(fields)

	lookup := make(map[string]int, len(fields))
	for i, f := range fields {
		lookup[f] = i
	}

	order := make([]int, 0, len(fields))
	for _, f := range schema.Fields() {
		order = append(order, lookup[f.Name()])
	}

	rows := parquet.NewBuffer(schema)
	for r := 0; r < t.Len(); r++ {
		row := make(parquet.Row, len(order))
		for i, ix := range order {
			c := t.Columns[ix]

			v, err := value(c.Values[r], c.Type)
			if err != nil {
				return fmt.Errorf("row %d, column '%s' (%w)", r, c.Name, err)
			}

			if v.IsNull() {
				row[i] = v.Level(0, 0, i)
			} else {
				row[i] = v.Level(0, 1, i)
			}
		}

		if _, err := rows.WriteRows([]parquet.Row{row}); err != nil {
			return fmt.Errorf("error writing row %d (%w)", r, err)
		}
	}

	var b bytes.Buffer

	writer := parquet.NewWriter(&b, schema, parquet.Compression(&parquet.Snappy))
	if _, err := writer.WriteRowGroup(rows); err != nil {
		_ = writer.Close()
		return err
	}

	if err := writer.Close(); err != nil {
		return err
	}

	_, err := io.Copy(w, &b)

	return err
}

// fields returns a unique, non-blank Parquet field name for each column.
func (t *Table) fields() []string {
	fields := make([]string, len(t.Columns))
	used := map[string]bool{}

	for i, c := range t.Columns {
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}

		for used[name] {
			name = fmt.Sprintf("%s_%d", name, i+1)
		}

		used[name] = true
		fields[i] = name
	}

	return fields
}

func (t *Table) schema(fields []string) *parquet.Schema {
	group := parquet.Group{}
	for i, c := range t.Columns {
		var node parquet.Node

		switch c.Type {
		case Integer:
			node = parquet.Int(64)
		case Float:
			node = parquet.Leaf(parquet.DoubleType)
		case Boolean:
			node = parquet.Leaf(parquet.BooleanType)
		default:
			node = parquet.String()
		}

		group[fields[i]] = parquet.Optional(node)
	}

	return parquet.NewSchema("budget", group)
}

func value(v any, t Type) (parquet.Value, error) {
	if v == nil {
		return parquet.NullValue(), nil
	}

	switch t {
	case Integer:
		if i, ok := v.(int64); ok {
			return parquet.Int64Value(i), nil
		}

	case Float:
		if f, ok := v.(float64); ok {
			return parquet.DoubleValue(f), nil
		}

	case Boolean:
		if b, ok := v.(bool); ok {
			return parquet.BooleanValue(b), nil
		}

	default:
		if s, ok := v.(string); ok {
			return parquet.ByteArrayValue([]byte(s)), nil
		}
	}

	return parquet.Value{}, fmt.Errorf("unexpected %T value for %v column", v, t)
}
