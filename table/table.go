// Package table converts Google Sheets value ranges into typed, columnar tables.
package table

import (
	"fmt"
	"sort"

	"google.golang.org/api/sheets/v4"

	"github.com/budgetops/budget-sheets/errs"
)

// Column is a named, typed column. Values holds string, int64, float64 or bool
// values according to Type, with nil for blank cells in non-text columns.
type Column struct {
	Name   string
	Type   Type
	Values []any
}

// Table is an ordered set of equal length columns.
type Table struct {
	Columns []Column
}

// FromValueRange marshals the values of a Sheets API response into a Table.
// The first row is the header.
func FromValueRange(data *sheets.ValueRange, types Types) (*Table, error) {
	if data == nil {
		return FromRows(nil, types)
	}

	return FromRows(data.Values, types)
}

// FromRows marshals header+data rows into a Table, converting each column to
// the type given in types.
//
// Column names are the header cells as is. Blank and repeated names are
// allowed but a typed column must name exactly one header cell.
//
// Rows shorter than the header are padded with blank cells, since the Sheets
// API omits trailing empty cells. Rows longer than the header are only
// accepted if the extra cells are blank.
func FromRows(rows [][]interface{}, types Types) (*Table, error) {
	if len(rows) == 0 {
		return &Table{Columns: []Column{}}, nil
	}

	// ... header
	index := map[string][]int{}
	columns := make([]Column, len(rows[0]))

	for i, v := range rows[0] {
		name := format(v)

		index[name] = append(index[name], i)
		columns[i] = Column{
			Name:   name,
			Type:   Text,
			Values: make([]any, 0, len(rows)-1),
		}
	}

	names := make([]string, 0, len(types))
	for k := range types {
		names = append(names, k)
	}

	sort.Strings(names)

	for _, k := range names {
		ix := index[k]
		switch {
		case len(ix) == 0:
			return nil, &errs.DataShapeError{Row: -1, Message: fmt.Sprintf("no column named '%s'", k)}

		case len(ix) > 1:
			return nil, &errs.DataShapeError{Row: -1, Message: fmt.Sprintf("typed column '%s' is not unique (columns %v)", k, ordinals(ix))}
		}

		columns[ix[0]].Type = types[k]
	}

	// ... records
	for r, row := range rows[1:] {
		if len(row) > len(columns) {
			for _, v := range row[len(columns):] {
				if !blank(v) {
					return nil, &errs.DataShapeError{
						Row:     r,
						Message: fmt.Sprintf("has %d cells but the header has %d columns", len(row), len(columns)),
					}
				}
			}
		}

		for c := range columns {
			var v any
			if c < len(row) {
				v = row[c]
			}

			value, err := coerce(v, columns[c].Type)
			if err != nil {
				return nil, &errs.TypeCoercionError{
					Row:    r,
					Column: columns[c].Name,
					Value:  v,
					Type:   columns[c].Type.String(),
					Err:    err,
				}
			}

			columns[c].Values = append(columns[c].Values, value)
		}
	}

	return &Table{Columns: columns}, nil
}

// Header returns the column names in order.
func (t *Table) Header() []string {
	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name
	}

	return header
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}

	return len(t.Columns[0].Values)
}

// Row returns the values of data row i in column order.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.Columns))
	for c, column := range t.Columns {
		row[c] = column.Values[i]
	}

	return row
}

// Column returns the first column with the name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}

	return nil, false
}

// Records returns the data rows formatted as strings.
func (t *Table) Records() [][]string {
	records := make([][]string, t.Len())
	for i := range records {
		record := make([]string, len(t.Columns))
		for c, column := range t.Columns {
			record[c] = format(column.Values[i])
		}

		records[i] = record
	}

	return records
}

// ordinals converts column indices to 1-based column numbers.
func ordinals(ix []int) []int {
	list := make([]int, len(ix))
	for i, v := range ix {
		list[i] = v + 1
	}

	return list
}
