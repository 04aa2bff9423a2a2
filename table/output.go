package table

import (
	"encoding/csv"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/xuri/excelize/v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteTSV writes the header and records as tab separated values.
func (t *Table) WriteTSV(f io.Writer) error {
	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(t.Header()); err != nil {
		return err
	}

	for _, record := range t.Records() {
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

type jsonColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type jsonTable struct {
	Columns []jsonColumn `json:"columns"`
	Rows    [][]any      `json:"rows"`
}

// WriteJSON writes the table as a {"columns": [...], "rows": [[...]]} object.
// Rows keep their typed values so integers, floats and booleans are written
// as JSON numbers and booleans.
func (t *Table) WriteJSON(f io.Writer, pretty bool) error {
	v := jsonTable{
		Columns: make([]jsonColumn, len(t.Columns)),
		Rows:    make([][]any, t.Len()),
	}

	for i, c := range t.Columns {
		v.Columns[i] = jsonColumn{Name: c.Name, Type: c.Type.String()}
	}

	for i := range v.Rows {
		v.Rows[i] = t.Row(i)
	}

	encoder := json.NewEncoder(f)
	if pretty {
		encoder.SetIndent("", "  ")
	}

	return encoder.Encode(v)
}

// WriteXLSX writes the table to a single worksheet workbook.
func (t *Table) WriteXLSX(f io.Writer, sheet string) error {
	book := excelize.NewFile()
	defer book.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}

	if sheet != "Sheet1" {
		if err := book.SetSheetName("Sheet1", sheet); err != nil {
			return err
		}
	}

	header := make([]any, len(t.Columns))
	for i, name := range t.Header() {
		header[i] = name
	}

	if err := book.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i := 0; i < t.Len(); i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		row := t.Row(i)
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("error writing row %d (%w)", i+1, err)
		}
	}

	return book.Write(f)
}
