package worksheet

import (
	"context"
	"fmt"

	"google.golang.org/api/sheets/v4"

	"github.com/budgetops/budget-sheets/auth"
	"github.com/budgetops/budget-sheets/errs"
)

// Copy duplicates a worksheet into destinationID, or into the same
// spreadsheet if destinationID is empty, and returns the new worksheet.
func Copy(ctx context.Context, h *auth.Handle, spreadsheetID string, sheetID int64, destinationID string) (*sheets.SheetProperties, error) {
	google, err := service(h)
	if err != nil {
		return nil, err
	}

	if destinationID == "" {
		destinationID = spreadsheetID
	}

	rq := sheets.CopySheetToAnotherSpreadsheetRequest{
		DestinationSpreadsheetId: destinationID,
	}

	properties, err := google.Spreadsheets.Sheets.CopyTo(spreadsheetID, sheetID, &rq).Context(ctx).Do()
	if err != nil {
		return nil, errs.Remote("sheets.copyTo", err)
	}

	return properties, nil
}

// Create adds an empty worksheet with the given ID and title.
func Create(ctx context.Context, h *auth.Handle, spreadsheetID string, sheetID int64, title string) (*sheets.SheetProperties, error) {
	rq := sheets.Request{
		AddSheet: &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{
				SheetId:         sheetID,
				Title:           title,
				ForceSendFields: []string{"SheetId"},
			},
		},
	}

	response, err := batchUpdate(ctx, h, spreadsheetID, "batchUpdate.addSheet", &rq, false)
	if err != nil {
		return nil, err
	}

	if len(response.Replies) == 0 || response.Replies[0].AddSheet == nil || response.Replies[0].AddSheet.Properties == nil {
		return nil, &errs.RemoteAPIError{Op: "batchUpdate.addSheet", Message: "response did not include the new worksheet"}
	}

	return response.Replies[0].AddSheet.Properties, nil
}

// Rename changes the title of a worksheet. Title uniqueness is enforced by the
// API.
func Rename(ctx context.Context, h *auth.Handle, spreadsheetID string, sheetID int64, title string) (*sheets.SheetProperties, error) {
	rq := sheets.Request{
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId:         sheetID,
				Title:           title,
				ForceSendFields: []string{"SheetId"},
			},
			Fields: "title",
		},
	}

	response, err := batchUpdate(ctx, h, spreadsheetID, "batchUpdate.updateSheetProperties", &rq, true)
	if err != nil {
		return nil, err
	}

	if response.UpdatedSpreadsheet != nil {
		for _, sheet := range response.UpdatedSpreadsheet.Sheets {
			if sheet.Properties != nil && sheet.Properties.SheetId == sheetID {
				return sheet.Properties, nil
			}
		}
	}

	return &sheets.SheetProperties{SheetId: sheetID, Title: title}, nil
}

// Delete removes a worksheet. This cannot be undone.
func Delete(ctx context.Context, h *auth.Handle, spreadsheetID string, sheetID int64) error {
	rq := sheets.Request{
		DeleteSheet: &sheets.DeleteSheetRequest{
			SheetId:         sheetID,
			ForceSendFields: []string{"SheetId"},
		},
	}

	_, err := batchUpdate(ctx, h, spreadsheetID, "batchUpdate.deleteSheet", &rq, false)

	return err
}

func batchUpdate(ctx context.Context, h *auth.Handle, spreadsheetID, op string, request *sheets.Request, include bool) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	google, err := service(h)
	if err != nil {
		return nil, err
	}

	rq := sheets.BatchUpdateSpreadsheetRequest{
		Requests:                     []*sheets.Request{request},
		IncludeSpreadsheetInResponse: include,
	}

	response, err := google.Spreadsheets.BatchUpdate(spreadsheetID, &rq).Context(ctx).Do()
	if err != nil {
		return nil, errs.Remote(op, err)
	}

	return response, nil
}

// GridRange is a rectangular block of cells on a worksheet, using zero-based
// row and column indices with exclusive end bounds. A zero end index leaves
// that side of the range unbounded.
type GridRange struct {
	SheetID     int64
	StartRow    int64
	EndRow      int64
	StartColumn int64
	EndColumn   int64
}

func (g GridRange) String() string {
	bound := func(start, end int64) string {
		if end == 0 {
			return fmt.Sprintf("%d-", start)
		}

		return fmt.Sprintf("%d-%d", start, end)
	}

	return fmt.Sprintf("sheet %d rows %s columns %s", g.SheetID, bound(g.StartRow, g.EndRow), bound(g.StartColumn, g.EndColumn))
}

func (g GridRange) grid() *sheets.GridRange {
	return &sheets.GridRange{
		SheetId:          g.SheetID,
		StartRowIndex:    g.StartRow,
		EndRowIndex:      g.EndRow,
		StartColumnIndex: g.StartColumn,
		EndColumnIndex:   g.EndColumn,
		ForceSendFields:  []string{"SheetId"},
	}
}

// Cleared describes the ranges whose values were cleared.
type Cleared struct {
	SpreadsheetID string
	Ranges        []string
}

// Target is the region cleared by Clear: a whole worksheet, an A1 range or a
// grid range.
type Target interface {
	clear(ctx context.Context, google *sheets.Service, spreadsheetID string) (*Cleared, error)
	fmt.Stringer
}

type sheetTarget int64

type rangeTarget string

type gridTarget GridRange

// Sheet targets every cell of a worksheet.
func Sheet(sheetID int64) Target {
	return sheetTarget(sheetID)
}

// Range targets an A1 notation range, e.g. 'Transactions!B5:I80'.
func Range(a1 string) Target {
	return rangeTarget(a1)
}

// Grid targets a block of cells by index.
func Grid(g GridRange) Target {
	return gridTarget(g)
}

// Clear removes the values, but not the formatting, in target.
func Clear(ctx context.Context, h *auth.Handle, spreadsheetID string, target Target) (*Cleared, error) {
	google, err := service(h)
	if err != nil {
		return nil, err
	}

	if target == nil {
		return nil, &errs.ConfigurationError{Field: "target", Message: "is required"}
	}

	return target.clear(ctx, google, spreadsheetID)
}

func (t sheetTarget) clear(ctx context.Context, google *sheets.Service, spreadsheetID string) (*Cleared, error) {
	return clearByFilter(ctx, google, spreadsheetID, GridRange{SheetID: int64(t)})
}

func (t sheetTarget) String() string {
	return fmt.Sprintf("sheet %d", int64(t))
}

func (t gridTarget) clear(ctx context.Context, google *sheets.Service, spreadsheetID string) (*Cleared, error) {
	return clearByFilter(ctx, google, spreadsheetID, GridRange(t))
}

func (t gridTarget) String() string {
	return GridRange(t).String()
}

func (t rangeTarget) clear(ctx context.Context, google *sheets.Service, spreadsheetID string) (*Cleared, error) {
	response, err := google.Spreadsheets.Values.Clear(spreadsheetID, string(t), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return nil, errs.Remote("values.clear", err)
	}

	return &Cleared{
		SpreadsheetID: response.SpreadsheetId,
		Ranges:        []string{response.ClearedRange},
	}, nil
}

func (t rangeTarget) String() string {
	return string(t)
}

func clearByFilter(ctx context.Context, google *sheets.Service, spreadsheetID string, g GridRange) (*Cleared, error) {
	rq := sheets.BatchClearValuesByDataFilterRequest{
		DataFilters: []*sheets.DataFilter{
			{GridRange: g.grid()},
		},
	}

	response, err := google.Spreadsheets.Values.BatchClearByDataFilter(spreadsheetID, &rq).Context(ctx).Do()
	if err != nil {
		return nil, errs.Remote("values.batchClearByDataFilter", err)
	}

	return &Cleared{
		SpreadsheetID: response.SpreadsheetId,
		Ranges:        response.ClearedRanges,
	}, nil
}
