// Package worksheet reads sheet ranges and manages the worksheets (tabs) of a
// Google Sheets spreadsheet. Every function is a single request to the Sheets
// API: there are no retries and nothing is cached. Any failure reported by the
// API is returned as an *errs.RemoteAPIError.
package worksheet

import (
	"context"
	"strings"

	"google.golang.org/api/sheets/v4"

	"github.com/budgetops/budget-sheets/auth"
	"github.com/budgetops/budget-sheets/errs"
)

type ReadOption func(*sheets.SpreadsheetsValuesGetCall)

// Unformatted returns numbers and booleans as JSON values rather than as the
// strings displayed in the sheet.
func Unformatted() ReadOption {
	return func(call *sheets.SpreadsheetsValuesGetCall) {
		call.ValueRenderOption("UNFORMATTED_VALUE")
	}
}

// FetchRange retrieves the cell values in rangeExpr. The range is not
// validated locally: a malformed range is reported by the API.
func FetchRange(ctx context.Context, h *auth.Handle, spreadsheetID, rangeExpr string, opts ...ReadOption) (*sheets.ValueRange, error) {
	google, err := service(h)
	if err != nil {
		return nil, err
	}

	call := google.Spreadsheets.Values.Get(spreadsheetID, rangeExpr)
	for _, opt := range opts {
		opt(call)
	}

	response, err := call.Context(ctx).Do()
	if err != nil {
		return nil, errs.Remote("values.get", err)
	}

	return response, nil
}

// List returns the properties of every worksheet in the spreadsheet, in tab
// order.
func List(ctx context.Context, h *auth.Handle, spreadsheetID string) ([]*sheets.SheetProperties, error) {
	google, err := service(h)
	if err != nil {
		return nil, err
	}

	spreadsheet, err := google.Spreadsheets.Get(spreadsheetID).Fields("spreadsheetId", "sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, errs.Remote("spreadsheets.get", err)
	}

	list := []*sheets.SheetProperties{}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil {
			list = append(list, sheet.Properties)
		}
	}

	return list, nil
}

// Find returns the worksheet with the given title, ignoring case and
// surrounding whitespace.
func Find(list []*sheets.SheetProperties, title string) (*sheets.SheetProperties, bool) {
	for _, p := range list {
		if strings.EqualFold(strings.TrimSpace(p.Title), strings.TrimSpace(title)) {
			return p, true
		}
	}

	return nil, false
}

// FindID returns the worksheet with the given sheet ID.
func FindID(list []*sheets.SheetProperties, sheetID int64) (*sheets.SheetProperties, bool) {
	for _, p := range list {
		if p.SheetId == sheetID {
			return p, true
		}
	}

	return nil, false
}

func service(h *auth.Handle) (*sheets.Service, error) {
	if h == nil || h.Service == nil {
		return nil, &errs.ConfigurationError{Field: "handle", Message: "is not authorised"}
	}

	return h.Service, nil
}
