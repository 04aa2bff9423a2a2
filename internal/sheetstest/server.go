// Package sheetstest provides an in-memory fake of the parts of the Google
// Sheets v4 REST API used by budget-sheets.
package sheetstest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/budgetops/budget-sheets/auth"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Sheet is a worksheet held by the fake server. Values is indexed [row][column].
type Sheet struct {
	ID     int64
	Title  string
	Values [][]string
}

type spreadsheet struct {
	id     string
	sheets []*Sheet
}

type failure struct {
	code    int
	message string
}

// Server is a fake Sheets API endpoint.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	spreadsheets map[string]*spreadsheet
	next         int64
	calls        []string
	failures     map[string]failure
}

// New starts a fake Sheets API server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		spreadsheets: map[string]*spreadsheet{},
		next:         1000000001,
		failures:     map[string]failure{},
	}

	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)

	return s
}

// Handle returns an auth.Handle whose Sheets service talks to the fake server.
func (s *Server) Handle(t testing.TB) *auth.Handle {
	t.Helper()

	service, err := sheets.NewService(context.Background(), option.WithHTTPClient(s.Client()), option.WithEndpoint(s.URL+"/"))
	if err != nil {
		t.Fatalf("unable to create Sheets client (%v)", err)
	}

	return &auth.Handle{
		Service: service,
		Scopes:  []string{auth.SHEETS},
	}
}

// Add creates (or replaces) a spreadsheet.
func (s *Server) Add(id string, list ...Sheet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss := &spreadsheet{id: id}
	for _, sheet := range list {
		sheet := sheet
		sheet.Values = clone(sheet.Values)
		ss.sheets = append(ss.sheets, &sheet)
	}

	s.spreadsheets[id] = ss
}

// Sheets returns a snapshot of the worksheets in a spreadsheet.
func (s *Server) Sheets(id string) []Sheet {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := []Sheet{}
	if ss, ok := s.spreadsheets[id]; ok {
		for _, sheet := range ss.sheets {
			list = append(list, Sheet{ID: sheet.ID, Title: sheet.Title, Values: clone(sheet.Values)})
		}
	}

	return list
}

// Calls returns the API operations served so far, e.g. "values.get".
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.calls...)
}

// Fail makes the next call to op fail with the given HTTP status and message.
func (s *Server) Fail(op string, code int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[op] = failure{code: code, message: message}
}

type apiError struct {
	code    int
	message string
}

func (s *Server) serve(w http.ResponseWriter, rq *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := strings.TrimPrefix(rq.URL.Path, "/v4/spreadsheets/")
	op, id, arg := route(rq.Method, path)

	s.calls = append(s.calls, op)

	if f, ok := s.failures[op]; ok {
		delete(s.failures, op)
		reply(w, f.code, errorBody(f.code, f.message))
		return
	}

	if op == "" {
		reply(w, http.StatusNotFound, errorBody(http.StatusNotFound, "Not Found"))
		return
	}

	ss, ok := s.spreadsheets[id]
	if !ok {
		reply(w, http.StatusNotFound, errorBody(http.StatusNotFound, "Requested entity was not found."))
		return
	}

	body, _ := io.ReadAll(rq.Body)

	var v any
	var err *apiError

	switch op {
	case "spreadsheets.get":
		v = s.describe(ss)
	case "values.get":
		v, err = s.get(ss, arg)
	case "values.clear":
		v, err = s.clear(ss, arg)
	case "values.batchClearByDataFilter":
		v, err = s.clearByFilter(ss, body)
	case "sheets.copyTo":
		v, err = s.copyTo(ss, arg, body)
	case "batchUpdate":
		v, err = s.batchUpdate(ss, body)
	}

	if err != nil {
		reply(w, err.code, errorBody(err.code, err.message))
		return
	}

	reply(w, http.StatusOK, v)
}

func route(method, path string) (op, id, arg string) {
	switch {
	case method == http.MethodGet && !strings.Contains(path, "/"):
		return "spreadsheets.get", path, ""

	case method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate") && !strings.Contains(path, "/"):
		return "batchUpdate", strings.TrimSuffix(path, ":batchUpdate"), ""

	case method == http.MethodPost && strings.HasSuffix(path, "/values:batchClearByDataFilter"):
		return "values.batchClearByDataFilter", strings.TrimSuffix(path, "/values:batchClearByDataFilter"), ""
	}

	id, rest, ok := strings.Cut(path, "/")
	if !ok {
		return "", "", ""
	}

	switch {
	case method == http.MethodGet && strings.HasPrefix(rest, "values/"):
		return "values.get", id, strings.TrimPrefix(rest, "values/")

	case method == http.MethodPost && strings.HasPrefix(rest, "values/") && strings.HasSuffix(rest, ":clear"):
		return "values.clear", id, strings.TrimSuffix(strings.TrimPrefix(rest, "values/"), ":clear")

	case method == http.MethodPost && strings.HasPrefix(rest, "sheets/") && strings.HasSuffix(rest, ":copyTo"):
		return "sheets.copyTo", id, strings.TrimSuffix(strings.TrimPrefix(rest, "sheets/"), ":copyTo")
	}

	return "", "", ""
}

func (s *Server) describe(ss *spreadsheet) map[string]any {
	list := []any{}
	for i, sheet := range ss.sheets {
		list = append(list, map[string]any{"properties": properties(sheet, i)})
	}

	return map[string]any{
		"spreadsheetId": ss.id,
		"sheets":        list,
	}
}

func (s *Server) get(ss *spreadsheet, a1 string) (any, *apiError) {
	sheet, r, err := resolve(ss, a1)
	if err != nil {
		return nil, err
	}

	rows := [][]string{}
	for i := r.top; i < len(sheet.Values) && (r.bottom < 0 || i <= r.bottom); i++ {
		row := []string{}
		for j := r.left; j < len(sheet.Values[i]) && (r.right < 0 || j <= r.right); j++ {
			row = append(row, sheet.Values[i][j])
		}

		for len(row) > 0 && row[len(row)-1] == "" {
			row = row[:len(row)-1]
		}

		rows = append(rows, row)
	}

	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}

	v := map[string]any{
		"range":          a1,
		"majorDimension": "ROWS",
	}

	if len(rows) > 0 {
		v["values"] = rows
	}

	return v, nil
}

func (s *Server) clear(ss *spreadsheet, a1 string) (any, *apiError) {
	sheet, r, err := resolve(ss, a1)
	if err != nil {
		return nil, err
	}

	blank(sheet, r)

	return map[string]any{
		"spreadsheetId": ss.id,
		"clearedRange":  a1,
	}, nil
}

func (s *Server) clearByFilter(ss *spreadsheet, body []byte) (any, *apiError) {
	var rq struct {
		DataFilters []struct {
			GridRange *struct {
				SheetID          *int64 `json:"sheetId"`
				StartRowIndex    int    `json:"startRowIndex"`
				EndRowIndex      int    `json:"endRowIndex"`
				StartColumnIndex int    `json:"startColumnIndex"`
				EndColumnIndex   int    `json:"endColumnIndex"`
			} `json:"gridRange"`
		} `json:"dataFilters"`
	}

	if err := json.Unmarshal(body, &rq); err != nil {
		return nil, &apiError{http.StatusBadRequest, err.Error()}
	}

	cleared := []string{}
	for i, f := range rq.DataFilters {
		g := f.GridRange
		if g == nil || g.SheetID == nil {
			return nil, &apiError{http.StatusBadRequest, fmt.Sprintf("Invalid dataFilters[%d]: gridRange.sheetId is required", i)}
		}

		sheet := find(ss, *g.SheetID)
		if sheet == nil {
			return nil, &apiError{http.StatusBadRequest, fmt.Sprintf("Invalid dataFilters[%d]: No grid with id: %d", i, *g.SheetID)}
		}

		r := area{top: g.StartRowIndex, left: g.StartColumnIndex, bottom: g.EndRowIndex - 1, right: g.EndColumnIndex - 1}
		if g.EndRowIndex == 0 {
			r.bottom = -1
		}
		if g.EndColumnIndex == 0 {
			r.right = -1
		}

		blank(sheet, r)
		cleared = append(cleared, a1(sheet, r))
	}

	return map[string]any{
		"spreadsheetId": ss.id,
		"clearedRanges": cleared,
	}, nil
}

func (s *Server) copyTo(ss *spreadsheet, arg string, body []byte) (any, *apiError) {
	var rq struct {
		DestinationSpreadsheetID string `json:"destinationSpreadsheetId"`
	}

	if err := json.Unmarshal(body, &rq); err != nil {
		return nil, &apiError{http.StatusBadRequest, err.Error()}
	}

	sheetID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return nil, &apiError{http.StatusBadRequest, fmt.Sprintf("Invalid sheet id %q", arg)}
	}

	source := find(ss, sheetID)
	if source == nil {
		return nil, &apiError{http.StatusNotFound, "Requested entity was not found."}
	}

	destination, ok := s.spreadsheets[rq.DestinationSpreadsheetID]
	if !ok {
		return nil, &apiError{http.StatusNotFound, "Requested entity was not found."}
	}

	title := "Copy of " + source.Title
	for n := 2; titled(destination, title) != nil; n++ {
		title = fmt.Sprintf("Copy of %s %d", source.Title, n)
	}

	sheet := &Sheet{ID: s.next, Title: title, Values: clone(source.Values)}
	s.next++
	destination.sheets = append(destination.sheets, sheet)

	return properties(sheet, len(destination.sheets)-1), nil
}

func (s *Server) batchUpdate(ss *spreadsheet, body []byte) (any, *apiError) {
	type props struct {
		SheetID *int64 `json:"sheetId"`
		Title   string `json:"title"`
	}

	var rq struct {
		Requests []struct {
			AddSheet *struct {
				Properties props `json:"properties"`
			} `json:"addSheet"`
			DeleteSheet *struct {
				SheetID *int64 `json:"sheetId"`
			} `json:"deleteSheet"`
			UpdateSheetProperties *struct {
				Properties props  `json:"properties"`
				Fields     string `json:"fields"`
			} `json:"updateSheetProperties"`
		} `json:"requests"`
		IncludeSpreadsheetInResponse bool `json:"includeSpreadsheetInResponse"`
	}

	if err := json.Unmarshal(body, &rq); err != nil {
		return nil, &apiError{http.StatusBadRequest, err.Error()}
	}

	replies := []any{}
	for i, r := range rq.Requests {
		switch {
		case r.AddSheet != nil:
			p := r.AddSheet.Properties
			id := s.next
			if p.SheetID != nil {
				id = *p.SheetID
			} else {
				s.next++
			}

			if find(ss, id) != nil {
				return nil, &apiError{http.StatusBadRequest, fmt.Sprintf("Invalid requests[%d].addSheet: A sheet with the id %d already exists.", i, id)}
			}

			title := p.Title
			if title == "" {
				title = fmt.Sprintf("Sheet%d", len(ss.sheets)+1)
			}

			if titled(ss, title) != nil {
				return nil, &apiError{http.StatusBadRequest, fmt.Sprintf("Invalid requests[%d].addSheet: A sheet with the name \"%s\" already exists. Please enter another name.", i, title)}
			}

			sheet := &Sheet{ID: id, Title: title}
			ss.sheets = append(ss.sheets, sheet)
			replies = append(replies, map[string]any{"addSheet": map[string]any{"properties": properties(sheet, len(ss.sheets)-1)}})

		case r.DeleteSheet != nil:
			if r.DeleteSheet.SheetID == nil {
				return nil, &apiError{http.StatusBadRequest, fmt.Sprintf("Invalid requests[%d].deleteSheet: sheetId is required", i)}
			}

			id := *r.DeleteSheet.SheetID
			if find(ss, id) == nil {
				return nil, &apiError{http.StatusBadRequest, fmt.Sprintf("Invalid requests[%d].deleteSheet: No sheet with id: %d", i, id)}
			}

			if len(ss.sheets) == 1 {
				return nil, &apiError{http.StatusBadRequest, fmt.Sprintf("Invalid requests[%d].deleteSheet: You can't remove all the sheets in a document.", i)}
			}

			list := []*Sheet{}
			for _, sheet := range ss.sheets {
				if sheet.ID != id {
					list = append(list, sheet)
				}
			}

			ss.sheets = list
			replies = append(replies, map[string]any{})

		case r.UpdateSheetProperties != nil:
			p := r.UpdateSheetProperties.Properties
			if p.SheetID == nil {
				return nil, &apiError{http.StatusBadRequest, fmt.Sprintf("Invalid requests[%d].updateSheetProperties: sheetId is required", i)}
			}

			sheet := find(ss, *p.SheetID)
			if sheet == nil {
				return nil, &apiError{http.StatusBadRequest, fmt.Sprintf("Invalid requests[%d].updateSheetProperties: No grid with id: %d", i, *p.SheetID)}
			}

			if r.UpdateSheetProperties.Fields == "title" {
				if other := titled(ss, p.Title); other != nil && other != sheet {
					return nil, &apiError{http.StatusBadRequest, fmt.Sprintf("Invalid requests[%d].updateSheetProperties: A sheet with the name \"%s\" already exists. Please enter another name.", i, p.Title)}
				}

				sheet.Title = p.Title
			}

			replies = append(replies, map[string]any{})

		default:
			return nil, &apiError{http.StatusBadRequest, fmt.Sprintf("Invalid requests[%d]: unsupported request", i)}
		}
	}

	v := map[string]any{
		"spreadsheetId": ss.id,
		"replies":       replies,
	}

	if rq.IncludeSpreadsheetInResponse {
		v["updatedSpreadsheet"] = s.describe(ss)
	}

	return v, nil
}

type area struct {
	top, left     int
	bottom, right int // inclusive, -1 is unbounded
}

var a1cells = regexp.MustCompile(`^([A-Za-z]*)([0-9]*)(?::([A-Za-z]*)([0-9]*))?$`)

// resolve parses an A1 range such as "Summary", "'My Sheet'!A2:C" or
// "Transactions!B5:I80".
func resolve(ss *spreadsheet, a1 string) (*Sheet, area, *apiError) {
	title, cells, _ := strings.Cut(a1, "!")
	title = strings.ReplaceAll(strings.TrimSuffix(strings.TrimPrefix(title, "'"), "'"), "''", "'")

	sheet := titled(ss, title)
	if sheet == nil {
		return nil, area{}, &apiError{http.StatusBadRequest, fmt.Sprintf("Unable to parse range: %s", a1)}
	}

	r := area{bottom: -1, right: -1}
	if cells == "" {
		return sheet, r, nil
	}

	match := a1cells.FindStringSubmatch(cells)
	if match == nil {
		return nil, area{}, &apiError{http.StatusBadRequest, fmt.Sprintf("Unable to parse range: %s", a1)}
	}

	if match[1] != "" {
		r.left = column(match[1])
	}
	if match[2] != "" {
		r.top, _ = strconv.Atoi(match[2])
		r.top--
	}

	if strings.Contains(cells, ":") {
		if match[3] != "" {
			r.right = column(match[3])
		}
		if match[4] != "" {
			r.bottom, _ = strconv.Atoi(match[4])
			r.bottom--
		}
	} else {
		r.right, r.bottom = r.left, r.top
	}

	return sheet, r, nil
}

func column(letters string) int {
	n := 0
	for _, c := range strings.ToUpper(letters) {
		n = n*26 + int(c-'A'+1)
	}

	return n - 1
}

func letters(col int) string {
	s := ""
	for col++; col > 0; col = (col - 1) / 26 {
		s = string(rune('A'+(col-1)%26)) + s
	}

	return s
}

func a1(sheet *Sheet, r area) string {
	start := fmt.Sprintf("%s%d", letters(r.left), r.top+1)

	var end string
	if r.right >= 0 {
		end = letters(r.right)
	} else {
		end = letters(25)
	}

	if r.bottom >= 0 {
		end += strconv.Itoa(r.bottom + 1)
	} else {
		end += strconv.Itoa(1000)
	}

	return fmt.Sprintf("'%s'!%s:%s", sheet.Title, start, end)
}

func blank(sheet *Sheet, r area) {
	for i := r.top; i < len(sheet.Values) && (r.bottom < 0 || i <= r.bottom); i++ {
		for j := r.left; j < len(sheet.Values[i]) && (r.right < 0 || j <= r.right); j++ {
			sheet.Values[i][j] = ""
		}
	}
}

func find(ss *spreadsheet, id int64) *Sheet {
	for _, sheet := range ss.sheets {
		if sheet.ID == id {
			return sheet
		}
	}

	return nil
}

func titled(ss *spreadsheet, title string) *Sheet {
	for _, sheet := range ss.sheets {
		if strings.EqualFold(sheet.Title, title) {
			return sheet
		}
	}

	return nil
}

func properties(sheet *Sheet, index int) map[string]any {
	return map[string]any{
		"sheetId":   sheet.ID,
		"title":     sheet.Title,
		"index":     index,
		"sheetType": "GRID",
		"gridProperties": map[string]any{
			"rowCount":    1000,
			"columnCount": 26,
		},
	}
}

func clone(values [][]string) [][]string {
	if values == nil {
		return nil
	}

	rows := make([][]string, len(values))
	for i, row := range values {
		rows[i] = append([]string(nil), row...)
	}

	return rows
}

func errorBody(code int, message string) map[string]any {
	return map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
			"status":  http.StatusText(code),
		},
	}
}

func reply(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
