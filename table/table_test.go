package table

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/sheets/v4"

	"github.com/budgetops/budget-sheets/errs"
)

func TestFromValueRange(t *testing.T) {
	expected := Table{
		Columns: []Column{
			{Name: "Name", Type: Text, Values: []any{"Joe", "James"}},
			{Name: "Pay", Type: Float, Values: []any{1.12, 1.01}},
		},
	}

	var data = sheets.ValueRange{
		Values: [][]interface{}{
			[]interface{}{"Name", "Pay"},
			[]interface{}{"Joe", "1.12"},
			[]interface{}{"James", "1.01"},
		},
	}

	table, err := FromValueRange(&data, Types{"Name": Text, "Pay": Float})
	if err != nil {
		t.Fatalf("Unexpected error returned from FromValueRange (%v)", err)
	}

	if !reflect.DeepEqual(*table, expected) {
		t.Errorf("Incorrect table\n   expected: %v\n   got:      %v\n", expected, *table)
	}

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []any{"Joe", 1.12}, table.Row(0))
	assert.Equal(t, []any{"James", 1.01}, table.Row(1))
}

func TestFromRowsWithMixedTypes(t *testing.T) {
	data := [][]interface{}{
		[]interface{}{"Name", "Pay", "Column 1", "Column 2"},
		[]interface{}{"Joe", "1.12", "2", "3"},
		[]interface{}{"James", "1.01", "4", "5"},
		[]interface{}{"Jack", "1.92", "6", "7"},
		[]interface{}{"Jane", "1.34", "8", "9"},
	}

	table, err := FromRows(data, Types{"Name": Text, "Pay": Float, "Column 1": Integer, "Column 2": Integer})
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Pay", "Column 1", "Column 2"}, table.Header())
	assert.Equal(t, 4, table.Len())
	assert.Equal(t, []any{"Jack", 1.92, int64(6), int64(7)}, table.Row(2))

	column, ok := table.Column("Column 2")
	require.True(t, ok)
	assert.Equal(t, Integer, column.Type)
	assert.Equal(t, []any{int64(3), int64(5), int64(7), int64(9)}, column.Values)
}

func TestFromRowsPreservesHeaderAndRowOrder(t *testing.T) {
	data := [][]interface{}{
		[]interface{}{"Tower", "Gate", "Amount", "Dungeon"},
		[]interface{}{"c", "b", "3", "z"},
		[]interface{}{"a", "y", "1", "x"},
		[]interface{}{"b", "a", "2", "y"},
	}

	table, err := FromRows(data, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Tower", "Gate", "Amount", "Dungeon"}, table.Header())
	assert.Equal(t, len(data)-1, table.Len())
	assert.Equal(t, [][]string{{"c", "b", "3", "z"}, {"a", "y", "1", "x"}, {"b", "a", "2", "y"}}, table.Records())
}

func TestFromRowsWithHeaderOnly(t *testing.T) {
	data := [][]interface{}{
		[]interface{}{"Name", "Pay"},
	}

	table, err := FromRows(data, Types{"Pay": Float})
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Pay"}, table.Header())
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Records())
}

func TestFromRowsWithEmptySheet(t *testing.T) {
	for _, data := range []*sheets.ValueRange{nil, {}, {Values: [][]interface{}{}}} {
		table, err := FromValueRange(data, Types{"Pay": Float})
		require.NoError(t, err)

		assert.Empty(t, table.Header())
		assert.Equal(t, 0, table.Len())
	}
}

func TestFromRowsWithShortRows(t *testing.T) {
	data := [][]interface{}{
		[]interface{}{"Category", "Budget", "Spent", "Paid"},
		[]interface{}{"Groceries", "400", "312.50", "TRUE"},
		[]interface{}{"Rent", "1,250.00"},
		[]interface{}{"Utilities"},
	}

	table, err := FromRows(data, Types{"Budget": Float, "Spent": Float, "Paid": Boolean})
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []any{"Groceries", 400.0, 312.5, true}, table.Row(0))
	assert.Equal(t, []any{"Rent", 1250.0, nil, nil}, table.Row(1))
	assert.Equal(t, []any{"Utilities", nil, nil, nil}, table.Row(2))
	assert.Equal(t, []string{"Utilities", "", "", ""}, table.Records()[2])
}

func TestFromRowsWithBlankTextCells(t *testing.T) {
	data := [][]interface{}{
		[]interface{}{"Payee", "Memo"},
		[]interface{}{"Landlord", nil},
		[]interface{}{"", "  "},
	}

	table, err := FromRows(data, nil)
	require.NoError(t, err)

	assert.Equal(t, []any{"Landlord", ""}, table.Row(0))
	assert.Equal(t, []any{"", ""}, table.Row(1))
}

func TestFromRowsWithUnformattedValues(t *testing.T) {
	data := [][]interface{}{
		[]interface{}{"Item", "Qty", "Price", "Recurring"},
		[]interface{}{"Coffee", float64(12), 3.5, true},
	}

	table, err := FromRows(data, Types{"Qty": Integer, "Price": Float, "Recurring": Boolean})
	require.NoError(t, err)

	assert.Equal(t, []any{"Coffee", int64(12), 3.5, true}, table.Row(0))
}

func TestFromRowsIntegerRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 42, 1250, -987654321, 9007199254740993}

	data := [][]interface{}{{"Amount"}}
	for _, v := range values {
		data = append(data, []interface{}{strconv.FormatInt(v, 10)})
	}

	table, err := FromRows(data, Types{"Amount": Integer})
	require.NoError(t, err)

	for i, v := range values {
		assert.Equal(t, v, table.Row(i)[0])
		assert.Equal(t, strconv.FormatInt(v, 10), table.Records()[i][0])
	}
}

func TestFromRowsWithInvalidValue(t *testing.T) {
	data := [][]interface{}{
		[]interface{}{"Name", "Pay"},
		[]interface{}{"Joe", "1.12"},
		[]interface{}{"James", "lots"},
	}

	_, err := FromRows(data, Types{"Pay": Float})

	var coercion *errs.TypeCoercionError
	require.True(t, errors.As(err, &coercion), "expected TypeCoercionError, got %v", err)
	assert.Equal(t, 1, coercion.Row)
	assert.Equal(t, "Pay", coercion.Column)
	assert.Equal(t, "lots", coercion.Value)
}

func TestFromRowsWithFractionalInteger(t *testing.T) {
	data := [][]interface{}{
		[]interface{}{"Count"},
		[]interface{}{2.5},
	}

	_, err := FromRows(data, Types{"Count": Integer})

	var coercion *errs.TypeCoercionError
	require.True(t, errors.As(err, &coercion), "expected TypeCoercionError, got %v", err)
	assert.Equal(t, 0, coercion.Row)
	assert.Equal(t, "Count", coercion.Column)
}

func TestFromRowsWithOutOfRangeInteger(t *testing.T) {
	for _, v := range []any{float64(math.MaxInt64), 1e19, -1e19, "9223372036854775808"} {
		data := [][]interface{}{
			[]interface{}{"Count"},
			[]interface{}{v},
		}

		_, err := FromRows(data, Types{"Count": Integer})

		var coercion *errs.TypeCoercionError
		assert.True(t, errors.As(err, &coercion), "expected TypeCoercionError for %v, got %v", v, err)
	}

	table, err := FromRows([][]interface{}{{"Count"}, {float64(math.MinInt64)}}, Types{"Count": Integer})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(math.MinInt64)}, table.Row(0))
}

func TestFromRowsWithNonFiniteFloat(t *testing.T) {
	for _, v := range []any{"NaN", "Inf", "-infinity", math.NaN(), math.Inf(1)} {
		data := [][]interface{}{
			[]interface{}{"Amount"},
			[]interface{}{v},
		}

		_, err := FromRows(data, Types{"Amount": Float})

		var coercion *errs.TypeCoercionError
		assert.True(t, errors.As(err, &coercion), "expected TypeCoercionError for %v, got %v", v, err)
	}
}

func TestFromRowsWithWideRow(t *testing.T) {
	data := [][]interface{}{
		[]interface{}{"Name", "Pay"},
		[]interface{}{"Joe", "1.12", "extra"},
	}

	_, err := FromRows(data, nil)

	var shape *errs.DataShapeError
	require.True(t, errors.As(err, &shape), "expected DataShapeError, got %v", err)
	assert.Equal(t, 0, shape.Row)
}

func TestFromRowsWithTrailingBlankCells(t *testing.T) {
	data := [][]interface{}{
		[]interface{}{"Name", "Pay"},
		[]interface{}{"Joe", "1.12", "", nil},
	}

	table, err := FromRows(data, Types{"Pay": Float})
	require.NoError(t, err)
	assert.Equal(t, []any{"Joe", 1.12}, table.Row(0))
}

func TestFromRowsWithDuplicateColumns(t *testing.T) {
	data := [][]interface{}{
		[]interface{}{"Name", "Pay", "Name"},
		[]interface{}{"Joe", "1.12", "Joseph"},
	}

	table, err := FromRows(data, Types{"Pay": Float})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Pay", "Name"}, table.Header())
	assert.Equal(t, []any{"Joe", 1.12, "Joseph"}, table.Row(0))
}

func TestFromRowsWithTypedDuplicateColumn(t *testing.T) {
	data := [][]interface{}{
		[]interface{}{"Name", "Pay", "Name"},
	}

	_, err := FromRows(data, Types{"Name": Text})

	var shape *errs.DataShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("Expected DataShapeError for typed duplicate column, got %v", err)
	}
}

func TestFromRowsWithBlankColumnNames(t *testing.T) {
	header := []interface{}{"Date", "", "Amount", " "}

	table, err := FromRows([][]interface{}{header}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "", "Amount", " "}, table.Header())
	assert.Equal(t, 0, table.Len())

	data := [][]interface{}{
		header,
		[]interface{}{"2026-12-01", "", "1,250.00"},
	}

	table, err = FromRows(data, Types{"Amount": Float})
	require.NoError(t, err)
	assert.Equal(t, []any{"2026-12-01", "", 1250.0, ""}, table.Row(0))
}

func TestFromRowsKeepsColumnNames(t *testing.T) {
	data := [][]interface{}{
		[]interface{}{" Name ", "Pay"},
		[]interface{}{"Joe", "1.12"},
	}

	table, err := FromRows(data, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{" Name ", "Pay"}, table.Header())

	_, err = FromRows(data, Types{"Name": Text})

	var shape *errs.DataShapeError
	assert.True(t, errors.As(err, &shape), "expected DataShapeError, got %v", err)
}

func TestFromRowsWithUnknownTypedColumn(t *testing.T) {
	data := [][]interface{}{
		[]interface{}{"Name", "Pay"},
		[]interface{}{"Joe", "1.12"},
	}

	_, err := FromRows(data, Types{"Salary": Float})

	var shape *errs.DataShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("Expected DataShapeError for unknown column, got %v", err)
	}
}

func TestParseTypes(t *testing.T) {
	types, err := ParseTypes("Name=text, Pay=float,Column 1=int,Paid=bool")
	require.NoError(t, err)

	assert.Equal(t, Types{"Name": Text, "Pay": Float, "Column 1": Integer, "Paid": Boolean}, types)

	_, err = ParseTypes("Pay")
	assert.Error(t, err)

	_, err = ParseTypes("Pay=money")
	assert.Error(t, err)

	types, err = ParseTypes("")
	require.NoError(t, err)
	assert.Empty(t, types)
}
