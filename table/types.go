package table

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Type is the scalar type of a table column.
type Type int

const (
	Text Type = iota
	Integer
	Float
	Boolean
)

// Types maps a column name to the type its values are converted to. Columns
// not in the map are Text.
type Types map[string]Type

func (t Type) String() string {
	switch t {
	case Text:
		return "text"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Boolean:
		return "boolean"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "string", "str":
		return Text, nil
	case "integer", "int":
		return Integer, nil
	case "float", "double", "number":
		return Float, nil
	case "boolean", "bool":
		return Boolean, nil
	default:
		return Text, fmt.Errorf("unknown column type '%s'", s)
	}
}

// ParseTypes parses a column type list of the form 'Name=text,Pay=float'.
func ParseTypes(s string) (Types, error) {
	types := Types{}
	if strings.TrimSpace(s) == "" {
		return types, nil
	}

	for _, field := range strings.Split(s, ",") {
		name, kind, ok := strings.Cut(field, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid column type '%s' - expected something like 'Pay=float'", field)
		}

		t, err := ParseType(kind)
		if err != nil {
			return nil, err
		}

		types[strings.TrimSpace(name)] = t
	}

	return types, nil
}

var grouped = regexp.MustCompile(`^[+-]?[0-9]{1,3}(,[0-9]{3})+(\.[0-9]*)?$`)

// coerce converts a single cell to t. Cells may be formatted strings or the
// unformatted float64/bool values the Sheets API returns for
// UNFORMATTED_VALUE reads. Blank cells are "" in Text columns and nil in all
// others.
func coerce(v any, t Type) (any, error) {
	if blank(v) {
		if t == Text {
			return "", nil
		}

		return nil, nil
	}

	switch t {
	case Text:
		return format(v), nil

	case Integer:
		switch x := v.(type) {
		case string:
			return strconv.ParseInt(number(x), 10, 64)

		case float64:
			if x != math.Trunc(x) || x >= 1<<63 || x < -1<<63 {
				return nil, fmt.Errorf("%v is not an int64", x)
			}
			return int64(x), nil
		}

	case Float:
		switch x := v.(type) {
		case string:
			f, err := strconv.ParseFloat(number(x), 64)
			if err != nil {
				return nil, err
			}
			return finite(f)

		case float64:
			return finite(x)
		}

	case Boolean:
		switch x := v.(type) {
		case string:
			return strconv.ParseBool(strings.TrimSpace(x))

		case bool:
			return x, nil
		}
	}

	return nil, fmt.Errorf("unsupported cell value %T", v)
}

func finite(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%v is not a finite number", f)
	}

	return f, nil
}

func blank(v any) bool {
	if v == nil {
		return true
	}

	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}

	return false
}

// number strips surrounding whitespace and thousands separators, e.g.
// '1,250.00' as rendered by a Sheets number format.
func number(s string) string {
	s = strings.TrimSpace(s)
	if grouped.MatchString(s) {
		return strings.ReplaceAll(s, ",", "")
	}

	return s
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
