package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Valuer is an enum-like wrapper around a plain scalar.
type Valuer interface {
	Value() string
}

// Unwrap removes one level of enum indirection.
func Unwrap(v any) any {
	switch x := v.(type) {
	case Valuer:
		return x.Value()
	case map[string]any:
		if inner, ok := x["value"]; ok {
			return inner
		}
	case Map:
		if inner, ok := x["value"]; ok {
			return inner
		}
	}
	return v
}

// String formats the value at path, unwrapping enums. Missing values give "".
func String(src Source, path string) string {
	return toString(Unwrap(Get(src, path)))
}

// Enum returns the upper-cased token at path for case-insensitive comparison.
func Enum(src Source, path string) string {
	return strings.ToUpper(strings.TrimSpace(String(src, path)))
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case fmt.Stringer:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]any, Map, []any:
		return ""
	}
	return fmt.Sprint(v)
}

// Decimal parses a monetary value. Unparseable input counts as absent.
func Decimal(src Source, path string) *decimal.Decimal {
	return toDecimal(Unwrap(Get(src, path)))
}

func toDecimal(v any) *decimal.Decimal {
	var (
		d   decimal.Decimal
		err error
	)
	switch x := v.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		d = x
	case *decimal.Decimal:
		if x == nil {
			return nil
		}
		d = *x
	case json.Number:
		d, err = decimal.NewFromString(x.String())
	case string:
		if strings.TrimSpace(x) == "" {
			return nil
		}
		d, err = decimal.NewFromString(strings.TrimSpace(x))
	case float64:
		d = decimal.NewFromFloat(x)
	case float32:
		d = decimal.NewFromFloat32(x)
	case int:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return &d
}

// Int64 parses an identifier. Unparseable input counts as absent.
func Int64(src Source, path string) *int64 {
	return toInt64(Unwrap(Get(src, path)))
}

func toInt64(v any) *int64 {
	var n int64
	switch x := v.(type) {
	case nil:
		return nil
	case int64:
		n = x
	case *int64:
		return x
	case int:
		n = int64(x)
	case float64:
		n = int64(x)
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return nil
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil
		}
		n = i
	default:
		return nil
	}
	return &n
}

// Time parses RFC 3339 timestamps.
func Time(src Source, path string) *time.Time {
	switch x := Get(src, path).(type) {
	case time.Time:
		return &x
	case *time.Time:
		return x
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999"} {
			if t, err := time.Parse(layout, x); err == nil {
				return &t
			}
		}
	}
	return nil
}

// List returns the elements at path as sources, and whether a list was present.
func List(src Source, path string) ([]Source, bool) {
	switch x := Get(src, path).(type) {
	case []any:
		out := make([]Source, 0, len(x))
		for _, item := range x {
			out = append(out, From(item))
		}
		return out, true
	case []Map:
		out := make([]Source, 0, len(x))
		for _, item := range x {
			out = append(out, item)
		}
		return out, true
	case []Source:
		return x, true
	}
	return nil, false
}
