package literal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Value is a bound parameter value. The set of implementations is closed:
// Null, Number, Bool, String, Timestamp, Array, JSON and Unsupported.
type Value interface {
	value()
}

// Null renders as the SQL NULL keyword.
type Null struct{}

// Number holds the decimal text of a numeric value.
type Number struct {
	Text string
}

// Bool is a boolean value.
type Bool bool

// String is a text value.
type String string

// Timestamp is an instant rendered in UTC.
type Timestamp time.Time

// Array is an ordered sequence of values. In scalar context a non-empty
// Array renders as ARRAY[...]; an empty one renders as the untyped constant
// '{}' rather than ARRAY[], which PostgreSQL rejects without a cast.
type Array []Value

// JSON holds already encoded JSON text.
type JSON []byte

// Unsupported carries a value with no literal rendering. Formatting it
// always fails with ErrUnsupportedValueType.
type Unsupported struct {
	V any
}

func (Null) value()        {}
func (Number) value()      {}
func (Bool) value()        {}
func (String) value()      {}
func (Timestamp) value()   {}
func (Array) value()       {}
func (JSON) value()        {}
func (Unsupported) value() {}

// Int returns the Number for an integer.
func Int(n int64) Number {
	return Number{Text: strconv.FormatInt(n, 10)}
}

// Uint returns the Number for an unsigned integer.
func Uint(n uint64) Number {
	return Number{Text: strconv.FormatUint(n, 10)}
}

// Float returns the Number for a float. Integral values print without
// exponent up to 1e21; larger magnitudes use exponent notation.
func Float(f float64) Number {
	return Number{Text: formatFloat(f, 64)}
}

// Float32 is Float with float32 precision, so float32(0.1) prints as 0.1
// and not as its widened float64 value.
func Float32(f float32) Number {
	return Number{Text: formatFloat(float64(f), 32)}
}

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f), math.IsInf(f, 0):
		return strconv.FormatFloat(f, 'g', -1, bitSize)
	case math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, bitSize)
	default:
		return strconv.FormatFloat(f, 'g', -1, bitSize)
	}
}

// JSONOf encodes v as JSON. Use it for structs and other values that
// ValueOf does not recognize as JSON objects.
func JSONOf(v any) (JSON, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return JSON(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// ValueOf converts a Go value into a Value. Values that have no rendering
// become Unsupported so the error surfaces when the value is formatted.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null{}
	case Value:
		return x
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Uint(uint64(x))
	case uint8:
		return Uint(uint64(x))
	case uint16:
		return Uint(uint64(x))
	case uint32:
		return Uint(uint64(x))
	case uint64:
		return Uint(x)
	case float32:
		return Float32(x)
	case float64:
		return Float(x)
	case json.Number:
		return Number{Text: x.String()}
	case string:
		return String(x)
	case []byte:
		return String(x)
	case *string:
		if x == nil {
			return Null{}
		}
		return String(*x)
	case time.Time:
		return Timestamp(x)
	case *time.Time:
		if x == nil {
			return Null{}
		}
		return Timestamp(*x)
	case uuid.UUID:
		return String(x.String())
	case json.RawMessage:
		if x == nil {
			return Null{}
		}
		return JSON(x)
	case map[string]any:
		if x == nil {
			return Null{}
		}
		if raw, err := JSONOf(x); err == nil {
			return raw
		}
		return Unsupported{V: v}
	case []any:
		arr := make(Array, len(x))
		for i, e := range x {
			arr[i] = ValueOf(e)
		}
		return arr
	case []Value:
		return Array(x)
	case []string:
		return arrayOf(x, func(s string) Value { return String(s) })
	case []int:
		return arrayOf(x, func(n int) Value { return Int(int64(n)) })
	case []int64:
		return arrayOf(x, func(n int64) Value { return Int(n) })
	case []float64:
		return arrayOf(x, func(f float64) Value { return Float(f) })
	case []bool:
		return arrayOf(x, func(b bool) Value { return Bool(b) })
	case []time.Time:
		return arrayOf(x, func(t time.Time) Value { return Timestamp(t) })
	case []uuid.UUID:
		return arrayOf(x, func(u uuid.UUID) Value { return String(u.String()) })
	default:
		return pgValueOf(v)
	}
}

// pgValueOf converts the pgx nullable types. An invalid (NULL) pgtype value
// becomes Null.
func pgValueOf(v any) Value {
	switch x := v.(type) {
	case pgtype.Text:
		if !x.Valid {
			return Null{}
		}
		return String(x.String)
	case pgtype.Bool:
		if !x.Valid {
			return Null{}
		}
		return Bool(x.Bool)
	case pgtype.Int2:
		if !x.Valid {
			return Null{}
		}
		return Int(int64(x.Int16))
	case pgtype.Int4:
		if !x.Valid {
			return Null{}
		}
		return Int(int64(x.Int32))
	case pgtype.Int8:
		if !x.Valid {
			return Null{}
		}
		return Int(x.Int64)
	case pgtype.Float4:
		if !x.Valid {
			return Null{}
		}
		return Float32(x.Float32)
	case pgtype.Float8:
		if !x.Valid {
			return Null{}
		}
		return Float(x.Float64)
	case pgtype.Timestamptz:
		if !x.Valid {
			return Null{}
		}
		return Timestamp(x.Time)
	case pgtype.Timestamp:
		if !x.Valid {
			return Null{}
		}
		return Timestamp(x.Time)
	case pgtype.UUID:
		if !x.Valid {
			return Null{}
		}
		return String(uuid.UUID(x.Bytes).String())
	default:
		return Unsupported{V: v}
	}
}

func arrayOf[T any](items []T, conv func(T) Value) Array {
	arr := make(Array, len(items))
	for i, item := range items {
		arr[i] = conv(item)
	}
	return arr
}
