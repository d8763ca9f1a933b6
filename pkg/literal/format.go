package literal

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Context selects the quoting dialect a value is rendered in.
type Context int

const (
	// Scalar renders a standalone SQL literal, e.g. E'it\'s'.
	Scalar Context = iota
	// ArrayElement renders an element of a {…} array constant, e.g. "it""s".
	ArrayElement
)

// String returns a string representation of Context
func (c Context) String() string {
	switch c {
	case Scalar:
		return "scalar"
	case ArrayElement:
		return "array-element"
	default:
		return "unknown"
	}
}

// ParseContext maps a context name to a Context. "array" is accepted as a
// short form of "array-element".
func ParseContext(name string) (Context, error) {
	switch strings.ToLower(name) {
	case "", "scalar":
		return Scalar, nil
	case "array", "array-element":
		return ArrayElement, nil
	default:
		return Scalar, fmt.Errorf("unknown literal context %q (supported: scalar, array-element)", name)
	}
}

// TimestampLayout is the UTC layout timestamps are rendered with.
const TimestampLayout = "2006-01-02 15:04:05"

const (
	timestampCast = "::timestamp with time zone"
	jsonCast      = "::json"
	emptyArray    = "'{}'"
)

// ErrUnsupportedValueType is returned when a value has no literal rendering.
var ErrUnsupportedValueType = errors.New("unsupported value type")

// UnsupportedTypeError names the Go type that could not be rendered.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnsupportedValueType, e.Type)
}

// Unwrap returns ErrUnsupportedValueType
func (e *UnsupportedTypeError) Unwrap() error {
	return ErrUnsupportedValueType
}

// Format renders v as a standalone scalar literal.
func Format(v Value) (string, error) {
	return FormatIn(v, Scalar)
}

// FormatIn renders v in the given context.
func FormatIn(v Value, ctx Context) (string, error) {
	var b strings.Builder
	if err := appendValue(&b, v, ctx); err != nil {
		return "", err
	}
	return b.String(), nil
}

func appendValue(b *strings.Builder, v Value, ctx Context) error {
	switch x := v.(type) {
	case nil, Null:
		// NULL stays a bareword inside array constants as well.
		b.WriteString("NULL")
	case Number:
		return appendNumber(b, x, ctx)
	case Bool:
		b.WriteString(strconv.FormatBool(bool(x)))
	case String:
		appendString(b, string(x), ctx)
	case Timestamp:
		appendString(b, time.Time(x).UTC().Format(TimestampLayout), ctx)
		if ctx == Scalar {
			b.WriteString(timestampCast)
		}
	case Array:
		return appendArray(b, x, ctx)
	case JSON:
		appendString(b, string(x), ctx)
		if ctx == Scalar {
			b.WriteString(jsonCast)
		}
	case Unsupported:
		return &UnsupportedTypeError{Type: fmt.Sprintf("%T", x.V)}
	default:
		return &UnsupportedTypeError{Type: fmt.Sprintf("%T", v)}
	}
	return nil
}

func appendNumber(b *strings.Builder, n Number, ctx Context) error {
	f, err := strconv.ParseFloat(n.Text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return fmt.Errorf("%w: malformed number %q", ErrUnsupportedValueType, n.Text)
	}
	if !math.IsNaN(f) && !math.IsInf(f, 0) || errors.Is(err, strconv.ErrRange) {
		if strings.Trim(n.Text, "+-0123456789.eE") != "" {
			return fmt.Errorf("%w: malformed number %q", ErrUnsupportedValueType, n.Text)
		}
		b.WriteString(n.Text)
		return nil
	}
	special := "NaN"
	switch {
	case math.IsInf(f, 1):
		special = "Infinity"
	case math.IsInf(f, -1):
		special = "-Infinity"
	}
	if ctx == ArrayElement {
		b.WriteString(special)
		return nil
	}
	b.WriteString("'" + special + "'::double precision")
	return nil
}

func appendString(b *strings.Builder, s string, ctx Context) {
	if ctx == ArrayElement {
		b.WriteByte('"')
		b.WriteString(EscapeArrayElement(s))
		b.WriteByte('"')
		return
	}
	b.WriteString("E'")
	b.WriteString(EscapeString(s))
	b.WriteByte('\'')
}

func appendArray(b *strings.Builder, arr Array, ctx Context) error {
	if ctx == ArrayElement {
		var inner strings.Builder
		inner.WriteByte('{')
		for i, e := range arr {
			if i > 0 {
				inner.WriteByte(',')
			}
			if err := appendValue(&inner, e, ArrayElement); err != nil {
				return err
			}
		}
		inner.WriteByte('}')
		appendString(b, inner.String(), ArrayElement)
		return nil
	}

	if len(arr) == 0 {
		// ARRAY[] has no element type; an untyped constant takes the column's.
		b.WriteString(emptyArray)
		return nil
	}
	b.WriteString("ARRAY[")
	for i, e := range arr {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := appendValue(b, e, Scalar); err != nil {
			return err
		}
	}
	b.WriteByte(']')
	return nil
}
