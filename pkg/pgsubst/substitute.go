package pgsubst

import (
	"errors"
	"fmt"
	"io"

	"github.com/cybertec-postgresql/pgsubst/pkg/literal"
)

// ErrInvalidArgument is returned when a required argument is missing.
var ErrInvalidArgument = errors.New("invalid argument")

// Bindings maps placeholder names (case-sensitive, without the colon) to
// values. A nil Bindings behaves like an empty one.
type Bindings map[string]literal.Value

// Bind converts plain Go values into Bindings using literal.ValueOf.
func Bind(params map[string]any) Bindings {
	if params == nil {
		return nil
	}
	b := make(Bindings, len(params))
	for name, v := range params {
		b[name] = literal.ValueOf(v)
	}
	return b
}

// Substitute replaces every :name placeholder outside string literals,
// quoted identifiers and comments with the scalar literal of its bound
// value. Placeholders without a binding are left in place as :name.
//
// If any bound value cannot be rendered the error wraps
// literal.ErrUnsupportedValueType and no output is returned.
func Substitute(template string, bindings Bindings) (string, error) {
	return Parse(template).Execute(bindings)
}

// SubstituteReader reads the whole template from r and writes the result to
// w. Nothing is written when substitution fails. A nil r or w is reported as
// ErrInvalidArgument.
func SubstituteReader(r io.Reader, w io.Writer, bindings Bindings) error {
	if r == nil {
		return fmt.Errorf("%w: template reader is nil", ErrInvalidArgument)
	}
	if w == nil {
		return fmt.Errorf("%w: output writer is nil", ErrInvalidArgument)
	}

	template, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	out, err := Substitute(string(template), bindings)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Format renders a single Go value as a scalar SQL literal.
func Format(v any) (string, error) {
	return literal.Format(literal.ValueOf(v))
}

// Placeholders returns the distinct placeholder names of template in the
// order they first appear. Names inside literals, quoted identifiers and
// comments are not reported.
func Placeholders(template string) []string {
	return Parse(template).Placeholders()
}

// Missing returns the placeholder names of template that have no binding,
// i.e. the ones Substitute would leave in place.
func Missing(template string, bindings Bindings) []string {
	return Parse(template).Missing(bindings)
}
