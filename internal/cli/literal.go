package cli

import (
	"fmt"
	"io"

	"github.com/cybertec-postgresql/pgsubst/internal/params"
	"github.com/cybertec-postgresql/pgsubst/pkg/literal"
)

// Literal prints raw as a SQL literal. raw is decoded the way --set values
// are: JSON when it parses, a string otherwise.
func Literal(raw, context string, stdout io.Writer) error {
	ctx, err := literal.ParseContext(context)
	if err != nil {
		return err
	}

	out, err := literal.FormatIn(params.ParseValue(raw), ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout, out)
	return err
}
