package literal

import "strings"

var (
	stringEscaper       = strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	arrayElementEscaper = strings.NewReplacer(`"`, `""`)
)

// EscapeString escapes s for the body of an E'…' escape string: backslashes
// and single quotes are prefixed with a backslash.
func EscapeString(s string) string {
	return stringEscaper.Replace(s)
}

// EscapeArrayElement escapes s for a double-quoted array element. Only the
// double quote is doubled; backslashes pass through unchanged.
func EscapeArrayElement(s string) string {
	return arrayElementEscaper.Replace(s)
}
