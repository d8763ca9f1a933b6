// Package pgsubst renders parameterized PostgreSQL queries into literal SQL.
//
// A template names its parameters with placeholders of the form :name, where
// name starts with a letter or underscore and continues with letters, digits,
// underscores or dollar signs. Substitute replaces each placeholder with the
// literal text of its bound value:
//
//	sql, err := pgsubst.Substitute(
//	    "select * from t where id = :id or other = :id",
//	    pgsubst.Bind(map[string]any{"id": 123}),
//	)
//	// sql => select * from t where id = 123 or other = 123
//
// # Lexical rules
//
// The template is scanned once. Placeholders are only recognized outside of
//
//   - standard strings ('…'), where a doubled quote simply closes and reopens
//     the literal,
//   - escape strings (E'…'), where a backslash escapes the next character,
//   - quoted identifiers ("…"),
//   - line comments (-- up to the end of the line), and
//   - block comments (/* … */), which nest.
//
// The PostgreSQL cast operator :: is left alone. Unterminated literals and
// comments are copied as they are; pgsubst does not validate SQL.
//
// # Missing bindings
//
// A placeholder without a binding stays in the output as :name. This allows
// substitution in several stages; Missing reports what is still unresolved.
//
// # Values
//
// Values are rendered by package literal. A value that has no literal form
// aborts the whole substitution with an error wrapping
// literal.ErrUnsupportedValueType.
package pgsubst
