/*
Package literal renders Go values as PostgreSQL literal text.

A bound value is first converted into the closed Value type (ValueOf does the
conversion for common Go, pgtype and uuid values) and then formatted in one of
two contexts:

  - Scalar: a standalone literal. Strings become escape strings (E'…') with
    backslash escaping, timestamps and JSON carry a cast, arrays use the
    ARRAY[…] constructor.
  - ArrayElement: an element of a {…} array constant. Strings are wrapped in
    double quotes with embedded double quotes doubled, and no casts are added.

NULL renders as the bareword NULL in both contexts.
*/
package literal
