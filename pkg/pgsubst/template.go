package pgsubst

import (
	"fmt"
	"strings"

	"github.com/cybertec-postgresql/pgsubst/pkg/literal"
)

// Template is a scanned template. Executing it with different bindings
// does not scan the text again. A Template is immutable and safe for
// concurrent use.
type Template struct {
	src          string
	placeholders []placeholder
	names        []string // distinct, first-seen order
}

// Parse scans src once and records where its placeholders are.
func Parse(src string) *Template {
	t := &Template{src: src}
	seen := make(map[string]bool)
	_ = newScanner(src).scan(func(p placeholder) error {
		t.placeholders = append(t.placeholders, p)
		if !seen[p.Name] {
			seen[p.Name] = true
			t.names = append(t.names, p.Name)
		}
		return nil
	})
	return t
}

// Source returns the text the template was parsed from.
func (t *Template) Source() string {
	return t.src
}

// Execute substitutes bindings into the template. See Substitute.
func (t *Template) Execute(bindings Bindings) (string, error) {
	var b strings.Builder
	b.Grow(len(t.src))

	last := 0
	for _, p := range t.placeholders {
		v, ok := bindings[p.Name]
		if !ok {
			continue
		}
		if v == nil {
			v = literal.Null{}
		}
		text, err := literal.Format(v)
		if err != nil {
			return "", fmt.Errorf("placeholder %s: %w", p.Raw(), err)
		}
		b.WriteString(t.src[last:p.Start])
		if joinsComment(b.String(), text) {
			b.WriteByte(' ')
		}
		b.WriteString(text)
		last = p.End
	}
	b.WriteString(t.src[last:])
	return b.String(), nil
}

// Placeholders returns the distinct placeholder names in the order they
// first appear.
func (t *Template) Placeholders() []string {
	if len(t.names) == 0 {
		return nil
	}
	return append([]string(nil), t.names...)
}

// Missing returns the placeholder names that have no binding.
func (t *Template) Missing(bindings Bindings) []string {
	var missing []string
	for _, name := range t.names {
		if _, ok := bindings[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// joinsComment reports whether appending text to out would create a "--"
// line comment, as in 1-:x with x = -1.
func joinsComment(out, text string) bool {
	return len(out) > 0 && out[len(out)-1] == '-' && len(text) > 0 && text[0] == '-'
}
