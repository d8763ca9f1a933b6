package pgsubst

// state is the lexical context of the scanner at the current offset.
type state int

const (
	stateDefault state = iota
	stateDoubleQuoted
	stateDoubleQuotedEscape
	stateSingleQuoted
	stateEscapeString
	stateEscapeStringEscape
	stateLineComment
	stateBlockComment
	stateAwaitingHead     // after ':' in the default context
	stateAccumulatingTail // inside a placeholder name
)

// String returns a string representation of state
func (s state) String() string {
	switch s {
	case stateDefault:
		return "default"
	case stateDoubleQuoted:
		return "double-quoted"
	case stateDoubleQuotedEscape:
		return "double-quoted-escape"
	case stateSingleQuoted:
		return "single-quoted"
	case stateEscapeString:
		return "escape-string"
	case stateEscapeStringEscape:
		return "escape-string-escape"
	case stateLineComment:
		return "line-comment"
	case stateBlockComment:
		return "block-comment"
	case stateAwaitingHead:
		return "awaiting-head"
	case stateAccumulatingTail:
		return "accumulating-tail"
	default:
		return "unknown"
	}
}

// placeholder is a :name token found in the default context.
type placeholder struct {
	Name  string
	Start int // offset of ':'
	End   int // offset just past the name
}

// Raw returns the placeholder text as written in the template.
func (p placeholder) Raw() string {
	return ":" + p.Name
}

// scanner walks a template once, left to right. Everything except
// placeholders is passed through verbatim, so it only has to report where
// placeholders are; the verbatim text is the source between them.
type scanner struct {
	src   string
	pos   int
	state state
	depth int // block comment nesting, >= 1 in stateBlockComment
	start int // offset of ':' in stateAwaitingHead and stateAccumulatingTail
}

func newScanner(src string) *scanner {
	return &scanner{src: src}
}

// scan calls visit for every placeholder in order and stops at the first
// error visit returns.
func (s *scanner) scan(visit func(placeholder) error) error {
	for s.pos < len(s.src) {
		if p, ok := s.step(); ok {
			if err := visit(p); err != nil {
				return err
			}
		}
	}
	if s.state == stateAccumulatingTail {
		// Input ended inside a name; it runs to the end of the template.
		s.state = stateDefault
		return visit(s.finish(len(s.src)))
	}
	// Unterminated literals and comments are accepted as they are.
	return nil
}

// step consumes input from the current offset according to the current
// state. It reports a placeholder when one has just ended.
func (s *scanner) step() (placeholder, bool) {
	c := s.src[s.pos]

	switch s.state {
	case stateDefault:
		s.stepDefault(c)

	case stateDoubleQuoted:
		switch c {
		case '"':
			s.state = stateDefault
		case '\\':
			s.state = stateDoubleQuotedEscape
		}
		s.pos++

	case stateDoubleQuotedEscape:
		s.state = stateDoubleQuoted
		s.pos++

	case stateSingleQuoted:
		// No backslash escapes here. A doubled quote closes the literal and
		// immediately reopens it, which leaves the scanner in the same state.
		if c == '\'' {
			s.state = stateDefault
		}
		s.pos++

	case stateEscapeString:
		switch c {
		case '\'':
			s.state = stateDefault
		case '\\':
			s.state = stateEscapeStringEscape
		}
		s.pos++

	case stateEscapeStringEscape:
		s.state = stateEscapeString
		s.pos++

	case stateLineComment:
		if c == '\n' {
			s.state = stateDefault
		}
		s.pos++

	case stateBlockComment:
		switch {
		case c == '/' && s.peek() == '*':
			s.depth++
			s.pos += 2
		case c == '*' && s.peek() == '/':
			s.depth--
			s.pos += 2
			if s.depth == 0 {
				s.state = stateDefault
			}
		default:
			s.pos++
		}

	case stateAwaitingHead:
		switch {
		case isHead(c):
			s.state = stateAccumulatingTail
			s.pos++
		case c == ':':
			// "::" is a cast, not a placeholder.
			s.state = stateDefault
			s.pos++
		default:
			// A lone ':'. Unlike a plain pass-through, the current byte is
			// dispatched again in the default context so that a quote or
			// comment right after the colon is still recognized (see
			// DESIGN.md, decision 6).
			s.state = stateDefault
		}

	case stateAccumulatingTail:
		if isTail(c) {
			s.pos++
			break
		}
		// The terminating byte is left for the default context.
		s.state = stateDefault
		return s.finish(s.pos), true
	}

	return placeholder{}, false
}

func (s *scanner) stepDefault(c byte) {
	switch c {
	case '"':
		s.state = stateDoubleQuoted
	case '\'':
		if s.escapePrefix() {
			s.state = stateEscapeString
		} else {
			s.state = stateSingleQuoted
		}
	case ':':
		s.state = stateAwaitingHead
		s.start = s.pos
	case '-':
		if s.peek() == '-' {
			s.state = stateLineComment
			s.pos++
		}
	case '/':
		if s.peek() == '*' {
			s.state = stateBlockComment
			s.depth = 1
			s.pos++
		}
	}
	s.pos++
}

// escapePrefix reports whether the quote at the current offset opens an
// escape string: it follows an E or e that is a token of its own, so
// date'...' and type'...' stay standard strings.
func (s *scanner) escapePrefix() bool {
	if s.pos == 0 {
		return false
	}
	if c := s.src[s.pos-1]; c != 'E' && c != 'e' {
		return false
	}
	return s.pos < 2 || !isTail(s.src[s.pos-2])
}

func (s *scanner) finish(end int) placeholder {
	return placeholder{
		Name:  s.src[s.start+1 : end],
		Start: s.start,
		End:   end,
	}
}

// peek returns the byte after the current one, or 0 at end of input.
func (s *scanner) peek() byte {
	if s.pos+1 < len(s.src) {
		return s.src[s.pos+1]
	}
	return 0
}

func isHead(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isTail(c byte) bool {
	return isHead(c) || c >= '0' && c <= '9' || c == '$'
}
