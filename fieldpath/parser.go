// Package fieldpath parses structural paths that address a single field of a
// flyer configuration, e.g. `format.active`, `panels.3.heading` or
// `layout.options["3-fold"].panels`.
package fieldpath

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	pathLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Key", Pattern: `[A-Za-z0-9_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[.\[\]]`},
	})

	pathParser = participle.MustBuild[Path](
		participle.Lexer(pathLexer),
		participle.Elide("Whitespace"),
	)
)

// Path is the root AST node of a field path.
type Path struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Head  Segment        `parser:"@Key"`
	Steps []*Step        `parser:"@@*"`
}

// Step is either a dotted member (`.name`) or a bracketed key (`["name"]`, `[3]`).
type Step struct {
	Key Segment `parser:"  '.' @Key | '[' @(Key | String) ']'"`
}

// Segment is a single path component. Quoted keys are unquoted on capture.
type Segment string

// Capture implements participle.Capture.
func (s *Segment) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("path segment capture requires value")
	}
	v := values[0]
	if strings.HasPrefix(v, `"`) {
		unquoted, err := strconv.Unquote(v)
		if err != nil {
			return err
		}
		v = unquoted
	}
	*s = Segment(v)
	return nil
}

// Segments flattens the path into its components.
func (p *Path) Segments() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.Steps)+1)
	out = append(out, string(p.Head))
	for _, st := range p.Steps {
		out = append(out, string(st.Key))
	}
	return out
}

// String renders the path in canonical dotted form, quoting keys that are
// not plain identifiers.
func (p *Path) String() string {
	segs := p.Segments()
	var b strings.Builder
	for i, s := range segs {
		switch {
		case i == 0:
			b.WriteString(s)
		case isPlainKey(s):
			b.WriteByte('.')
			b.WriteString(s)
		default:
			b.WriteString("[")
			b.WriteString(strconv.Quote(s))
			b.WriteString("]")
		}
	}
	return b.String()
}

// Parse parses a field path.
func Parse(input string) (*Path, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("empty field path")
	}
	return pathParser.ParseString("", input)
}

// Split parses input and returns its segments.
func Split(input string) ([]string, error) {
	p, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return p.Segments(), nil
}

func isPlainKey(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		case r == '-' && i > 0:
		default:
			return false
		}
	}
	return true
}
