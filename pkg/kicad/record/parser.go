// Package record is a strict parser for generated board records. Unlike
// the tolerant board reader in pkg/kicad/pcb, it accepts only the exact
// record shapes the generator writes, and Lint checks their formatting.
package record

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/emit"
)

// Parser parses generated record bodies
type Parser struct {
	parser *participle.Parser[Body]
}

// NewParser creates a new record parser instance
func NewParser() (*Parser, error) {
	parser, err := participle.Build[Body](
		participle.Lexer(RecordLexer),
		participle.Elide("Whitespace"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	return &Parser{parser: parser}, nil
}

// Parse parses a record body from a reader
func (p *Parser) Parse(r io.Reader) (*Body, error) {
	body, err := p.parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return body, nil
}

// ParseString parses a record body from a string
func (p *Parser) ParseString(input string) (*Body, error) {
	body, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return body, nil
}

// ParseFile parses a record body from a file path
func (p *Parser) ParseFile(filename string) (*Body, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(file)
}

// Counts tallies the records by kind.
func (b *Body) Counts() (segments, vias, circles int) {
	for _, r := range b.Records {
		switch {
		case r.Segment != nil:
			segments++
		case r.Via != nil:
			vias++
		case r.Circle != nil:
			circles++
		}
	}
	return segments, vias, circles
}

// Problem is one formatting defect found by Lint.
type Problem struct {
	Line    int
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("line %d: %s", p.Line, p.Message)
}

// Lint checks every record for six-decimal coordinates, known layer names,
// positive widths and sizes, and the F.Cu/B.Cu via span.
func Lint(body *Body) []Problem {
	var problems []Problem
	report := func(r *Record, format string, args ...any) {
		problems = append(problems, Problem{Line: r.Pos.Line, Message: fmt.Sprintf(format, args...)})
	}
	checkCoord := func(r *Record, name string, c Coord) {
		for _, v := range []string{c.X, c.Y} {
			if !sixDecimals(v) {
				report(r, "%s coordinate %s is not written with 6 decimals", name, v)
			}
		}
	}

	for _, r := range body.Records {
		switch {
		case r.Segment != nil:
			s := r.Segment
			checkCoord(r, "start", s.Start)
			checkCoord(r, "end", s.End)
			if s.Width <= 0 {
				report(r, "segment width %g must be positive", s.Width)
			}
			if l := emit.Layer(s.Layer); !l.IsCopper() {
				report(r, "segment on non-copper layer %q", s.Layer)
			}
			if s.Start == s.End {
				report(r, "zero-length segment at (%s %s)", s.Start.X, s.Start.Y)
			}

		case r.Via != nil:
			v := r.Via
			checkCoord(r, "via", v.At)
			if v.Size <= 0 || v.Drill <= 0 || v.Drill >= v.Size {
				report(r, "via size %g / drill %g is inconsistent", v.Size, v.Drill)
			}
			if len(v.Layers) != 2 || v.Layers[0] != string(emit.FrontCopper) || v.Layers[1] != string(emit.BackCopper) {
				report(r, "via layers %s, want F.Cu B.Cu", strings.Join(v.Layers, " "))
			}

		case r.Circle != nil:
			c := r.Circle
			checkCoord(r, "center", c.Center)
			checkCoord(r, "end", c.End)
			if c.Width <= 0 {
				report(r, "circle width %g must be positive", c.Width)
			}
			if !emit.Layer(c.Layer).Valid() {
				report(r, "circle on unknown layer %q", c.Layer)
			}
		}
	}
	return problems
}

func sixDecimals(v string) bool {
	i := strings.IndexByte(v, '.')
	return i >= 0 && len(v)-i-1 == 6
}
