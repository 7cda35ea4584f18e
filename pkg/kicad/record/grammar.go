package record

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// RecordLexer tokenizes the flat record bodies written by the winding
// generator. Layer names such as F.Cu lex as identifiers.
var RecordLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[\s\t\n\r]+`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Number", Pattern: `[-+]?[0-9]+(\.[0-9]+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.]*`},
})

// Body is a sequence of generated records.
type Body struct {
	Records []*Record `@@*`
}

// Record is exactly one of a segment, a via or a graphic circle.
type Record struct {
	Pos lexer.Position

	Segment *Segment `"(" ( "segment" @@`
	Via     *Via     `    | "via" @@`
	Circle  *Circle  `    | "gr_circle" @@ ) ")"`
}

// Coord keeps the literal text of both coordinates so their precision can
// be checked.
type Coord struct {
	X string `@Number`
	Y string `@Number`
}

// Segment is (segment (start X Y) (end X Y) (width W) (layer L) (net N))
type Segment struct {
	Start Coord   `"(" "start" @@ ")"`
	End   Coord   `"(" "end" @@ ")"`
	Width float64 `"(" "width" @Number ")"`
	Layer string  `"(" "layer" @Ident ")"`
	Net   int     `"(" "net" @Number ")"`
}

// Via is (via (at X Y) (size S) (drill D) (layers F.Cu B.Cu) (net N))
type Via struct {
	At     Coord    `"(" "at" @@ ")"`
	Size   float64  `"(" "size" @Number ")"`
	Drill  float64  `"(" "drill" @Number ")"`
	Layers []string `"(" "layers" @Ident+ ")"`
	Net    int      `"(" "net" @Number ")"`
}

// Circle is (gr_circle (center X Y) (end X Y) (layer L) (width W))
type Circle struct {
	Center Coord   `"(" "center" @@ ")"`
	End    Coord   `"(" "end" @@ ")"`
	Layer  string  `"(" "layer" @Ident ")"`
	Width  float64 `"(" "width" @Number ")"`
}
