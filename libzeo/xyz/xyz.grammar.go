package xyz

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Extended XYZ:
//
//	<count>
//	Lattice="ax ay az bx by bz cx cy cz" pbc="T T T" [key=value ..]
//	<symbol> <x> <y> <z> [extra columns]
//	..
type xyzFile struct {
	Count int        `parser:"@Number EOL"`
	Props []*xyzProp `parser:"@@* EOL"`
	Atoms []*xyzAtom `parser:"@@*"`
}

type xyzProp struct {
	Key   string `parser:"@Ident \"=\""`
	Value string `parser:"@(String | Number | Ident)"`
}

type xyzAtom struct {
	Symbol string    `parser:"@Ident"`
	X      float64   `parser:"@Number"`
	Y      float64   `parser:"@Number"`
	Z      float64   `parser:"@Number"`
	Extra  []float64 `parser:"@Number* EOL*"`
}

// Each newline is its own token so an empty comment line stays distinguishable from the atom block.
var sXYZLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Number", Pattern: `[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_:.\-]*`},
	{Name: "Punct", Pattern: `=`},
	{Name: "EOL", Pattern: `\r?\n`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

var sParseXYZ = participle.MustBuild[xyzFile](
	participle.Lexer(sXYZLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)
