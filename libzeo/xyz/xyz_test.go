package xyz

import (
	"path/filepath"
	"testing"

	"github.com/fine-structures/zeosite/libzeo/fixture"
	"github.com/fine-structures/zeosite/zeo"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	fw := fixture.Diamond(fixture.CHALike)

	pathname := filepath.Join(t.TempDir(), "cha.xyz")
	require.NoError(t, WriteFile(pathname, fw))

	got, err := ReadFile(pathname, nil)
	require.NoError(t, err)
	require.Equal(t, fw.NumAtoms(), got.NumAtoms())
	assert.Equal(t, fw.Cell.PBC, got.Cell.PBC)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, fw.Cell.Vectors[i][j], got.Cell.Vectors[i][j], 1e-9)
		}
	}
	for i, atom := range fw.Atoms {
		assert.Equal(t, i, got.Atoms[i].Index)
		assert.Equal(t, atom.Symbol, got.Atoms[i].Symbol)
		assert.Equal(t, atom.Species, got.Atoms[i].Species)
		for k := 0; k < 3; k++ {
			assert.InDelta(t, atom.Pos[k], got.Atoms[i].Pos[k], 1e-9)
		}
	}
}

func TestParseHandwritten(t *testing.T) {
	src := `3
Lattice="10 0 0 0 10 0 0 0 12.5" Properties=species:S:1:pos:R:3 pbc="T T F" energy=-1.5e2
Si 0.0 0.0 0.0
O  1.6 -0.25 0.0 0.1
H  2.6 -0.25 0.0
`
	fw, err := ParseString(src, nil)
	require.NoError(t, err)
	require.Equal(t, 3, fw.NumAtoms())
	assert.Equal(t, [3]bool{true, true, false}, fw.Cell.PBC)
	assert.Equal(t, zeo.Vec3{0, 0, 12.5}, fw.Cell.Vectors[2])
	assert.Equal(t, zeo.Vec3{1.6, -0.25, 0}, fw.Atoms[1].Pos)
	assert.Equal(t, []zeo.Species{zeo.TetrahedralCenter, zeo.Bridging, zeo.Terminator},
		[]zeo.Species{fw.Atoms[0].Species, fw.Atoms[1].Species, fw.Atoms[2].Species})
}

func TestParseEmptyComment(t *testing.T) {
	fw, err := ParseString("2\n\nSi 0 0 0\nNa 5 5 5", nil)
	require.NoError(t, err)
	require.Equal(t, 2, fw.NumAtoms())
	assert.False(t, fw.Cell.IsPeriodic())
	assert.Equal(t, zeo.OtherSpecies, fw.Atoms[1].Species)
}

func TestLatticeImpliesPBC(t *testing.T) {
	fw, err := ParseString("1\nLattice=\"5 0 0 0 5 0 0 0 5\"\nSi 1 1 1\n", nil)
	require.NoError(t, err)
	assert.Equal(t, [3]bool{true, true, true}, fw.Cell.PBC)
}

func TestCustomSpeciesTable(t *testing.T) {
	table := zeo.SpeciesTable{"Ge": zeo.TetrahedralCenter, "S": zeo.Bridging}
	fw, err := ParseString("2\n\nGe 0 0 0\nS 1.8 0 0\n", table)
	require.NoError(t, err)
	assert.Equal(t, zeo.TetrahedralCenter, fw.Atoms[0].Species)
	assert.Equal(t, zeo.Bridging, fw.Atoms[1].Species)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"count mismatch":  "3\n\nSi 0 0 0\n",
		"short lattice":   "1\nLattice=\"5 0 0\"\nSi 0 0 0\n",
		"bad pbc":         "1\nLattice=\"5 0 0 0 5 0 0 0 5\" pbc=\"T X T\"\nSi 0 0 0\n",
		"pbc w/o lattice": "1\npbc=\"T T T\"\nSi 0 0 0\n",
		"missing column":  "1\n\nSi 0 0\n",
		"not a structure": "hello world",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseString(src, nil)
			assert.True(t, errors.Is(err, zeo.ErrBadStructure), "got %v", err)
		})
	}
}
