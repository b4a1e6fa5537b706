package periodic

import (
	"math"
	"sort"
	"testing"

	"github.com/fine-structures/zeosite/libzeo/fixture"
	"github.com/fine-structures/zeosite/zeo"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cubicPair(edge float64, pbc bool, a, b zeo.Vec3) *zeo.Framework {
	cell := zeo.Cell{
		Vectors: [3]zeo.Vec3{{edge, 0, 0}, {0, edge, 0}, {0, 0, edge}},
		PBC:     [3]bool{pbc, pbc, pbc},
	}
	fw, err := zeo.NewFramework(cell, []string{"O", "H"}, []zeo.Vec3{a, b}, nil)
	if err != nil {
		panic(err)
	}
	return fw
}

func TestImageShifts(t *testing.T) {
	cell := zeo.Cell{
		Vectors: [3]zeo.Vec3{{10, 0, 0}, {0, 10, 0}, {0, 0, 10}},
		PBC:     [3]bool{true, true, true},
	}
	shifts := ImageShifts(&cell)
	require.Len(t, shifts, 27)
	assert.Equal(t, zeo.Vec3{}, shifts[0], "identity image comes first")

	cell.PBC = [3]bool{true, false, true}
	assert.Len(t, ImageShifts(&cell), 9)

	cell.PBC = [3]bool{}
	assert.Len(t, ImageShifts(&cell), 1)
}

func TestMinImageAcrossBoundary(t *testing.T) {
	fw := cubicPair(10, true, zeo.Vec3{0.5, 5, 5}, zeo.Vec3{9.8, 5, 5})

	img, dist := MinImage(&fw.Cell, fw.Atoms[0].Pos, fw.Atoms[1].Pos)
	assert.InDelta(t, 0.7, dist, 1e-9)
	assert.InDelta(t, -0.2, img[0], 1e-9)

	f := NewFinder(0)
	assert.Equal(t, zeo.DefaultCutoff, f.Cutoff)

	res, err := f.FindNeighbors(fw, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, res.Neighbors)
	assert.True(t, res.Satisfied)
	require.Len(t, res.Positions, 1)
	assert.InDelta(t, 0.7, res.Positions[0].Dist(fw.Atoms[0].Pos), 1e-9)
}

func TestNonPeriodicCellHasNoImages(t *testing.T) {
	fw := cubicPair(10, false, zeo.Vec3{0.5, 5, 5}, zeo.Vec3{9.8, 5, 5})

	res, err := NewFinder(2).FindNeighbors(fw, 0, 1)
	require.NoError(t, err)
	assert.Empty(t, res.Neighbors)
	assert.False(t, res.Satisfied, "a short result is reported, not raised")
}

func TestCutoffIsStrict(t *testing.T) {
	fw := cubicPair(20, true, zeo.Vec3{5, 5, 5}, zeo.Vec3{7, 5, 5})

	res, err := NewFinder(2).FindNeighbors(fw, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Neighbors)

	res, err = NewFinder(2.0001).FindNeighbors(fw, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, res.Neighbors)
}

func TestDiamondDegrees(t *testing.T) {
	fw := fixture.Diamond(fixture.CHALike)
	require.Equal(t, 108, fw.NumAtoms())

	f := NewFinder(zeo.DefaultCutoff)
	for i, atom := range fw.Atoms {
		expected, _ := zeo.DefaultDegrees.Expected(atom.Species)
		res, err := f.FindNeighbors(fw, i, expected)
		require.NoError(t, err)
		require.True(t, res.Satisfied, "atom %d (%s) has %d neighbours", i, atom.Symbol, len(res.Neighbors))

		assert.NotContains(t, res.Neighbors, i)
		assert.True(t, sort.IntsAreSorted(res.Neighbors), "discovery order must be ascending")

		for j, n := range res.Neighbors {
			assert.NotEqual(t, atom.Species, fw.Atoms[n].Species, "bonds only join unlike species")

			_, dist := MinImage(&fw.Cell, atom.Pos, fw.Atoms[n].Pos)
			assert.Less(t, dist, f.Cutoff)
			assert.InDelta(t, dist, res.Positions[j].Dist(atom.Pos), 1e-9)
		}
	}
}

func TestDegreeMismatchIsNotFatal(t *testing.T) {
	fw := fixture.Ring(8)

	res, err := NewFinder(zeo.DefaultCutoff).FindNeighbors(fw, 0, zeo.DefaultCenterDegree)
	require.NoError(t, err)
	assert.False(t, res.Satisfied)
	assert.Equal(t, []int{8, 15}, res.Neighbors)
	assert.Equal(t, zeo.DefaultCenterDegree, res.Expected)
}

func TestBadAtomIndex(t *testing.T) {
	fw := fixture.Ring(4)
	f := NewFinder(zeo.DefaultCutoff)

	_, err := f.FindNeighbors(fw, fw.NumAtoms(), 2)
	assert.True(t, errors.Is(err, zeo.ErrBadAtomIndex))

	_, err = f.FindNeighbors(fw, -1, 2)
	assert.True(t, errors.Is(err, zeo.ErrBadAtomIndex))

	_, err = f.FindNeighbors(nil, 0, 2)
	assert.True(t, errors.Is(err, zeo.ErrNilFramework))
}

func TestMinImageSkewedCell(t *testing.T) {
	fw := fixture.Diamond(fixture.CHALike)

	// Brute force over a wider image range must never beat the 27-image search below the cutoff
	for i := 0; i < fw.NumAtoms(); i += 7 {
		for j := 0; j < fw.NumAtoms(); j++ {
			if i == j {
				continue
			}
			_, dist := MinImage(&fw.Cell, fw.Atoms[i].Pos, fw.Atoms[j].Pos)
			wide := math.Inf(1)
			for na := -2; na <= 2; na++ {
				for nb := -2; nb <= 2; nb++ {
					for nc := -2; nc <= 2; nc++ {
						shift := fw.Cell.ToCartesian(zeo.Vec3{float64(na), float64(nb), float64(nc)})
						wide = math.Min(wide, fw.Atoms[j].Pos.Add(shift).Dist(fw.Atoms[i].Pos))
					}
				}
			}
			if wide < zeo.DefaultCutoff {
				assert.InDelta(t, wide, dist, 1e-9, "atoms %d and %d", i, j)
			}
		}
	}
}
