package periodic

import (
	"math"

	"github.com/fine-structures/zeosite/zeo"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// Finder discovers neighbours under the minimum-image convention.
// Each candidate is compared against its identity image and the 26 adjacent images
// (one cell translation along each periodic axis), which is exact for any cutoff
// smaller than half the shortest cell width.
type Finder struct {
	Cutoff float64
}

// NewFinder returns a Finder using the given cutoff; a non-positive cutoff selects zeo.DefaultCutoff.
func NewFinder(cutoff float64) *Finder {
	if cutoff <= 0 {
		cutoff = zeo.DefaultCutoff
	}
	return &Finder{
		Cutoff: cutoff,
	}
}

// ImageShifts returns the cartesian translations to consider for the given cell.
// The identity shift is always first.  A non-periodic axis contributes no translation.
func ImageShifts(cell *zeo.Cell) []zeo.Vec3 {
	var span [3][]float64
	for i := 0; i < 3; i++ {
		if cell.PBC[i] {
			span[i] = []float64{0, -1, 1}
		} else {
			span[i] = []float64{0}
		}
	}

	shifts := make([]zeo.Vec3, 0, 27)
	for _, na := range span[0] {
		for _, nb := range span[1] {
			for _, nc := range span[2] {
				shifts = append(shifts, cell.ToCartesian(zeo.Vec3{na, nb, nc}))
			}
		}
	}
	return shifts
}

// MinImage returns the periodic image of `to` closest to `from` and the distance between them.
func MinImage(cell *zeo.Cell, from, to zeo.Vec3) (zeo.Vec3, float64) {
	return minImage(ImageShifts(cell), from, to)
}

func minImage(shifts []zeo.Vec3, from, to zeo.Vec3) (zeo.Vec3, float64) {
	best := to
	bestDist := math.Inf(1)
	for _, shift := range shifts {
		img := to.Add(shift)
		if dist := img.Dist(from); dist < bestDist {
			best = img
			bestDist = dist
		}
	}
	return best, bestDist
}

// FindNeighbors returns every atom whose minimum-image distance to atom is strictly less than the cutoff.
//
// Neighbours are reported in ascending index order and atom itself is never included.
// If the count differs from expected, a warning is logged and Satisfied is false; the result is still returned.
func (f *Finder) FindNeighbors(fw *zeo.Framework, atom int, expected int) (zeo.NeighborQueryResult, error) {
	res := zeo.NeighborQueryResult{
		Atom:     atom,
		Expected: expected,
	}
	if fw == nil {
		return res, zeo.ErrNilFramework
	}
	center, err := fw.Atom(atom)
	if err != nil {
		return res, errors.Wrap(err, "neighbour query")
	}

	shifts := ImageShifts(&fw.Cell)

	for i := range fw.Atoms {
		if i == atom {
			continue
		}
		img, dist := minImage(shifts, center.Pos, fw.Atoms[i].Pos)
		if dist < f.Cutoff {
			res.Neighbors = append(res.Neighbors, i)
			res.Positions = append(res.Positions, img)
		}
	}

	res.Satisfied = len(res.Neighbors) == expected
	if !res.Satisfied {
		klog.Warningf("%d neighbours expected but %d found for atom %d (%s)", expected, len(res.Neighbors), atom, center.Symbol)
	}

	return res, nil
}
