package validate

import (
	"github.com/fine-structures/zeosite/zeo"
)

// Validate re-derives the degree of every center, bridging and terminator atom and returns
// each atom whose neighbour count differs from the expected degree of its species.
// Atoms of any other species are ignored.  Validate never modifies fw.
func Validate(finder zeo.NeighborFinder, fw *zeo.Framework, degrees zeo.Degrees) ([]zeo.Mismatch, error) {
	if fw == nil {
		return nil, zeo.ErrNilFramework
	}

	var fails []zeo.Mismatch
	for i := range fw.Atoms {
		atom := &fw.Atoms[i]
		expected, known := degrees.Expected(atom.Species)
		if !known {
			continue
		}

		res, err := finder.FindNeighbors(fw, i, expected)
		if err != nil {
			return fails, err
		}
		if !res.Satisfied {
			fails = append(fails, zeo.Mismatch{
				Atom:     i,
				Symbol:   atom.Symbol,
				Species:  atom.Species,
				Actual:   len(res.Neighbors),
				Expected: expected,
			})
		}
	}
	return fails, nil
}
