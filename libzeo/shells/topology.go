package shells

import (
	"github.com/fine-structures/zeosite/zeo"
	"github.com/pkg/errors"
)

// Topology is the bonded graph of a framework, built lazily one atom at a time.
//
// Each atom's neighbour query uses the expected degree of that atom's own species,
// so the center/bridging alternation falls out of the node kinds rather than prior query results.
type Topology struct {
	fw      *zeo.Framework
	finder  zeo.NeighborFinder
	degrees zeo.Degrees
	adj     [][]int
	queried []bool
	short   []int // atoms whose query did not meet the expected degree
}

func NewTopology(fw *zeo.Framework, finder zeo.NeighborFinder, degrees zeo.Degrees) *Topology {
	N := fw.NumAtoms()
	return &Topology{
		fw:      fw,
		finder:  finder,
		degrees: degrees,
		adj:     make([][]int, N),
		queried: make([]bool, N),
	}
}

// Neighbors returns the bonded neighbours of the given atom in ascending index order.
func (topo *Topology) Neighbors(atom int) ([]int, error) {
	if atom < 0 || atom >= len(topo.adj) {
		return nil, errors.Wrapf(zeo.ErrBadAtomIndex, "index %d, atom count %d", atom, len(topo.adj))
	}
	if topo.queried[atom] {
		return topo.adj[atom], nil
	}

	species := topo.fw.Atoms[atom].Species
	expected, known := topo.degrees.Expected(species)

	res, err := topo.finder.FindNeighbors(topo.fw, atom, expected)
	if err != nil {
		return nil, err
	}
	if known && !res.Satisfied {
		topo.short = append(topo.short, atom)
	}

	topo.adj[atom] = res.Neighbors
	topo.queried[atom] = true
	return res.Neighbors, nil
}

// Species returns the species of the given atom.
func (topo *Topology) Species(atom int) zeo.Species {
	return topo.fw.Atoms[atom].Species
}

// DegreeMismatches returns the atoms queried so far whose neighbour count differed from their expected degree.
func (topo *Topology) DegreeMismatches() []int {
	return topo.short
}
