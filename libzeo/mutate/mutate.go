package mutate

import (
	"github.com/fine-structures/zeosite/zeo"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// Mutator performs the two site edits.  Both return a new snapshot and never modify their input.
type Mutator struct {
	Finder           zeo.NeighborFinder
	BridgingDegree   int     // expected centers per bridging atom
	SubstituteSymbol string  // symbol given to a substituted center
	TerminatorSymbol string  // symbol of an inserted terminator
	BondLength       float64 // bridging-terminator distance
}

// NewMutator returns a Mutator with the default Al substitution and 1.0 H placement.
func NewMutator(finder zeo.NeighborFinder) *Mutator {
	return &Mutator{
		Finder:           finder,
		BridgingDegree:   zeo.DefaultBridgingDegree,
		SubstituteSymbol: zeo.DefaultSubstituteSymbol,
		TerminatorSymbol: zeo.DefaultTerminatorSymbol,
		BondLength:       zeo.DefaultBondLength,
	}
}

// Substitute returns a copy of fw where only the symbol of the given center changes.
// Index, position, species and every other atom are preserved.
func (m *Mutator) Substitute(fw *zeo.Framework, center int) (*zeo.Framework, error) {
	if fw == nil {
		return nil, zeo.ErrNilFramework
	}
	atom, err := fw.Atom(center)
	if err != nil {
		return nil, errors.Wrap(err, "substitute")
	}
	if atom.Species != zeo.TetrahedralCenter {
		return nil, errors.Wrapf(zeo.ErrWrongSpecies, "substitute: atom %d is %s (%s)", center, atom.Symbol, atom.Species)
	}

	out := fw.Clone()
	out.Atoms[center].Symbol = m.SubstituteSymbol
	return out, nil
}

// TerminatorPosition computes where a terminator capping the given bridging atom goes:
// BondLength away from the bridging atom, directly opposite the midpoint of its two centers.
func (m *Mutator) TerminatorPosition(fw *zeo.Framework, bridging int) (zeo.Vec3, error) {
	atom, err := fw.Atom(bridging)
	if err != nil {
		return zeo.Vec3{}, errors.Wrap(err, "terminate")
	}
	if atom.Species != zeo.Bridging {
		return zeo.Vec3{}, errors.Wrapf(zeo.ErrWrongSpecies, "terminate: atom %d is %s (%s)", bridging, atom.Symbol, atom.Species)
	}

	res, err := m.Finder.FindNeighbors(fw, bridging, m.BridgingDegree)
	if err != nil {
		return zeo.Vec3{}, err
	}

	var (
		centers   [2]zeo.Vec3
		numCenter int
	)
	for i, n := range res.Neighbors {
		if fw.Atoms[n].Species != zeo.TetrahedralCenter {
			continue
		}
		if numCenter < 2 {
			centers[numCenter] = res.Positions[i]
		}
		numCenter++
	}

	if numCenter < 2 {
		return zeo.Vec3{}, errors.Wrapf(zeo.ErrStructuralUnderdetermination, "atom %d has %d tetrahedral neighbours", bridging, numCenter)
	}
	if numCenter > 2 {
		klog.Warningf("bridging atom %d has %d tetrahedral neighbours; placing terminator from the first two", bridging, numCenter)
	}

	mid := centers[0].Midpoint(centers[1])
	dir, ok := mid.Sub(atom.Pos).Normalized()
	if !ok {
		return zeo.Vec3{}, errors.Wrapf(zeo.ErrDegenerateGeometry, "atom %d", bridging)
	}

	pos := atom.Pos.Sub(dir.Scale(m.BondLength))
	if fw.Cell.IsPeriodic() {
		pos = fw.Cell.Wrap(pos)
	}
	return pos, nil
}

// Terminate returns a copy of fw with a new terminator appended next to the given bridging atom.
// The new atom takes the next available index.
func (m *Mutator) Terminate(fw *zeo.Framework, bridging int) (*zeo.Framework, error) {
	if fw == nil {
		return nil, zeo.ErrNilFramework
	}
	pos, err := m.TerminatorPosition(fw, bridging)
	if err != nil {
		return nil, err
	}

	out := fw.Clone()
	out.AppendAtom(m.TerminatorSymbol, zeo.Terminator, pos)
	return out, nil
}

// MutateSite substitutes the center and then caps the bridging atom of the substituted snapshot.
func (m *Mutator) MutateSite(fw *zeo.Framework, center, bridging int) (substituted, terminated *zeo.Framework, err error) {
	substituted, err = m.Substitute(fw, center)
	if err != nil {
		return nil, nil, err
	}
	terminated, err = m.Terminate(substituted, bridging)
	if err != nil {
		return nil, nil, err
	}
	return substituted, terminated, nil
}
