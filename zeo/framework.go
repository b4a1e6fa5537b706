package zeo

import (
	"math"

	"github.com/pkg/errors"
)

// NewFramework assembles a Framework, assigning indices in order and species from the given table.
func NewFramework(cell Cell, symbols []string, positions []Vec3, table SpeciesTable) (*Framework, error) {
	if len(symbols) != len(positions) {
		return nil, errors.Wrapf(ErrBadStructure, "%d symbols but %d positions", len(symbols), len(positions))
	}
	if table == nil {
		table = DefaultSpeciesTable
	}

	fw := &Framework{
		Cell:  cell,
		Atoms: make([]Atom, len(symbols)),
	}
	for i, sym := range symbols {
		fw.Atoms[i] = Atom{
			Index:   i,
			Symbol:  sym,
			Species: table.Lookup(sym),
			Pos:     positions[i],
		}
	}
	return fw, nil
}

// NumAtoms returns the number of atoms in this framework.
func (fw *Framework) NumAtoms() int {
	return len(fw.Atoms)
}

// Atom returns the atom at the given index or ErrBadAtomIndex.
func (fw *Framework) Atom(idx int) (*Atom, error) {
	if idx < 0 || idx >= len(fw.Atoms) {
		return nil, errors.Wrapf(ErrBadAtomIndex, "index %d, atom count %d", idx, len(fw.Atoms))
	}
	return &fw.Atoms[idx], nil
}

// Clone returns an independent copy of this framework.
func (fw *Framework) Clone() *Framework {
	dup := &Framework{
		Cell:  fw.Cell,
		Atoms: make([]Atom, len(fw.Atoms)),
	}
	copy(dup.Atoms, fw.Atoms)
	return dup
}

// AppendAtom adds a new atom at the next available index and returns that index.
func (fw *Framework) AppendAtom(symbol string, species Species, pos Vec3) int {
	idx := len(fw.Atoms)
	fw.Atoms = append(fw.Atoms, Atom{
		Index:   idx,
		Symbol:  symbol,
		Species: species,
		Pos:     pos,
	})
	return idx
}

// CountSpecies returns how many atoms have the given species.
func (fw *Framework) CountSpecies(s Species) int {
	N := 0
	for i := range fw.Atoms {
		if fw.Atoms[i].Species == s {
			N++
		}
	}
	return N
}

// Reassign recomputes every atom's species from the given table.
func (fw *Framework) Reassign(table SpeciesTable) {
	for i := range fw.Atoms {
		fw.Atoms[i].Species = table.Lookup(fw.Atoms[i].Symbol)
	}
}

// CheckIndices verifies that Atoms[i].Index == i for all atoms.
func (fw *Framework) CheckIndices() error {
	if fw == nil {
		return ErrNilFramework
	}
	for i := range fw.Atoms {
		if fw.Atoms[i].Index != i {
			return errors.Wrapf(ErrBadStructure, "atom at position %d carries index %d", i, fw.Atoms[i].Index)
		}
	}
	return nil
}

// IsPeriodic returns true if any axis of the cell is periodic.
func (cell *Cell) IsPeriodic() bool {
	return cell.PBC[0] || cell.PBC[1] || cell.PBC[2]
}

// Volume is the signed triple product of the lattice vectors.
func (cell *Cell) Volume() float64 {
	return cell.Vectors[0].Dot(cell.Vectors[1].Cross(cell.Vectors[2]))
}

// ToCartesian maps fractional coordinates to a cartesian position.
func (cell *Cell) ToCartesian(frac Vec3) Vec3 {
	var pos Vec3
	for i := 0; i < 3; i++ {
		pos = pos.Add(cell.Vectors[i].Scale(frac[i]))
	}
	return pos
}

// ToFractional maps a cartesian position to fractional coordinates.
// A singular cell returns false.
func (cell *Cell) ToFractional(pos Vec3) (Vec3, bool) {
	a, b, c := cell.Vectors[0], cell.Vectors[1], cell.Vectors[2]
	vol := cell.Volume()
	if math.Abs(vol) < GeomEpsilon {
		return Vec3{}, false
	}

	// Rows of the inverse are the reciprocal vectors (without the 2π)
	ra := b.Cross(c).Scale(1 / vol)
	rb := c.Cross(a).Scale(1 / vol)
	rc := a.Cross(b).Scale(1 / vol)
	return Vec3{ra.Dot(pos), rb.Dot(pos), rc.Dot(pos)}, true
}

// Wrap translates pos back into the cell along its periodic axes.
func (cell *Cell) Wrap(pos Vec3) Vec3 {
	frac, ok := cell.ToFractional(pos)
	if !ok {
		return pos
	}
	for i := 0; i < 3; i++ {
		if cell.PBC[i] {
			frac[i] -= math.Floor(frac[i])
		}
	}
	return cell.ToCartesian(frac)
}
