package xyz

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fine-structures/zeosite/zeo"
	"github.com/pkg/errors"
)

const (
	kLattice = "Lattice"
	kPBC     = "pbc"
)

// Parse reads one extended XYZ frame, assigning species from the given table (nil selects zeo.DefaultSpeciesTable).
func Parse(r io.Reader, table zeo.SpeciesTable) (*zeo.Framework, error) {
	ast, err := sParseXYZ.Parse("", r)
	if err != nil {
		return nil, errors.Wrap(zeo.ErrBadStructure, err.Error())
	}
	return ast.toFramework(table)
}

// ParseString is Parse for an in-memory frame.
func ParseString(str string, table zeo.SpeciesTable) (*zeo.Framework, error) {
	return Parse(strings.NewReader(str), table)
}

// ReadFile parses the extended XYZ file at pathname.
func ReadFile(pathname string, table zeo.SpeciesTable) (*zeo.Framework, error) {
	file, err := os.Open(pathname)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	fw, err := Parse(file, table)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %q", pathname)
	}
	return fw, nil
}

func (ast *xyzFile) toFramework(table zeo.SpeciesTable) (*zeo.Framework, error) {
	if ast.Count != len(ast.Atoms) {
		return nil, errors.Wrapf(zeo.ErrBadStructure, "header declares %d atoms but %d follow", ast.Count, len(ast.Atoms))
	}

	var cell zeo.Cell
	hasLattice, hasPBC := false, false
	for _, prop := range ast.Props {
		switch prop.Key {
		case kLattice:
			vals := strings.Fields(prop.Value)
			if len(vals) != 9 {
				return nil, errors.Wrapf(zeo.ErrBadStructure, "Lattice needs 9 values, got %d", len(vals))
			}
			for i, str := range vals {
				v, err := strconv.ParseFloat(str, 64)
				if err != nil {
					return nil, errors.Wrapf(zeo.ErrBadStructure, "Lattice value %q", str)
				}
				cell.Vectors[i/3][i%3] = v
			}
			hasLattice = true
		case kPBC:
			flags := strings.Fields(prop.Value)
			if len(flags) != 3 {
				return nil, errors.Wrapf(zeo.ErrBadStructure, "pbc needs 3 flags, got %q", prop.Value)
			}
			for i, flag := range flags {
				switch flag {
				case "T", "True", "true", "1":
					cell.PBC[i] = true
				case "F", "False", "false", "0":
					cell.PBC[i] = false
				default:
					return nil, errors.Wrapf(zeo.ErrBadStructure, "pbc flag %q", flag)
				}
			}
			hasPBC = true
		}
	}

	// A lattice without explicit pbc is periodic in all directions
	if hasLattice && !hasPBC {
		cell.PBC = [3]bool{true, true, true}
	}
	if cell.IsPeriodic() && !hasLattice {
		return nil, errors.Wrap(zeo.ErrBadStructure, "pbc set without a Lattice")
	}

	symbols := make([]string, len(ast.Atoms))
	positions := make([]zeo.Vec3, len(ast.Atoms))
	for i, atom := range ast.Atoms {
		symbols[i] = atom.Symbol
		positions[i] = zeo.Vec3{atom.X, atom.Y, atom.Z}
	}

	return zeo.NewFramework(cell, symbols, positions, table)
}

// AppendXYZ appends fw as an extended XYZ frame to the given buffer.
func AppendXYZ(io []byte, fw *zeo.Framework) []byte {
	io = strconv.AppendInt(io, int64(fw.NumAtoms()), 10)
	io = append(io, '\n')

	io = append(io, kLattice...)
	io = append(io, `="`...)
	for i := 0; i < 9; i++ {
		if i > 0 {
			io = append(io, ' ')
		}
		io = strconv.AppendFloat(io, fw.Cell.Vectors[i/3][i%3], 'f', 10, 64)
	}
	io = append(io, `" Properties=species:S:1:pos:R:3 `...)
	io = append(io, kPBC...)
	io = append(io, `="`...)
	for i, periodic := range fw.Cell.PBC {
		if i > 0 {
			io = append(io, ' ')
		}
		if periodic {
			io = append(io, 'T')
		} else {
			io = append(io, 'F')
		}
	}
	io = append(io, "\"\n"...)

	for i := range fw.Atoms {
		atom := &fw.Atoms[i]
		io = append(io, atom.Symbol...)
		for _, x := range atom.Pos {
			io = append(io, ' ')
			io = strconv.AppendFloat(io, x, 'f', 10, 64)
		}
		io = append(io, '\n')
	}
	return io
}

// WriteFile writes fw as an extended XYZ file, replacing any existing file.
func WriteFile(pathname string, fw *zeo.Framework) error {
	buf := AppendXYZ(make([]byte, 0, 64*(fw.NumAtoms()+2)), fw)
	return os.WriteFile(pathname, buf, 0644)
}
