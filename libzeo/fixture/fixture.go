// Package fixture builds idealized tetrahedral frameworks with known topology.
package fixture

import (
	"math"

	"github.com/fine-structures/zeosite/zeo"
)

const (

	// TT is the center-to-center distance of every bridged pair.
	TT = 3.2

	// BridgeOffset displaces each bridging atom off its center-center axis so no T-O-T angle is straight.
	BridgeOffset = 0.25
)

// DiamondOpts specifies a diamond-net silica supercell.
type DiamondOpts struct {
	Repeat       [3]int // supercell repeats of the fcc primitive cell; zero entries select 1
	CenterSymbol string // "" selects "Si"
	BridgeSymbol string // "" selects "O"
}

// CHALike is a 3x3x2 supercell: 36 centers and 72 bridging atoms, 108 atoms in all.
var CHALike = DiamondOpts{
	Repeat: [3]int{3, 3, 2},
}

// Diamond returns a fully periodic 4-connected framework where centers sit on a diamond net
// and one bridging atom sits near the midpoint of every center-center bond.
//
// All centers come first (ascending supercell order), followed by all bridging atoms.
// Every center has exactly 4 bridging neighbours and every bridging atom exactly 2 centers within zeo.DefaultCutoff.
func Diamond(opts DiamondOpts) *zeo.Framework {
	for i := range opts.Repeat {
		if opts.Repeat[i] <= 0 {
			opts.Repeat[i] = 1
		}
	}
	if opts.CenterSymbol == "" {
		opts.CenterSymbol = "Si"
	}
	if opts.BridgeSymbol == "" {
		opts.BridgeSymbol = "O"
	}

	// Conventional cubic edge such that a*sqrt(3)/4 == TT
	a := 4 * TT / math.Sqrt(3)
	prim := [3]zeo.Vec3{
		{0, a / 2, a / 2},
		{a / 2, 0, a / 2},
		{a / 2, a / 2, 0},
	}
	basis := zeo.Vec3{a / 4, a / 4, a / 4}

	var cell zeo.Cell
	for i := 0; i < 3; i++ {
		cell.Vectors[i] = prim[i].Scale(float64(opts.Repeat[i]))
		cell.PBC[i] = true
	}

	var (
		symbols   []string
		positions []zeo.Vec3
		bridges   []zeo.Vec3
	)

	xhat := zeo.Vec3{1, 0, 0}
	for i := 0; i < opts.Repeat[0]; i++ {
		for j := 0; j < opts.Repeat[1]; j++ {
			for k := 0; k < opts.Repeat[2]; k++ {
				origin := prim[0].Scale(float64(i)).Add(prim[1].Scale(float64(j))).Add(prim[2].Scale(float64(k)))
				t0 := origin
				t1 := origin.Add(basis)
				positions = append(positions, cell.Wrap(t0), cell.Wrap(t1))
				symbols = append(symbols, opts.CenterSymbol, opts.CenterSymbol)

				// The four bonds of t0 reach t1 and its images translated by -prim[0..2]
				ends := []zeo.Vec3{t1, t1.Sub(prim[0]), t1.Sub(prim[1]), t1.Sub(prim[2])}
				for _, end := range ends {
					bond := end.Sub(t0)
					perp, _ := bond.Cross(xhat).Normalized()
					mid := t0.Midpoint(end).Add(perp.Scale(BridgeOffset))
					bridges = append(bridges, cell.Wrap(mid))
				}
			}
		}
	}

	for _, pos := range bridges {
		positions = append(positions, pos)
		symbols = append(symbols, opts.BridgeSymbol)
	}

	fw, err := zeo.NewFramework(cell, symbols, positions, zeo.DefaultSpeciesTable)
	if err != nil {
		panic(err)
	}
	return fw
}

// Ring returns n centers on a circle, each bridged to its two ring neighbours, inside a large periodic cube.
//
// Centers are atoms 0..n-1; bridging atom n+i joins center i and center (i+1)%n.
// Every center therefore has 2 bridging neighbours rather than 4.
func Ring(n int) *zeo.Framework {
	if n < 3 {
		n = 3
	}
	radius := TT / (2 * math.Sin(math.Pi/float64(n)))
	edge := 2*radius + 12

	cell := zeo.Cell{
		Vectors: [3]zeo.Vec3{{edge, 0, 0}, {0, edge, 0}, {0, 0, edge}},
		PBC:     [3]bool{true, true, true},
	}
	center := zeo.Vec3{edge / 2, edge / 2, edge / 2}

	symbols := make([]string, 0, 2*n)
	positions := make([]zeo.Vec3, 0, 2*n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		positions = append(positions, center.Add(zeo.Vec3{radius * math.Cos(theta), radius * math.Sin(theta), 0}))
		symbols = append(symbols, "Si")
	}
	for i := 0; i < n; i++ {
		mid := positions[i].Midpoint(positions[(i+1)%n])
		outward, _ := mid.Sub(center).Normalized()
		positions = append(positions, mid.Add(outward.Scale(BridgeOffset)))
		symbols = append(symbols, "O")
	}

	fw, err := zeo.NewFramework(cell, symbols, positions, zeo.DefaultSpeciesTable)
	if err != nil {
		panic(err)
	}
	return fw
}
