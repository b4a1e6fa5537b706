package shells

import (
	"github.com/RoaringBitmap/roaring"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/fine-structures/zeosite/zeo"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// ClassifyOpts specifies the reference site and degree expectations of a classification.
type ClassifyOpts struct {
	Seed    zeo.Seed
	Degrees zeo.Degrees // zero fields select zeo.DefaultDegrees
}

// Classification is the outcome of a shell traversal.
type Classification struct {
	Shells           zeo.Shells
	Levels           int   // number of breadth-first levels walked
	DegreeMismatches []int // atoms whose neighbour count differed from expectation during traversal
}

func (opts *ClassifyOpts) degrees() zeo.Degrees {
	deg := opts.Degrees
	if deg.Center <= 0 {
		deg.Center = zeo.DefaultCenterDegree
	}
	if deg.Bridging <= 0 {
		deg.Bridging = zeo.DefaultBridgingDegree
	}
	if deg.Terminator <= 0 {
		deg.Terminator = zeo.DefaultTerminatorDegree
	}
	return deg
}

// Classify walks the framework breadth-first from the seed center and returns, per depth,
// the TetrahedralCenter atoms first reached at that depth.
//
// The three seed atoms are never admitted to any shell.  The walk must reach every atom
// other than the seed center (and an absent or excluded terminator); otherwise
// zeo.ErrIncompleteTraversal is returned.
func Classify(fw *zeo.Framework, finder zeo.NeighborFinder, opts ClassifyOpts) (*Classification, error) {
	if fw == nil {
		return nil, zeo.ErrNilFramework
	}
	seed := opts.Seed
	topo := NewTopology(fw, finder, opts.degrees())

	if err := checkSeed(fw, topo, seed); err != nil {
		return nil, err
	}

	N := fw.NumAtoms()
	excluded := roaring.New()
	for _, idx := range []int{seed.Center, seed.Bridging, seed.Terminator} {
		if idx >= 0 && idx < N {
			excluded.Add(uint32(idx))
		}
	}

	first, err := topo.Neighbors(seed.Center)
	if err != nil {
		return nil, err
	}

	visited := roaring.New()
	frontier := linkedlistqueue.New()
	for _, n := range first {
		if n != seed.Bridging && excluded.Contains(uint32(n)) {
			continue
		}
		visited.Add(uint32(n))
		frontier.Enqueue(n)
	}

	// Every atom is reachable except the seed center and excluded atoms not already seen
	target := uint64(N - 1)
	if seed.Terminator >= 0 && seed.Terminator < N && !visited.Contains(uint32(seed.Terminator)) {
		target--
	}

	cls := &Classification{}

	for visited.GetCardinality() < target {
		if frontier.Empty() {
			return nil, errors.Wrapf(zeo.ErrIncompleteTraversal, "frontier exhausted at level %d with %d of %d atoms visited",
				cls.Levels, visited.GetCardinality(), target)
		}
		if cls.Levels >= N {
			return nil, errors.Wrapf(zeo.ErrIncompleteTraversal, "exceeded %d levels with %d of %d atoms visited",
				N, visited.GetCardinality(), target)
		}

		var shell []int
		levelSz := frontier.Size()
		for i := 0; i < levelSz; i++ {
			val, _ := frontier.Dequeue()
			atom := val.(int)

			neighbors, err := topo.Neighbors(atom)
			if err != nil {
				return nil, err
			}

			for _, n := range neighbors {
				un := uint32(n)
				if visited.Contains(un) || excluded.Contains(un) {
					continue
				}
				visited.Add(un)
				frontier.Enqueue(n)
				if topo.Species(n) == zeo.TetrahedralCenter {
					shell = append(shell, n)
				}
			}
		}

		cls.Levels++
		if len(shell) > 0 {
			cls.Shells = append(cls.Shells, shell)
			klog.V(2).Infof("shell %d: %d centers at level %d", len(cls.Shells)-1, len(shell), cls.Levels)
		}
	}

	cls.DegreeMismatches = topo.DegreeMismatches()
	if len(cls.DegreeMismatches) > 0 {
		klog.Warningf("classification visited %d atoms with unexpected degree; shell membership may be tainted", len(cls.DegreeMismatches))
	}

	return cls, nil
}

func checkSeed(fw *zeo.Framework, topo *Topology, seed zeo.Seed) error {
	center, err := fw.Atom(seed.Center)
	if err != nil {
		return errors.Wrap(zeo.ErrBadSeed, err.Error())
	}
	if center.Species != zeo.TetrahedralCenter {
		return errors.Wrapf(zeo.ErrBadSeed, "seed center %d is %s (%s)", seed.Center, center.Symbol, center.Species)
	}

	neighbors, err := topo.Neighbors(seed.Center)
	if err != nil {
		return err
	}
	paired := false
	for _, n := range neighbors {
		if n == seed.Bridging {
			paired = true
			break
		}
	}
	if !paired {
		return errors.Wrapf(zeo.ErrBadSeed, "seed bridging atom %d is not bonded to seed center %d", seed.Bridging, seed.Center)
	}

	if seed.Terminator >= 0 && seed.Terminator < fw.NumAtoms() {
		if sp := fw.Atoms[seed.Terminator].Species; sp != zeo.Terminator {
			return errors.Wrapf(zeo.ErrBadSeed, "seed terminator %d is %s", seed.Terminator, sp)
		}
	}
	return nil
}

// Sites pairs every classified center with its Bridging neighbours, in shell order.
func Sites(fw *zeo.Framework, finder zeo.NeighborFinder, shells zeo.Shells, degrees zeo.Degrees) ([]zeo.Site, error) {
	if degrees.Center <= 0 {
		degrees.Center = zeo.DefaultCenterDegree
	}

	sites := make([]zeo.Site, 0, shells.NumCenters())
	for si, shell := range shells {
		for _, center := range shell {
			res, err := finder.FindNeighbors(fw, center, degrees.Center)
			if err != nil {
				return nil, err
			}
			site := zeo.Site{
				Shell:  si,
				Center: center,
			}
			for _, n := range res.Neighbors {
				if fw.Atoms[n].Species == zeo.Bridging {
					site.Bridging = append(site.Bridging, n)
				}
			}
			sites = append(sites, site)
		}
	}
	return sites, nil
}
