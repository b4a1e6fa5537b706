package zeo

const (

	// DefaultCutoff is the distance below which two atoms are considered bonded.
	DefaultCutoff = 2.0

	// Expected topological degree of each species.
	DefaultCenterDegree     = 4
	DefaultBridgingDegree   = 2
	DefaultTerminatorDegree = 1

	// DefaultBondLength is the distance a new Terminator is placed from its Bridging atom.
	DefaultBondLength = 1.0

	DefaultSubstituteSymbol = "Al"
	DefaultTerminatorSymbol = "H"
)

// Species is the topological role of an atom in a framework.
type Species byte

const (
	OtherSpecies Species = iota
	TetrahedralCenter
	Bridging
	Terminator
)

func (s Species) String() string {
	switch s {
	case TetrahedralCenter:
		return "center"
	case Bridging:
		return "bridging"
	case Terminator:
		return "terminator"
	}
	return "other"
}

// ParseSpecies is the inverse of Species.String().
func ParseSpecies(str string) (Species, bool) {
	switch str {
	case "center":
		return TetrahedralCenter, true
	case "bridging":
		return Bridging, true
	case "terminator":
		return Terminator, true
	case "other":
		return OtherSpecies, true
	}
	return OtherSpecies, false
}

// Degrees holds the expected neighbour count for each species.
type Degrees struct {
	Center     int
	Bridging   int
	Terminator int
}

// DefaultDegrees are the chemically expected degrees of a silicate framework.
var DefaultDegrees = Degrees{
	Center:     DefaultCenterDegree,
	Bridging:   DefaultBridgingDegree,
	Terminator: DefaultTerminatorDegree,
}

// Expected returns the expected degree of the given species and false for OtherSpecies.
func (deg Degrees) Expected(s Species) (int, bool) {
	switch s {
	case TetrahedralCenter:
		return deg.Center, true
	case Bridging:
		return deg.Bridging, true
	case Terminator:
		return deg.Terminator, true
	}
	return 0, false
}

// SpeciesTable maps an element symbol to its topological role.
type SpeciesTable map[string]Species

// DefaultSpeciesTable covers alumino-silicate frameworks with hydroxyl protons.
var DefaultSpeciesTable = SpeciesTable{
	"Si": TetrahedralCenter,
	"Al": TetrahedralCenter,
	"O":  Bridging,
	"H":  Terminator,
}

// Lookup returns OtherSpecies for symbols not in the table.
func (tbl SpeciesTable) Lookup(symbol string) Species {
	return tbl[symbol]
}

// Atom is one site of a framework.  Index is stable for the life of a session.
type Atom struct {
	Index   int
	Symbol  string  // element label (Si, Al, O, H, ..)
	Species Species // role derived from Symbol
	Pos     Vec3
}

// Cell is the periodic box of a framework; each row of Vectors is a lattice vector.
type Cell struct {
	Vectors [3]Vec3
	PBC     [3]bool
}

// Framework is an ordered atom sequence in a periodic cell.
// Atoms[i].Index == i always holds.
type Framework struct {
	Cell  Cell
	Atoms []Atom
}

// NeighborQueryResult is the outcome of one neighbour search.
type NeighborQueryResult struct {
	Atom      int    // queried atom
	Neighbors []int  // ascending atom index order
	Positions []Vec3 // minimum-image position of each neighbour, relative to Atom's position
	Expected  int    // expected neighbour count
	Satisfied bool   // len(Neighbors) == Expected
}

// NeighborFinder discovers bonded neighbours under periodic boundaries.
type NeighborFinder interface {

	// FindNeighbors returns every atom closer than the cutoff to the given atom.
	// A count differing from expected is reported via Satisfied and is not an error.
	FindNeighbors(fw *Framework, atom int, expected int) (NeighborQueryResult, error)
}

// Seed identifies the three atoms of the reference site.
// Terminator may index past the end of the framework when the reference site carries no proton.
type Seed struct {
	Center     int
	Bridging   int
	Terminator int
}

// Shells holds the TetrahedralCenter indices discovered at each traversal depth; Shells[0] is the first ring.
type Shells [][]int

// NumCenters returns the total number of centers over all shells.
func (shells Shells) NumCenters() int {
	N := 0
	for _, shell := range shells {
		N += len(shell)
	}
	return N
}

// Site is one TetrahedralCenter and its Bridging neighbours, tagged with the shell it was found in.
type Site struct {
	Shell    int
	Center   int
	Bridging []int
}

// SiteKey addresses one generated snapshot: shell, then center, then bridging atom.
type SiteKey struct {
	Shell    int
	Center   int
	Bridging int
}

// SiteMaterializer persists the snapshots generated for each (center, bridging) pair.
// Implementations must tolerate concurrent calls for distinct keys.
type SiteMaterializer interface {

	// Materialize stores the substituted snapshot for key.Center and the terminated snapshot for key.
	Materialize(key SiteKey, substituted, terminated *Framework) error

	Close() error
}

// Mismatch reports an atom whose discovered degree differs from its expected degree.
type Mismatch struct {
	Atom     int
	Symbol   string
	Species  Species
	Actual   int
	Expected int
}
