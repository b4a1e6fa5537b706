package zeo

import "errors"

// Errors
var (
	ErrBadAtomIndex                 = errors.New("atom index out of range")
	ErrBadSeed                      = errors.New("bad reference site")
	ErrBadStructure                 = errors.New("bad structure")
	ErrBadConfig                    = errors.New("bad config param")
	ErrWrongSpecies                 = errors.New("atom has the wrong species for this operation")
	ErrIncompleteTraversal          = errors.New("traversal ended without visiting every atom")
	ErrStructuralUnderdetermination = errors.New("bridging atom has fewer than two tetrahedral neighbours")
	ErrDegenerateGeometry           = errors.New("bridging atom coincides with its tetrahedral midpoint")
	ErrBadEncoding                  = errors.New("bad framework encoding")
	ErrNilFramework                 = errors.New("nil framework")
)
