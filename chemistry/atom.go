/*package chemistry contains the atom, atom type, and bond bookkeeping
shared by the neighbor list and the potential energy calculators.*/
package chemistry

import (
	"github.com/ksgustafson/simpatico/space"
)

// Atom is a point particle. Position and Force are in Cartesian
// coordinates; Force is an accumulator that potential calculators add
// into rather than overwrite. Atoms are owned by a Storage, and every
// other component refers to them by pointer.
type Atom struct {
	Position space.Vec
	Force    space.Vec
	Id       int
	TypeId   int
}

// AtomType holds the per-type parameters looked up through an atom's
// TypeId.
type AtomType struct {
	Name   string
	Mass   float64
	Charge float64
}

// Bond is a covalent bond between two atoms, identified by their ids,
// with a bond type index into the bond parameter table.
type Bond struct {
	Atom0, Atom1 int
	TypeId       int
}
