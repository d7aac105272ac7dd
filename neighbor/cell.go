/*package neighbor implements the spatial cell list used to enumerate
candidate interacting atom pairs within a cutoff radius under periodic
boundary conditions.

A CellList partitions the unit cell into a regular grid of cells, padded
on every side by a shell of ghost cells. Atoms are re-binned into cells
every step with a two-pass counting sort, and Cell.GetNeighbors walks a
precomputed table of neighbor-cell strips to return every atom that
could lie within the cutoff of an atom in the primary cell.

A typical force loop looks like:

	na := neighbor.NewNeighborArray()
	for c := list.Begin(); c != nil; c = c.NextCell() {
		na.Clear()
		c.GetNeighbors(na)
		atoms := na.Atoms()
		for i := 0; i < c.NAtom(); i++ {
			for j := i + 1; j < len(atoms); j++ {
				// atoms[i], atoms[j] is a candidate pair
			}
		}
	}

Iterating this way yields each local-local pair exactly once and each
local-ghost pair exactly once per ghost image.*/
package neighbor

import (
	"fmt"

	"github.com/ksgustafson/simpatico/chemistry"
	"github.com/ksgustafson/simpatico/space"
)

const (
	// MaxNeighborAtom is the maximum number of atoms in a cell and its
	// neighbor cells combined.
	MaxNeighborAtom = 2000

	// MaxNCellCut is the maximum number of grid cells spanned by one
	// cutoff length along any direction.
	MaxNCellCut = 4

	// OffsetArrayCapacity is the maximum number of neighbor-cell strips
	// in an OffsetArray.
	OffsetArrayCapacity = (2*MaxNCellCut+1)*(2*MaxNCellCut+1) + 3
)

// CellAtom pairs an atom pointer with a cached copy of the data the
// pair loop reads. The cache is filled when the atom is appended to a
// cell and is invalidated by the next rebin.
type CellAtom struct {
	ptr   *chemistry.Atom
	pos   space.Vec
	ghost bool
}

// Ptr returns the underlying atom.
func (ca *CellAtom) Ptr() *chemistry.Atom { return ca.ptr }

// Position returns the position cached at binning time.
func (ca *CellAtom) Position() *space.Vec { return &ca.pos }

// IsGhost returns true if the atom was binned into a ghost cell.
func (ca *CellAtom) IsGhost() bool { return ca.ghost }

// NeighborArray is a bounds-checked container for the atoms returned by
// GetNeighbors. Its capacity is reserved once so that no allocation
// happens inside a force pass.
type NeighborArray struct {
	atoms []*CellAtom
}

// NewNeighborArray returns an empty NeighborArray with full capacity.
func NewNeighborArray() *NeighborArray {
	return &NeighborArray{atoms: make([]*CellAtom, 0, MaxNeighborAtom)}
}

// Clear empties the array without releasing its storage.
func (na *NeighborArray) Clear() { na.atoms = na.atoms[:0] }

// Len returns the number of stored atoms.
func (na *NeighborArray) Len() int { return len(na.atoms) }

// Atoms returns the stored atoms. The slice is owned by the
// NeighborArray and is invalidated by the next Clear.
func (na *NeighborArray) Atoms() []*CellAtom { return na.atoms }

func (na *NeighborArray) append(ca *CellAtom) {
	if len(na.atoms) == MaxNeighborAtom {
		panic(fmt.Sprintf(
			"neighbor list overflow: more than %d atoms within one "+
				"cutoff volume; reduce the pair cutoff or enlarge the cell",
			MaxNeighborAtom,
		))
	}
	na.atoms = append(na.atoms, ca)
}

// OffsetArray lists the cells neighboring a primary cell as strips of
// contiguous flat cell-id offsets, relative to the primary cell's id.
// Each strip [2]int holds the first and last relative id of one run of
// cells along the innermost grid dimension. One OffsetArray is built per
// grid geometry and shared read-only by every cell.
type OffsetArray struct {
	strips [][2]int
}

// NStrip returns the number of strips.
func (oa *OffsetArray) NStrip() int { return len(oa.strips) }

func (oa *OffsetArray) appendStrip(first, last int) error {
	if len(oa.strips) == OffsetArrayCapacity {
		return fmt.Errorf(
			"neighbor offset table overflow: more than %d cell strips",
			OffsetArrayCapacity,
		)
	}
	oa.strips = append(oa.strips, [2]int{first, last})
	return nil
}

// Cell is one spatial bin of a CellList. It owns a contiguous segment
// of the parent list's CellAtom arena. Cells are filled in two phases:
// Clear, then one IncrementCapacity call per atom that belongs in the
// cell, then Initialize to attach backing storage, then Append per atom.
type Cell struct {
	begin        []CellAtom
	offsets      *OffsetArray
	cells        []Cell // parent arena, for neighbor lookup by id
	next         int    // id of next cell in the local list, -1 at end
	nAtom        int
	atomCapacity int
	id           int
	isGhost      bool
}

// Id returns the flat grid id of the cell.
func (c *Cell) Id() int { return c.id }

// NAtom returns the number of atoms currently in the cell.
func (c *Cell) NAtom() int { return c.nAtom }

// AtomCapacity returns the capacity counted for the current rebin pass.
func (c *Cell) AtomCapacity() int { return c.atomCapacity }

// IsGhost returns true for cells in the ghost padding shell.
func (c *Cell) IsGhost() bool { return c.isGhost }

// NextCell returns the next cell in the linked list of non-empty local
// cells, or nil at the end of the list.
func (c *Cell) NextCell() *Cell {
	if c.next < 0 {
		return nil
	}
	return &c.cells[c.next]
}

// Atom returns a pointer to cell atom i.
func (c *Cell) Atom(i int) *CellAtom { return &c.begin[i] }

// Clear resets the cell to empty before capacity counting. It does not
// touch the id, ghost flag, or offset table.
func (c *Cell) Clear() {
	c.begin = nil
	c.nAtom = 0
	c.atomCapacity = 0
}

// IncrementCapacity counts one atom that will be appended to this cell.
// All capacity counting must finish before Initialize is called.
func (c *Cell) IncrementCapacity() {
	if c.begin != nil {
		panic("cell capacity incremented after storage was attached")
	}
	c.atomCapacity++
}

// Initialize attaches a segment of the shared CellAtom arena to the
// cell and returns the remainder of the arena.
func (c *Cell) Initialize(arena []CellAtom) []CellAtom {
	if c.begin != nil {
		panic("cell initialized twice within one rebin pass")
	}
	if c.nAtom != 0 {
		panic("cell initialized while holding atoms")
	}
	c.begin = arena[:c.atomCapacity]
	return arena[c.atomCapacity:]
}

// Append adds an atom to an initialized cell.
func (c *Cell) Append(a *chemistry.Atom) {
	if c.begin == nil {
		panic("append to a cell with no attached storage")
	}
	if c.nAtom >= c.atomCapacity {
		panic(fmt.Sprintf(
			"cell %d overfilled: capacity %d", c.id, c.atomCapacity,
		))
	}
	c.begin[c.nAtom] = CellAtom{ptr: a, pos: a.Position, ghost: c.isGhost}
	c.nAtom++
}

// GetNeighbors fills na with the atoms of this cell followed by the
// atoms of every neighboring cell that could hold a partner within the
// cutoff. To avoid double counting, atoms of a neighboring local cell
// are included only when that cell's id is greater than this cell's id;
// ghost cells are always included since they are never primary.
func (c *Cell) GetNeighbors(na *NeighborArray) {
	for i := 0; i < c.nAtom; i++ {
		na.append(&c.begin[i])
	}

	for _, strip := range c.offsets.strips {
		for id := c.id + strip[0]; id <= c.id+strip[1]; id++ {
			other := &c.cells[id]
			if other == c {
				continue
			}
			if other.isGhost || other.id > c.id {
				for i := 0; i < other.nAtom; i++ {
					na.append(&other.begin[i])
				}
			}
		}
	}
}
