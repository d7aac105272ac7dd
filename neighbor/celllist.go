package neighbor

import (
	"fmt"
	"math"

	"github.com/ksgustafson/simpatico/chemistry"
	"github.com/ksgustafson/simpatico/space"
)

// CellList partitions the periodic unit cell into a regular grid of
// cells sized by the pair cutoff, padded by a shell of ghost cells that
// receives ghost atoms. Grid geometry (cell array, offset table, ghost
// flags) is rebuilt only when the cutoff or Boundary changes, by
// MakeGrid. Atom assignment is rebuilt every step by Update.
type CellList struct {
	cells     []Cell
	cellAtoms []CellAtom
	binOf     []int
	offsets   OffsetArray

	boundary *space.Boundary
	cutoff   float64
	nCellCut int

	nCell   [3]int // interior cells per direction
	padded  [3]int // interior plus 2*nCellCut ghost cells
	strides [3]int

	first   int // id of first cell in the local linked list, -1 if empty
	isBuilt bool
}

// GhostWidth returns the fractional thickness of the ghost shell along
// direction i. Ghost atoms must lie within this distance (in fractional
// coordinates) of the primary image.
func (l *CellList) GhostWidth(i int) float64 {
	return float64(l.nCellCut) / float64(l.nCell[i])
}

// NCell returns the total number of cells, ghost shell included.
func (l *CellList) NCell() int { return len(l.cells) }

// GridDim returns the number of interior cells along direction i.
func (l *CellList) GridDim(i int) int { return l.nCell[i] }

// CellAt returns a pointer to the cell with flat id id.
func (l *CellList) CellAt(id int) *Cell { return &l.cells[id] }

// Begin returns the first cell in the linked list of non-empty local
// cells, or nil when no local cell holds atoms.
func (l *CellList) Begin() *Cell {
	if l.first < 0 {
		return nil
	}
	return &l.cells[l.first]
}

// MakeGrid builds the geometry-dependent structures of the cell list
// for the given boundary and pair cutoff. nCellCut is the number of
// grid cells spanned by one cutoff length; larger values give smaller
// cells and tighter neighbor volumes at the price of a larger offset
// table. MakeGrid must be called again whenever the boundary shape or
// the cutoff changes.
func (l *CellList) MakeGrid(
	b *space.Boundary, cutoff float64, nCellCut int,
) error {
	if cutoff <= 0 {
		return fmt.Errorf("pair cutoff must be positive, got %g", cutoff)
	}
	if nCellCut < 1 || nCellCut > MaxNCellCut {
		return fmt.Errorf(
			"nCellCut must be in [1, %d], got %d", MaxNCellCut, nCellCut,
		)
	}

	l.boundary = b
	l.cutoff = cutoff
	l.nCellCut = nCellCut

	// The distance between lattice planes normal to reciprocal vector
	// b_i sets the usable width of the cell along grid direction i.
	twoPi := 2 * math.Pi
	var spacing [3]float64
	for i := 0; i < 3; i++ {
		bi := b.ReciprocalBasisVector(i)
		spacing[i] = twoPi / bi.Norm()

		l.nCell[i] = int(spacing[i] * float64(nCellCut) / cutoff)
		if l.nCell[i] < 2*nCellCut+1 {
			return fmt.Errorf(
				"cutoff %g too large for unit cell: direction %d admits "+
					"only %d cells of width >= cutoff/%d, need at least %d",
				cutoff, i, l.nCell[i], nCellCut, 2*nCellCut+1,
			)
		}
		l.padded[i] = l.nCell[i] + 2*nCellCut
	}

	l.strides[2] = 1
	l.strides[1] = l.padded[2]
	l.strides[0] = l.padded[1] * l.padded[2]

	nTot := l.padded[0] * l.padded[1] * l.padded[2]
	if len(l.cells) < nTot {
		l.cells = make([]Cell, nTot)
	} else {
		l.cells = l.cells[:nTot]
	}

	if err := l.makeOffsets(spacing); err != nil {
		return err
	}

	id := 0
	for x := 0; x < l.padded[0]; x++ {
		for y := 0; y < l.padded[1]; y++ {
			for z := 0; z < l.padded[2]; z++ {
				c := &l.cells[id]
				c.id = id
				c.cells = l.cells
				c.offsets = &l.offsets
				c.next = -1
				c.isGhost = l.isGhostCoord(x, 0) ||
					l.isGhostCoord(y, 1) || l.isGhostCoord(z, 2)
				c.Clear()
				id++
			}
		}
	}

	l.first = -1
	l.isBuilt = true
	return nil
}

func (l *CellList) isGhostCoord(x, dim int) bool {
	return x < l.nCellCut || x >= l.nCellCut+l.nCell[dim]
}

// makeOffsets builds the shared table of neighbor-cell strips. A cell
// at relative grid offset (d0, d1, d2) is a neighbor if the minimum
// distance between it and the primary cell is within the cutoff. The
// strips run along the innermost grid dimension, where neighboring flat
// ids are contiguous.
func (l *CellList) makeOffsets(spacing [3]float64) error {
	l.offsets.strips = l.offsets.strips[:0]

	var width [3]float64
	for i := 0; i < 3; i++ {
		width[i] = spacing[i] / float64(l.nCell[i])
	}

	ncc := l.nCellCut
	cutoffSq := l.cutoff * l.cutoff

	gap := func(d int, i int) float64 {
		if d < 0 {
			d = -d
		}
		if d <= 1 {
			return 0
		}
		return float64(d-1) * width[i]
	}

	for d0 := -ncc; d0 <= ncc; d0++ {
		g0 := gap(d0, 0)
		for d1 := -ncc; d1 <= ncc; d1++ {
			g1 := gap(d1, 1)

			// The admissible d2 range is a single contiguous run by
			// convexity of the spherical cutoff test.
			first, last := 0, -1
			for d2 := -ncc; d2 <= ncc; d2++ {
				g2 := gap(d2, 2)
				if g0*g0+g1*g1+g2*g2 <= cutoffSq {
					if last < first {
						first = d2
					}
					last = d2
				}
			}
			if last < first {
				continue
			}

			base := d0*l.strides[0] + d1*l.strides[1]
			err := l.offsets.appendStrip(base+first, base+last)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// Update re-bins every atom of the storage into cells for the current
// step. Local atoms are wrapped into the primary image; ghost atoms are
// binned into the ghost shell from their unwrapped fractional position.
// The assignment uses a two-pass counting sort so that no per-cell
// storage grows during the fill.
func (l *CellList) Update(st *chemistry.Storage) error {
	if !l.isBuilt {
		return fmt.Errorf("cell list used before MakeGrid")
	}

	n := st.NAtom()
	if cap(l.cellAtoms) < n {
		l.cellAtoms = make([]CellAtom, n)
		l.binOf = make([]int, n)
	}
	l.cellAtoms = l.cellAtoms[:n]
	l.binOf = l.binOf[:n]

	for i := range l.cells {
		l.cells[i].Clear()
	}

	// Pass 1: count atoms per cell.
	for i := 0; i < n; i++ {
		id := l.cellIndex(st.Atom(i), st.IsGhost(i))
		l.binOf[i] = id
		l.cells[id].IncrementCapacity()
	}

	// Attach arena segments. All capacity counting is complete here.
	arena := l.cellAtoms
	for i := range l.cells {
		arena = l.cells[i].Initialize(arena)
	}

	// Pass 2: fill.
	for i := 0; i < n; i++ {
		l.cells[l.binOf[i]].Append(st.Atom(i))
	}

	// Thread non-empty local cells into a forward list.
	l.first = -1
	prev := -1
	for i := range l.cells {
		c := &l.cells[i]
		if c.isGhost || c.nAtom == 0 {
			continue
		}
		if prev < 0 {
			l.first = i
		} else {
			l.cells[prev].next = i
		}
		c.next = -1
		prev = i
	}

	return nil
}

// cellIndex maps an atom position to a flat cell id. Local atoms use
// floor-based wrapping into [0, 1) so that negative fractional
// coordinates land in the primary image; ghost atoms keep their
// unwrapped coordinate and are clamped into the padded grid.
func (l *CellList) cellIndex(a *chemistry.Atom, ghost bool) int {
	var gen space.Vec
	l.boundary.TransformCartToGen(&a.Position, &gen)
	if !ghost {
		l.boundary.Shift(&gen)
	}

	id := 0
	for i := 0; i < 3; i++ {
		x := int(math.Floor(gen[i]*float64(l.nCell[i]))) + l.nCellCut
		if ghost {
			if x < 0 {
				x = 0
			}
			if x >= l.padded[i] {
				x = l.padded[i] - 1
			}
		} else {
			// Guard against gen[i] rounding up to exactly 1.0.
			if x < l.nCellCut {
				x = l.nCellCut
			}
			if x >= l.nCellCut+l.nCell[i] {
				x = l.nCellCut + l.nCell[i] - 1
			}
		}
		id += x * l.strides[i]
	}
	return id
}
