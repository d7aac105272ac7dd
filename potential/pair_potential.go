package potential

import (
	"github.com/ksgustafson/simpatico/neighbor"
	"github.com/ksgustafson/simpatico/space"
)

// PairPotential accumulates the short-range pair energy and forces by
// walking the cell list. Positions must have been binned by a
// CellList.Update call since the last atom motion, with ghost images in
// place, so the pair loop needs no minimum-image correction.
type PairPotential struct {
	cells *neighbor.CellList
	pair  Pair
	na    *neighbor.NeighborArray
}

// NewPairPotential returns a calculator over the given cell list and
// pair interaction.
func NewPairPotential(cells *neighbor.CellList, pair Pair) *PairPotential {
	return &PairPotential{
		cells: cells,
		pair:  pair,
		na:    neighbor.NewNeighborArray(),
	}
}

// Energy returns the total short-range pair energy. Pairs where one
// partner is a ghost image carry half weight, since the mirrored pair
// is enumerated from the partner's own primary image.
func (p *PairPotential) Energy() float64 {
	total := 0.0
	var dr space.Vec

	for c := p.cells.Begin(); c != nil; c = c.NextCell() {
		p.na.Clear()
		c.GetNeighbors(p.na)
		atoms := p.na.Atoms()
		nOwn := c.NAtom()

		for i := 0; i < nOwn; i++ {
			a1 := atoms[i]
			r1 := a1.Position()
			t1 := a1.Ptr().TypeId

			for j := i + 1; j < len(atoms); j++ {
				a2 := atoms[j]
				dr = *r1
				dr.SubSelf(a2.Position())
				u := p.pair.Energy(dr.Square(), t1, a2.Ptr().TypeId)
				if a2.IsGhost() {
					u *= 0.5
				}
				total += u
			}
		}
	}
	return total
}

// AddForces accumulates pair forces into the atom force accumulators.
// For a local-ghost pair only the local atom receives a force; the
// ghost's owner receives its share from the mirrored pair.
func (p *PairPotential) AddForces() {
	var dr, df space.Vec

	for c := p.cells.Begin(); c != nil; c = c.NextCell() {
		p.na.Clear()
		c.GetNeighbors(p.na)
		atoms := p.na.Atoms()
		nOwn := c.NAtom()

		for i := 0; i < nOwn; i++ {
			a1 := atoms[i]
			r1 := a1.Position()
			t1 := a1.Ptr().TypeId

			for j := i + 1; j < len(atoms); j++ {
				a2 := atoms[j]
				dr = *r1
				dr.SubSelf(a2.Position())

				fOverR := p.pair.ForceOverR(dr.Square(), t1, a2.Ptr().TypeId)
				if fOverR == 0 {
					continue
				}
				df = dr
				df.ScaleSelf(fOverR)

				a1.Ptr().Force.AddSelf(&df)
				if !a2.IsGhost() {
					a2.Ptr().Force.SubSelf(&df)
				}
			}
		}
	}
}
