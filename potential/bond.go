package potential

import (
	"fmt"
	"math"

	"github.com/ksgustafson/simpatico/chemistry"
	"github.com/ksgustafson/simpatico/space"
)

// HarmonicBondType holds the stiffness and rest length of one bond
// type, with energy kappa/2 (r - length)^2.
type HarmonicBondType struct {
	Kappa  float64
	Length float64
}

// BondPotential accumulates the harmonic bond energy and forces over a
// bond table. Bond separations use the minimum-image convention through
// the Boundary, so bonded atoms may sit on opposite sides of the cell.
type BondPotential struct {
	boundary *space.Boundary
	storage  *chemistry.Storage
	types    []HarmonicBondType
	bonds    []chemistry.Bond
}

// NewBondPotential returns a calculator for the given bond table. Every
// bond must reference valid local atoms and a valid bond type.
func NewBondPotential(
	b *space.Boundary, st *chemistry.Storage,
	types []HarmonicBondType, bonds []chemistry.Bond,
) (*BondPotential, error) {
	for i, bond := range bonds {
		if bond.Atom0 < 0 || bond.Atom0 >= st.NLocal() ||
			bond.Atom1 < 0 || bond.Atom1 >= st.NLocal() {
			return nil, fmt.Errorf(
				"bond %d references atoms (%d, %d), but only %d local "+
					"atoms exist", i, bond.Atom0, bond.Atom1, st.NLocal(),
			)
		}
		if bond.TypeId < 0 || bond.TypeId >= len(types) {
			return nil, fmt.Errorf(
				"bond %d has type %d, but only %d bond types exist",
				i, bond.TypeId, len(types),
			)
		}
	}
	return &BondPotential{
		boundary: b, storage: st, types: types, bonds: bonds,
	}, nil
}

// Energy returns the total bond energy.
func (p *BondPotential) Energy() float64 {
	total := 0.0
	var dr space.Vec

	for _, bond := range p.bonds {
		a0 := p.storage.Atom(bond.Atom0)
		a1 := p.storage.Atom(bond.Atom1)
		t := &p.types[bond.TypeId]

		rsq := p.boundary.DistanceSq(&a0.Position, &a1.Position, &dr)
		d := math.Sqrt(rsq) - t.Length
		total += 0.5 * t.Kappa * d * d
	}
	return total
}

// AddForces accumulates bond forces into both atoms of every bond.
func (p *BondPotential) AddForces() {
	var dr, df space.Vec

	for _, bond := range p.bonds {
		a0 := p.storage.Atom(bond.Atom0)
		a1 := p.storage.Atom(bond.Atom1)
		t := &p.types[bond.TypeId]

		rsq := p.boundary.DistanceSq(&a0.Position, &a1.Position, &dr)
		r := math.Sqrt(rsq)
		if r == 0 {
			continue
		}

		// f = -kappa (r - length) rhat on atom 0.
		fOverR := -t.Kappa * (r - t.Length) / r
		df = dr
		df.ScaleSelf(fOverR)

		a0.Force.AddSelf(&df)
		a1.Force.SubSelf(&df)
	}
}
