/*package simulation wires the boundary, atom storage, cell list, and
potential energy calculators into one System and keeps their caches
consistent as atoms move.*/
package simulation

import (
	"fmt"

	"github.com/ksgustafson/simpatico/chemistry"
	"github.com/ksgustafson/simpatico/coulomb"
	"github.com/ksgustafson/simpatico/neighbor"
	"github.com/ksgustafson/simpatico/potential"
	"github.com/ksgustafson/simpatico/space"
)

// System owns one simulated configuration: a periodic Boundary, the
// atom Storage, the type table, and the optional pair, bond, and
// Coulomb calculators. Position mutations must go through System
// methods so that cached energies are invalidated.
type System struct {
	Boundary *space.Boundary
	Storage  *chemistry.Storage
	Types    []chemistry.AtomType

	cellList *neighbor.CellList
	pairPot  *potential.PairPotential
	bondPot  *potential.BondPotential
	ewald    *coulomb.EwaldRecip

	binned bool
}

// NewSystem returns a System with no potentials attached.
func NewSystem(
	b *space.Boundary, st *chemistry.Storage, types []chemistry.AtomType,
) (*System, error) {
	for i := 0; i < st.NAtom(); i++ {
		t := st.Atom(i).TypeId
		if t < 0 || t >= len(types) {
			return nil, fmt.Errorf(
				"atom %d has type %d, but only %d types exist",
				i, t, len(types),
			)
		}
	}
	return &System{Boundary: b, Storage: st, Types: types}, nil
}

// SetPairPotential attaches a short-range pair interaction and builds
// the cell grid for its cutoff. nCellCut is the number of cells spanned
// per cutoff length, at most neighbor.MaxNCellCut.
func (s *System) SetPairPotential(pair potential.Pair, nCellCut int) error {
	cl := &neighbor.CellList{}
	if err := cl.MakeGrid(s.Boundary, pair.Cutoff(), nCellCut); err != nil {
		return err
	}
	s.cellList = cl
	s.pairPot = potential.NewPairPotential(cl, pair)
	s.binned = false
	return nil
}

// SetBondPotential attaches a harmonic bond calculator.
func (s *System) SetBondPotential(
	types []potential.HarmonicBondType, bonds []chemistry.Bond,
) error {
	bp, err := potential.NewBondPotential(s.Boundary, s.Storage, types, bonds)
	if err != nil {
		return err
	}
	s.bondPot = bp
	return nil
}

// SetCoulomb attaches a k-space Ewald calculator.
func (s *System) SetCoulomb(alpha, epsilon, kCutoff float64) error {
	e, err := coulomb.NewEwaldRecip(
		s.Boundary, s.Storage, s.Types, alpha, epsilon, kCutoff,
	)
	if err != nil {
		return err
	}
	s.ewald = e
	return nil
}

// CellList returns the neighbor cell list, or nil before
// SetPairPotential.
func (s *System) CellList() *neighbor.CellList { return s.cellList }

// Ewald returns the k-space calculator, or nil before SetCoulomb.
func (s *System) Ewald() *coulomb.EwaldRecip { return s.ewald }

// MoveAtom sets the position of local atom i and invalidates every
// position-dependent cache.
func (s *System) MoveAtom(i int, pos space.Vec) {
	s.Storage.Atom(i).Position = pos
	s.binned = false
	if s.ewald != nil {
		s.ewald.InvalidatePositions()
	}
}

// wrapPositions folds every local atom position into the primary
// image, so that cached cell-list positions and ghost images agree.
func (s *System) wrapPositions() {
	var gen space.Vec
	for i := 0; i < s.Storage.NLocal(); i++ {
		a := s.Storage.Atom(i)
		s.Boundary.TransformCartToGen(&a.Position, &gen)
		s.Boundary.Shift(&gen)
		s.Boundary.TransformGenToCart(&gen, &a.Position)
	}
}

// generateGhosts replaces the ghost segment of the storage with the
// periodic images of local atoms that fall inside the ghost shell of
// the cell grid. Ghost atoms keep the id and type of their source.
func (s *System) generateGhosts() error {
	s.Storage.ClearGhosts()
	if s.cellList == nil {
		return nil
	}

	var gw [3]float64
	for i := 0; i < 3; i++ {
		gw[i] = s.cellList.GhostWidth(i)
	}

	var gen, shifted, pos space.Vec
	nLocal := s.Storage.NLocal()
	for i := 0; i < nLocal; i++ {
		a := s.Storage.Atom(i)
		s.Boundary.TransformCartToGen(&a.Position, &gen)

		for sx := -1; sx <= 1; sx++ {
			if !shiftInShell(gen[0], sx, gw[0]) {
				continue
			}
			for sy := -1; sy <= 1; sy++ {
				if !shiftInShell(gen[1], sy, gw[1]) {
					continue
				}
				for sz := -1; sz <= 1; sz++ {
					if sx == 0 && sy == 0 && sz == 0 {
						continue
					}
					if !shiftInShell(gen[2], sz, gw[2]) {
						continue
					}

					shifted = gen
					shifted[0] += float64(sx)
					shifted[1] += float64(sy)
					shifted[2] += float64(sz)
					s.Boundary.TransformGenToCart(&shifted, &pos)

					ghost := *a
					ghost.Position = pos
					ghost.Force.Zero()
					if _, err := s.Storage.AddGhost(ghost); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// shiftInShell reports whether fractional coordinate g, shifted by one
// lattice vector in direction sign, lands inside the ghost shell of
// fractional width gw.
func shiftInShell(g float64, sign int, gw float64) bool {
	switch sign {
	case 1:
		return g < gw
	case -1:
		return g >= 1-gw
	default:
		return true
	}
}

// Refresh wraps positions, regenerates ghost images, and re-bins atoms.
// It must run after any position change and before energies or forces
// are read; ComputeForces calls it implicitly.
func (s *System) Refresh() error {
	s.wrapPositions()
	if s.cellList != nil {
		if err := s.generateGhosts(); err != nil {
			return err
		}
		if err := s.cellList.Update(s.Storage); err != nil {
			return err
		}
	}
	if s.ewald != nil {
		s.ewald.InvalidatePositions()
	}
	s.binned = true
	return nil
}

// ComputeForces zeroes every force accumulator and adds the forces of
// all attached potentials.
func (s *System) ComputeForces() error {
	if err := s.Refresh(); err != nil {
		return err
	}
	s.Storage.ZeroForces()

	if s.pairPot != nil {
		s.pairPot.AddForces()
	}
	if s.bondPot != nil {
		s.bondPot.AddForces()
	}
	if s.ewald != nil {
		s.ewald.AddForces()
	}
	return nil
}

// PairEnergy returns the short-range pair energy, re-binning first if
// positions changed.
func (s *System) PairEnergy() (float64, error) {
	if s.pairPot == nil {
		return 0, nil
	}
	if !s.binned {
		if err := s.Refresh(); err != nil {
			return 0, err
		}
	}
	return s.pairPot.Energy(), nil
}

// BondEnergy returns the bond energy.
func (s *System) BondEnergy() float64 {
	if s.bondPot == nil {
		return 0
	}
	return s.bondPot.Energy()
}

// CoulombEnergy returns the k-space Coulomb energy.
func (s *System) CoulombEnergy() float64 {
	if s.ewald == nil {
		return 0
	}
	return s.ewald.Energy()
}

// PotentialEnergy returns the sum of all attached potential energies.
func (s *System) PotentialEnergy() (float64, error) {
	pair, err := s.PairEnergy()
	if err != nil {
		return 0, err
	}
	return pair + s.BondEnergy() + s.CoulombEnergy(), nil
}

// MaxForceNorm returns the largest force magnitude over local atoms,
// useful for configuration sanity reports.
func (s *System) MaxForceNorm() float64 {
	max := 0.0
	for i := 0; i < s.Storage.NLocal(); i++ {
		f := s.Storage.Atom(i).Force.Norm()
		if f > max {
			max = f
		}
	}
	return max
}
