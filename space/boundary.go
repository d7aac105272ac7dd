package space

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Boundary represents a periodic unit cell, orthorhombic or fully
// triclinic. It provides the Bravais and reciprocal basis vectors, the
// cell volume, and transformations between Cartesian and generalized
// (fractional) coordinates. All fields are fixed at construction; a
// change of cell shape means constructing a new Boundary.
type Boundary struct {
	bravais    [3]Vec // rows a0, a1, a2
	reciprocal [3]Vec // rows b0, b1, b2, with b_i . a_j = 2 pi delta_ij
	volume     float64
}

// NewOrthorhombic returns a Boundary for a rectangular cell with the
// given edge lengths.
func NewOrthorhombic(lengths Vec) (*Boundary, error) {
	return NewTriclinic(
		Vec{lengths[0], 0, 0},
		Vec{0, lengths[1], 0},
		Vec{0, 0, lengths[2]},
	)
}

// NewCubic returns a Boundary for a cubic cell with edge length l.
func NewCubic(l float64) (*Boundary, error) {
	return NewOrthorhombic(Vec{l, l, l})
}

// NewTriclinic returns a Boundary spanned by the Bravais basis vectors
// a0, a1, a2. The reciprocal basis is computed by inverting the basis
// matrix, so a degenerate (non-invertible) cell is rejected.
func NewTriclinic(a0, a1, a2 Vec) (*Boundary, error) {
	b := &Boundary{bravais: [3]Vec{a0, a1, a2}}

	a := mat.NewDense(3, 3, []float64{
		a0[0], a0[1], a0[2],
		a1[0], a1[1], a1[2],
		a2[0], a2[1], a2[2],
	})

	b.volume = math.Abs(mat.Det(a))
	if b.volume == 0 {
		return nil, fmt.Errorf(
			"degenerate unit cell: basis vectors %v, %v, %v are coplanar",
			a0, a1, a2,
		)
	}

	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return nil, fmt.Errorf("cannot invert unit cell basis: %v", err)
	}

	// Columns of the inverse, scaled by 2 pi, are the reciprocal vectors.
	twoPi := 2 * math.Pi
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			b.reciprocal[i][j] = twoPi * inv.At(j, i)
		}
	}

	return b, nil
}

// BravaisBasisVector returns Bravais lattice basis vector i.
func (b *Boundary) BravaisBasisVector(i int) Vec {
	return b.bravais[i]
}

// ReciprocalBasisVector returns reciprocal lattice basis vector i.
func (b *Boundary) ReciprocalBasisVector(i int) Vec {
	return b.reciprocal[i]
}

// Volume returns the unit cell volume.
func (b *Boundary) Volume() float64 {
	return b.volume
}

// TransformCartToGen converts a Cartesian position r into generalized
// (fractional) coordinates, written into gen. Components are not wrapped
// into the primary image; call Shift for that.
func (b *Boundary) TransformCartToGen(r *Vec, gen *Vec) {
	twoPi := 2 * math.Pi
	for i := 0; i < 3; i++ {
		gen[i] = b.reciprocal[i].Dot(r) / twoPi
	}
}

// TransformGenToCart converts generalized coordinates gen back into a
// Cartesian position, written into r.
func (b *Boundary) TransformGenToCart(gen *Vec, r *Vec) {
	r.Zero()
	for i := 0; i < 3; i++ {
		r.AddScaled(&b.bravais[i], gen[i])
	}
}

// Shift wraps generalized coordinates into [0, 1) component-wise, using
// floor so that negative coordinates wrap correctly.
func (b *Boundary) Shift(gen *Vec) {
	for i := 0; i < 3; i++ {
		gen[i] -= math.Floor(gen[i])
	}
}

// DistanceSq returns the squared minimum-image distance between r1 and
// r2, writing the minimum-image separation vector r1 - r2 into dr.
func (b *Boundary) DistanceSq(r1, r2 *Vec, dr *Vec) float64 {
	var g1, g2 Vec
	b.TransformCartToGen(r1, &g1)
	b.TransformCartToGen(r2, &g2)

	var dg Vec
	for i := 0; i < 3; i++ {
		dg[i] = g1[i] - g2[i]
		dg[i] -= math.Round(dg[i])
	}

	b.TransformGenToCart(&dg, dr)
	return dr.Square()
}
