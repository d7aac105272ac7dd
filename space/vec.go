/*package space contains the geometric primitives used throughout the
simulation: vectors, integer wave indices, symmetric tensors, and the
periodic Boundary that owns the unit cell.*/
package space

import (
	"math"
)

// Vec is a three dimensional Cartesian vector.
type Vec [3]float64

// IntVec is a three dimensional vector of integer indices, used for
// reciprocal lattice wavevectors and grid coordinates.
type IntVec [3]int

// Zero sets every component of v to zero.
func (v *Vec) Zero() {
	v[0], v[1], v[2] = 0, 0, 0
}

// AddSelf adds u to v in place.
func (v *Vec) AddSelf(u *Vec) {
	v[0] += u[0]
	v[1] += u[1]
	v[2] += u[2]
}

// SubSelf subtracts u from v in place.
func (v *Vec) SubSelf(u *Vec) {
	v[0] -= u[0]
	v[1] -= u[1]
	v[2] -= u[2]
}

// ScaleSelf multiplies every component of v by s.
func (v *Vec) ScaleSelf(s float64) {
	v[0] *= s
	v[1] *= s
	v[2] *= s
}

// AddScaled adds s*u to v in place.
func (v *Vec) AddScaled(u *Vec, s float64) {
	v[0] += u[0] * s
	v[1] += u[1] * s
	v[2] += u[2] * s
}

// Dot returns the inner product of v and u.
func (v *Vec) Dot(u *Vec) float64 {
	return v[0]*u[0] + v[1]*u[1] + v[2]*u[2]
}

// Square returns the squared Euclidean norm of v.
func (v *Vec) Square() float64 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

// Norm returns the Euclidean norm of v.
func (v *Vec) Norm() float64 {
	return math.Sqrt(v.Square())
}

// Cross sets v to the cross product of a and b.
func (v *Vec) Cross(a, b *Vec) {
	v[0] = a[1]*b[2] - a[2]*b[1]
	v[1] = a[2]*b[0] - a[0]*b[2]
	v[2] = a[0]*b[1] - a[1]*b[0]
}

// Tensor is a symmetric rank two tensor, stored in full.
type Tensor [3][3]float64

// Zero sets every component of t to zero.
func (t *Tensor) Zero() {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] = 0
		}
	}
}

// AddSelf adds s to t in place.
func (t *Tensor) AddSelf(s *Tensor) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] += s[i][j]
		}
	}
}

// ScaleSelf multiplies every component of t by s.
func (t *Tensor) ScaleSelf(s float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] *= s
		}
	}
}

// Trace returns the trace of t.
func (t *Tensor) Trace() float64 {
	return t[0][0] + t[1][1] + t[2][2]
}
