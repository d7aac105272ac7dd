/*package coulomb implements the reciprocal-space part of an Ewald
summation of the electrostatic energy, forces, and stress of a periodic
system of point charges.

The engine stores one representative of each conjugate wavevector pair
and corrects with a factor of two, tabulates per-wave Gaussian screening
weights, and evaluates per-atom phase factors by incremental complex
multiplication so that no transcendental function is called inside the
innermost force loop.*/
package coulomb

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/ksgustafson/simpatico/chemistry"
	"github.com/ksgustafson/simpatico/space"
)

// chargeEps is the threshold below which an atom is treated as neutral
// and skipped by the force loop.
const chargeEps = 1.0e-10

// EwaldRecip computes the k-space contribution of an Ewald sum. Waves
// are regenerated lazily after UnsetWaves (a boundary or cutoff
// change); energy and stress are cached until InvalidatePositions.
type EwaldRecip struct {
	boundary *space.Boundary
	storage  *chemistry.Storage
	types    []chemistry.AtomType

	alpha   float64 // Ewald splitting parameter
	epsilon float64 // dielectric permittivity
	kCutoff float64 // reciprocal-space cutoff

	hasWaves bool
	waves    []space.IntVec // half sphere, first nonzero index positive
	ksq      []float64      // squared wavevector magnitude
	g        []float64      // exp(-ksq/4 alpha^2)/ksq
	rho      []complex128   // charge structure factor

	// Index bookkeeping for the incremental phase-factor tables. The
	// phase factor for index i along dimension d lives at fexpd[i-based].
	base0, base1, base2 int
	fexp0               []complex128
	fexp1               []complex128
	fexp2               []complex128

	// Hierarchical run-length tables over valid (k0, k1, k2) triples.
	range0 [2]int
	range1 [][2]int
	range2 [][2]int

	energySet bool
	energyVal float64
	stressSet bool
	stressVal space.Tensor
}

// NewEwaldRecip returns an engine for the given boundary, atom storage,
// and type-indexed charge table. alpha is the Ewald splitting
// parameter, epsilon the dielectric permittivity, and kCutoff the
// reciprocal-space cutoff wavenumber.
func NewEwaldRecip(
	b *space.Boundary, st *chemistry.Storage, types []chemistry.AtomType,
	alpha, epsilon, kCutoff float64,
) (*EwaldRecip, error) {
	if alpha <= 0 {
		return nil, fmt.Errorf("Ewald alpha must be positive, got %g", alpha)
	}
	if epsilon <= 0 {
		return nil, fmt.Errorf("permittivity must be positive, got %g", epsilon)
	}
	if kCutoff <= 0 {
		return nil, fmt.Errorf("kCutoff must be positive, got %g", kCutoff)
	}

	return &EwaldRecip{
		boundary: b,
		storage:  st,
		types:    types,
		alpha:    alpha,
		epsilon:  epsilon,
		kCutoff:  kCutoff,
	}, nil
}

// NWave returns the number of stored waves, building them if needed.
// The conjugate of each stored wave is implicit.
func (e *EwaldRecip) NWave() int {
	if !e.hasWaves {
		e.makeWaves()
	}
	return len(e.waves)
}

// Wave returns stored wave i and its squared magnitude.
func (e *EwaldRecip) Wave(i int) (space.IntVec, float64) {
	return e.waves[i], e.ksq[i]
}

// UnsetWaves discards the wave set and everything derived from it.
// Call after any boundary or cutoff change.
func (e *EwaldRecip) UnsetWaves() {
	e.hasWaves = false
	e.InvalidatePositions()
}

// InvalidatePositions discards the cached energy and stress. Call after
// any atom moves.
func (e *EwaldRecip) InvalidatePositions() {
	e.energySet = false
	e.stressSet = false
}

// makeWaves enumerates all integer wavevectors k with
// |k0 b0 + k1 b1 + k2 b2|^2 <= kCutoff^2, keeping one representative
// per conjugate pair: k0 >= 0, and when k0 = 0 the first nonzero of
// (k1, k2) is positive. The lexicographic enumeration order makes the
// valid indices along each dimension a contiguous interval, which is
// recorded in the range tables for the force loop.
func (e *EwaldRecip) makeWaves() {
	b0 := e.boundary.ReciprocalBasisVector(0)
	b1 := e.boundary.ReciprocalBasisVector(1)
	b2 := e.boundary.ReciprocalBasisVector(2)

	twoPi := 2 * math.Pi
	prefactor := -0.25 / (e.alpha * e.alpha)
	kCutoffSq := e.kCutoff * e.kCutoff

	var maxK space.IntVec
	for j := 0; j < 3; j++ {
		aj := e.boundary.BravaisBasisVector(j)
		maxK[j] = int(math.Ceil(e.kCutoff * aj.Norm() / twoPi))
	}

	capacity := ((2*maxK[0]+1)*(2*maxK[1]+1)*(2*maxK[2]+1) - 1) / 2
	e.waves = make([]space.IntVec, 0, capacity)
	e.ksq = make([]float64, 0, capacity)
	e.g = make([]float64, 0, capacity)
	e.range1 = make([][2]int, 0, maxK[0]+1)
	e.range2 = make([][2]int, 0, (maxK[0]+1)*(2*maxK[1]+1))

	e.base0 = 0
	upper0 := -maxK[0]
	e.base1 = maxK[1]
	upper1 := -e.base1
	e.base2 = maxK[2]
	upper2 := -e.base2

	var q space.Vec
	for k0 := 0; k0 <= maxK[0]; k0++ {
		mink1 := -maxK[1]
		if k0 == 0 {
			mink1 = 0
		}
		for k1 := mink1; k1 <= maxK[1]; k1++ {
			mink2 := -maxK[2]
			if k0 == 0 && k1 == 0 {
				mink2 = 1
			}
			for k2 := mink2; k2 <= maxK[2]; k2++ {
				q.Zero()
				q.AddScaled(&b0, float64(k0))
				q.AddScaled(&b1, float64(k1))
				q.AddScaled(&b2, float64(k2))

				ksq := q.Square()
				if ksq > kCutoffSq {
					continue
				}

				if k0 > upper0 {
					upper0 = k0
				}
				if k1 < e.base1 {
					e.base1 = k1
				}
				if k1 > upper1 {
					upper1 = k1
				}
				if k2 < e.base2 {
					e.base2 = k2
				}
				if k2 > upper2 {
					upper2 = k2
				}

				e.waves = append(e.waves, space.IntVec{k0, k1, k2})
				e.ksq = append(e.ksq, ksq)
				e.g = append(e.g, math.Exp(prefactor*ksq)/ksq)
			}
		}
	}

	e.fexp0 = make([]complex128, upper0-e.base0+1)
	e.fexp1 = make([]complex128, upper1-e.base1+1)
	e.fexp2 = make([]complex128, upper2-e.base2+1)

	e.makeRanges()

	e.rho = make([]complex128, len(e.waves))
	e.hasWaves = true
}

// makeRanges rebuilds range0/range1/range2 from the wave list. The
// reconstruction count must match the wave count exactly; a mismatch
// means the enumeration order was broken and aborts.
func (e *EwaldRecip) makeRanges() {
	e.range1 = e.range1[:0]
	e.range2 = e.range2[:0]

	// The upper bound starts invalid and is corrected by the loop.
	e.range0[0] = 0
	e.range0[1] = -1
	if len(e.waves) > 0 {
		e.range0[0] = e.waves[0][0]
		e.range0[1] = e.waves[0][0] - 1
	}

	r1, r2 := -1, -1
	for _, k := range e.waves {
		switch {
		case k[0] > e.range0[1]:
			e.range0[1] = k[0]
			e.range1 = append(e.range1, [2]int{k[1], k[1]})
			r1++
			e.range2 = append(e.range2, [2]int{k[2], k[2]})
			r2++
		case k[1] > e.range1[r1][1]:
			e.range1[r1][1] = k[1]
			e.range2 = append(e.range2, [2]int{k[2], k[2]})
			r2++
		default:
			e.range2[r2][1] = k[2]
		}
	}

	nItems := 0
	for _, p := range e.range2 {
		nItems += p[1] - p[0] + 1
	}
	if nItems != len(e.waves) {
		panic(fmt.Sprintf(
			"wave range tables reconstruct %d waves, but %d were stored",
			nItems, len(e.waves),
		))
	}
}

// computeStructureFactor accumulates the Fourier modes of the charge
// density, rho_k = sum_i q_i exp(2 pi i k . rg_i), over all local atoms
// by direct trigonometric evaluation.
func (e *EwaldRecip) computeStructureFactor() {
	twoPi := 2 * math.Pi

	for i := range e.rho {
		e.rho[i] = 0
	}

	var rg space.Vec
	for ia := 0; ia < e.storage.NLocal(); ia++ {
		atom := e.storage.Atom(ia)
		charge := e.types[atom.TypeId].Charge
		if math.Abs(charge) <= chargeEps {
			continue
		}
		e.boundary.TransformCartToGen(&atom.Position, &rg)

		for i, k := range e.waves {
			dot := twoPi * (rg[0]*float64(k[0]) +
				rg[1]*float64(k[1]) + rg[2]*float64(k[2]))
			s, c := math.Sincos(dot)
			e.rho[i] += complex(charge*c, charge*s)
		}
	}
}

// Energy returns the k-space Coulomb energy,
// (1/2 epsilon V) sum_k |rho_k|^2 g_k, doubled for the implicit
// conjugate waves. The value is cached until positions or geometry
// change.
func (e *EwaldRecip) Energy() float64 {
	if e.energySet {
		return e.energyVal
	}
	if !e.hasWaves {
		e.makeWaves()
	}
	e.computeStructureFactor()

	total := 0.0
	for i := range e.waves {
		x := real(e.rho[i])
		y := imag(e.rho[i])
		total += (x*x + y*y) * e.g[i]
	}
	total *= 0.5 / (e.epsilon * e.boundary.Volume())

	e.energyVal = 2.0 * total
	e.energySet = true
	return e.energyVal
}

// AddForces accumulates the k-space Coulomb force on every charged
// local atom into its force accumulator. Per-wave phase factors are
// built by incremental multiplication along each index dimension and
// combined through the range tables, so the innermost loop performs
// only complex multiplications.
func (e *EwaldRecip) AddForces() {
	if !e.hasWaves {
		e.makeWaves()
	}
	e.computeStructureFactor()

	twoPiIm := complex(0, 2*math.Pi)
	prefactor := -2.0 / (e.epsilon * e.boundary.Volume())

	var b [3]space.Vec
	for j := 0; j < 3; j++ {
		b[j] = e.boundary.ReciprocalBasisVector(j)
	}

	var rg, fg space.Vec
	for ia := 0; ia < e.storage.NLocal(); ia++ {
		atom := e.storage.Atom(ia)
		charge := e.types[atom.TypeId].Charge
		if math.Abs(charge) <= chargeEps {
			continue
		}
		e.boundary.TransformCartToGen(&atom.Position, &rg)

		e.tabulatePhases(&rg, twoPiIm)

		r1, r2, i := -1, -1, -1
		fg.Zero()
		for i0 := e.range0[0]; i0 <= e.range0[1]; i0++ {
			e0 := e.fexp0[i0-e.base0]
			r1++

			for i1 := e.range1[r1][0]; i1 <= e.range1[r1][1]; i1++ {
				e1 := e0 * e.fexp1[i1-e.base1]
				r2++

				for i2 := e.range2[r2][0]; i2 <= e.range2[r2][1]; i2++ {
					e2 := e1 * e.fexp2[i2-e.base2]
					i++

					w := e.g[i] * (real(e2)*imag(e.rho[i]) -
						imag(e2)*real(e.rho[i]))
					fg[0] += float64(i0) * w
					fg[1] += float64(i1) * w
					fg[2] += float64(i2) * w
				}
			}
		}

		fg.ScaleSelf(charge * prefactor)

		// Transform the generalized force to Cartesian coordinates.
		for j := 0; j < 3; j++ {
			atom.Force.AddScaled(&b[j], fg[j])
		}
	}
}

// tabulatePhases fills fexp0/fexp1/fexp2 with exp(2 pi i k rg) for one
// atom, starting from each dimension's base index and multiplying
// forward by a fixed per-atom increment.
func (e *EwaldRecip) tabulatePhases(rg *space.Vec, twoPiIm complex128) {
	e.fexp0[0] = cmplx.Exp(twoPiIm * complex(rg[0]*float64(e.base0), 0))
	de := cmplx.Exp(twoPiIm * complex(rg[0], 0))
	for i := 1; i < len(e.fexp0); i++ {
		e.fexp0[i] = e.fexp0[i-1] * de
	}

	e.fexp1[0] = cmplx.Exp(twoPiIm * complex(rg[1]*float64(e.base1), 0))
	de = cmplx.Exp(twoPiIm * complex(rg[1], 0))
	for i := 1; i < len(e.fexp1); i++ {
		e.fexp1[i] = e.fexp1[i-1] * de
	}

	e.fexp2[0] = cmplx.Exp(twoPiIm * complex(rg[2]*float64(e.base2), 0))
	de = cmplx.Exp(twoPiIm * complex(rg[2], 0))
	for i := 1; i < len(e.fexp2); i++ {
		e.fexp2[i] = e.fexp2[i-1] * de
	}
}

// Stress returns the k-space contribution to the stress tensor,
//
//	sigma_ab = (1/2 epsilon V^2) sum_k 2 g_k |rho_k|^2
//	           [delta_ab - 2 (1/4 alpha^2 + 1/ksq) K_a K_b]
//
// with K the Cartesian wavevector, so that Pressure() = -dE/dV at
// fixed fractional coordinates. Cached like Energy.
func (e *EwaldRecip) Stress() space.Tensor {
	if e.stressSet {
		return e.stressVal
	}
	if !e.hasWaves {
		e.makeWaves()
	}
	e.computeStructureFactor()

	var b [3]space.Vec
	for j := 0; j < 3; j++ {
		b[j] = e.boundary.ReciprocalBasisVector(j)
	}

	inv4AlphaSq := 0.25 / (e.alpha * e.alpha)
	vol := e.boundary.Volume()

	var sigma space.Tensor
	var kv space.Vec
	for i, k := range e.waves {
		kv.Zero()
		kv.AddScaled(&b[0], float64(k[0]))
		kv.AddScaled(&b[1], float64(k[1]))
		kv.AddScaled(&b[2], float64(k[2]))

		x := real(e.rho[i])
		y := imag(e.rho[i])
		ek := (x*x + y*y) * e.g[i]
		c := 2 * (inv4AlphaSq + 1/e.ksq[i])

		for a := 0; a < 3; a++ {
			for bb := 0; bb < 3; bb++ {
				t := -c * kv[a] * kv[bb]
				if a == bb {
					t++
				}
				sigma[a][bb] += ek * t
			}
		}
	}

	// Factor 2 for conjugate waves; 1/(2 epsilon V) as in the energy,
	// and 1/V to convert the virial to a stress.
	sigma.ScaleSelf(2.0 * 0.5 / (e.epsilon * vol * vol))

	e.stressVal = sigma
	e.stressSet = true
	return sigma
}

// Pressure returns one third of the trace of the k-space stress.
func (e *EwaldRecip) Pressure() float64 {
	s := e.Stress()
	return s.Trace() / 3
}
