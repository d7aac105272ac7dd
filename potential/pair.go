/*package potential contains the short-range potential energy
calculators that consume the neighbor cell list and the bond table.*/
package potential

import (
	"fmt"
)

// Pair is a short-range pair interaction, indexed by the type ids of
// the two atoms. ForceOverR returns the magnitude of the pair force
// divided by the separation, so that the force vector on atom 1 is
// (r1 - r2) * ForceOverR.
type Pair interface {
	Energy(rsq float64, ti, tj int) float64
	ForceOverR(rsq float64, ti, tj int) float64
	Cutoff() float64
}

// LJPair is a cutoff-truncated Lennard-Jones interaction with per
// type-pair well depths and diameters.
type LJPair struct {
	epsilon  [][]float64
	sigmaSq  [][]float64
	cutoff   float64
	cutoffSq float64
}

// NewLJPair returns a Lennard-Jones interaction for nType atom types.
// epsilon and sigma must be nType x nType symmetric matrices.
func NewLJPair(epsilon, sigma [][]float64, cutoff float64) (*LJPair, error) {
	nType := len(epsilon)
	if len(sigma) != nType {
		return nil, fmt.Errorf(
			"epsilon is %d x %d but sigma has %d rows",
			nType, nType, len(sigma),
		)
	}
	if cutoff <= 0 {
		return nil, fmt.Errorf("pair cutoff must be positive, got %g", cutoff)
	}

	p := &LJPair{
		epsilon:  make([][]float64, nType),
		sigmaSq:  make([][]float64, nType),
		cutoff:   cutoff,
		cutoffSq: cutoff * cutoff,
	}
	for i := 0; i < nType; i++ {
		if len(epsilon[i]) != nType || len(sigma[i]) != nType {
			return nil, fmt.Errorf(
				"LJ parameter row %d is not length %d", i, nType,
			)
		}
		p.epsilon[i] = append([]float64(nil), epsilon[i]...)
		p.sigmaSq[i] = make([]float64, nType)
		for j := 0; j < nType; j++ {
			p.sigmaSq[i][j] = sigma[i][j] * sigma[i][j]
		}
	}
	return p, nil
}

// NewUniformLJPair returns an LJPair with the same epsilon and sigma
// for every type pair.
func NewUniformLJPair(
	nType int, epsilon, sigma, cutoff float64,
) (*LJPair, error) {
	eps := make([][]float64, nType)
	sig := make([][]float64, nType)
	for i := 0; i < nType; i++ {
		eps[i] = make([]float64, nType)
		sig[i] = make([]float64, nType)
		for j := 0; j < nType; j++ {
			eps[i][j] = epsilon
			sig[i][j] = sigma
		}
	}
	return NewLJPair(eps, sig, cutoff)
}

// Cutoff returns the interaction cutoff distance.
func (p *LJPair) Cutoff() float64 { return p.cutoff }

// Energy returns the pair energy at squared separation rsq, or zero
// beyond the cutoff.
func (p *LJPair) Energy(rsq float64, ti, tj int) float64 {
	if rsq >= p.cutoffSq {
		return 0
	}
	s2 := p.sigmaSq[ti][tj] / rsq
	s6 := s2 * s2 * s2
	return 4 * p.epsilon[ti][tj] * (s6*s6 - s6)
}

// ForceOverR returns the pair force magnitude divided by separation,
// or zero beyond the cutoff.
func (p *LJPair) ForceOverR(rsq float64, ti, tj int) float64 {
	if rsq >= p.cutoffSq {
		return 0
	}
	s2 := p.sigmaSq[ti][tj] / rsq
	s6 := s2 * s2 * s2
	return 24 * p.epsilon[ti][tj] * (2*s6*s6 - s6) / rsq
}
