/*package io reads the two input files of a simulation: the parameter
file (an INI-style gcfg file with boundary, cell, and potential
sections) and the structure file (a TOML file with atom types, atom
records, and bonds).*/
package io

import (
	"fmt"

	"gopkg.in/gcfg.v1"

	"github.com/ksgustafson/simpatico/space"
)

// BoundaryConfig describes the periodic unit cell. Lx, Ly, Lz are the
// diagonal edge lengths; Xy, Xz, Yz are optional triclinic tilt
// components, so the Bravais basis is
// (Lx,0,0), (Xy,Ly,0), (Xz,Yz,Lz).
type BoundaryConfig struct {
	Lx, Ly, Lz float64
	Xy, Xz, Yz float64
}

// CheckInit validates the section.
func (c *BoundaryConfig) CheckInit() error {
	if c.Lx <= 0 || c.Ly <= 0 || c.Lz <= 0 {
		return fmt.Errorf(
			"boundary edge lengths must be positive, got (%g, %g, %g)",
			c.Lx, c.Ly, c.Lz,
		)
	}
	return nil
}

// Boundary builds the space.Boundary described by the section.
func (c *BoundaryConfig) Boundary() (*space.Boundary, error) {
	return space.NewTriclinic(
		space.Vec{c.Lx, 0, 0},
		space.Vec{c.Xy, c.Ly, 0},
		space.Vec{c.Xz, c.Yz, c.Lz},
	)
}

// CellsConfig controls the neighbor grid resolution.
type CellsConfig struct {
	NCellCut int
}

// CheckInit validates the section and fills in the default of one cell
// per cutoff.
func (c *CellsConfig) CheckInit() error {
	if c.NCellCut == 0 {
		c.NCellCut = 1
	}
	if c.NCellCut < 0 {
		return fmt.Errorf("ncellcut must be positive, got %d", c.NCellCut)
	}
	return nil
}

// PairConfig holds the Lennard-Jones pair interaction parameters,
// applied uniformly to every type pair.
type PairConfig struct {
	Cutoff  float64
	Epsilon float64
	Sigma   float64
}

// CheckInit validates the section. A zero cutoff disables the pair
// interaction.
func (c *PairConfig) CheckInit() error {
	if c.Cutoff == 0 {
		return nil
	}
	if c.Cutoff < 0 {
		return fmt.Errorf("pair cutoff must be positive, got %g", c.Cutoff)
	}
	if c.Epsilon <= 0 || c.Sigma <= 0 {
		return fmt.Errorf(
			"pair epsilon and sigma must be positive, got %g and %g",
			c.Epsilon, c.Sigma,
		)
	}
	return nil
}

// Enabled returns true if a pair interaction was configured.
func (c *PairConfig) Enabled() bool { return c.Cutoff != 0 }

// CoulombConfig holds the Ewald parameters.
type CoulombConfig struct {
	Alpha   float64
	Epsilon float64
	KCutoff float64
}

// CheckInit validates the section. A zero kcutoff disables the Coulomb
// interaction; the permittivity defaults to one.
func (c *CoulombConfig) CheckInit() error {
	if c.KCutoff == 0 {
		return nil
	}
	if c.Epsilon == 0 {
		c.Epsilon = 1
	}
	if c.Alpha <= 0 || c.Epsilon <= 0 || c.KCutoff < 0 {
		return fmt.Errorf(
			"coulomb parameters must be positive, got alpha %g, "+
				"epsilon %g, kcutoff %g", c.Alpha, c.Epsilon, c.KCutoff,
		)
	}
	return nil
}

// Enabled returns true if a Coulomb interaction was configured.
func (c *CoulombConfig) Enabled() bool { return c.KCutoff != 0 }

// ParamConfig is the full parameter file.
type ParamConfig struct {
	Boundary BoundaryConfig
	Cells    CellsConfig
	Pair     PairConfig
	Coulomb  CoulombConfig
}

// ReadParamConfig reads and validates a parameter file.
func ReadParamConfig(fname string) (*ParamConfig, error) {
	pc := &ParamConfig{}
	if err := gcfg.ReadFileInto(pc, fname); err != nil {
		return nil, err
	}

	if err := pc.Boundary.CheckInit(); err != nil {
		return nil, err
	}
	if err := pc.Cells.CheckInit(); err != nil {
		return nil, err
	}
	if err := pc.Pair.CheckInit(); err != nil {
		return nil, err
	}
	if err := pc.Coulomb.CheckInit(); err != nil {
		return nil, err
	}

	return pc, nil
}

// ExampleParamConfig is a complete example parameter file.
const ExampleParamConfig = `[boundary]
lx = 10.0
ly = 10.0
lz = 10.0
; Optional triclinic tilt components:
; xy = 0.0
; xz = 0.0
; yz = 0.0

[cells]
ncellcut = 1

[pair]
cutoff  = 2.5
epsilon = 1.0
sigma   = 1.0

[coulomb]
alpha   = 1.0
epsilon = 1.0
kcutoff = 8.0
`
