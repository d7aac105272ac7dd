package io

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"

	"github.com/ksgustafson/simpatico/chemistry"
	"github.com/ksgustafson/simpatico/potential"
)

// ghostMargin is the storage capacity multiplier reserved for ghost
// images of local atoms.
const ghostMargin = 8

// structureFile mirrors the TOML structure file layout.
type structureFile struct {
	Types []struct {
		Name   string  `toml:"name"`
		Mass   float64 `toml:"mass"`
		Charge float64 `toml:"charge"`
	} `toml:"types"`

	Atoms []struct {
		Type     string    `toml:"type"`
		Position []float64 `toml:"position"`
	} `toml:"atoms"`

	BondTypes []struct {
		Kappa  float64 `toml:"kappa"`
		Length float64 `toml:"length"`
	} `toml:"bondtypes"`

	Bonds []struct {
		Atoms []int `toml:"atoms"`
		Type  int   `toml:"type"`
	} `toml:"bonds"`
}

// Structure is the parsed content of a structure file.
type Structure struct {
	Types     []chemistry.AtomType
	Storage   *chemistry.Storage
	BondTypes []potential.HarmonicBondType
	Bonds     []chemistry.Bond
}

// ReadStructure reads a TOML structure file: atom types, atoms with a
// type name and Cartesian position, and optionally harmonic bond types
// and bonds.
func ReadStructure(fname string) (*Structure, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sf structureFile
	if err := toml.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("cannot parse structure file %s: %v", fname, err)
	}

	if len(sf.Types) == 0 {
		return nil, fmt.Errorf("structure file %s defines no atom types", fname)
	}
	if len(sf.Atoms) == 0 {
		return nil, fmt.Errorf("structure file %s defines no atoms", fname)
	}

	st := &Structure{}

	typeIds := map[string]int{}
	for i, t := range sf.Types {
		if t.Name == "" {
			return nil, fmt.Errorf("atom type %d has no name", i)
		}
		if _, dup := typeIds[t.Name]; dup {
			return nil, fmt.Errorf("duplicate atom type name '%s'", t.Name)
		}
		typeIds[t.Name] = i
		st.Types = append(st.Types, chemistry.AtomType{
			Name: t.Name, Mass: t.Mass, Charge: t.Charge,
		})
	}

	st.Storage = chemistry.NewStorage(ghostMargin*len(sf.Atoms) + 64)
	for i, a := range sf.Atoms {
		tid, ok := typeIds[a.Type]
		if !ok {
			return nil, fmt.Errorf(
				"atom %d has unknown type '%s'", i, a.Type,
			)
		}
		if len(a.Position) != 3 {
			return nil, fmt.Errorf(
				"atom %d position must have 3 components, got %d",
				i, len(a.Position),
			)
		}
		atom := chemistry.Atom{Id: i, TypeId: tid}
		copy(atom.Position[:], a.Position)
		if _, err := st.Storage.AddLocal(atom); err != nil {
			return nil, err
		}
	}

	for i, bt := range sf.BondTypes {
		if bt.Kappa < 0 || bt.Length < 0 {
			return nil, fmt.Errorf(
				"bond type %d has negative kappa or length", i,
			)
		}
		st.BondTypes = append(st.BondTypes, potential.HarmonicBondType{
			Kappa: bt.Kappa, Length: bt.Length,
		})
	}

	for i, b := range sf.Bonds {
		if len(b.Atoms) != 2 {
			return nil, fmt.Errorf(
				"bond %d must list exactly 2 atoms, got %d", i, len(b.Atoms),
			)
		}
		st.Bonds = append(st.Bonds, chemistry.Bond{
			Atom0: b.Atoms[0], Atom1: b.Atoms[1], TypeId: b.Type,
		})
	}

	return st, nil
}

// ExampleStructure is a complete example structure file.
const ExampleStructure = `[[types]]
name   = "Na"
mass   = 22.99
charge = 1.0

[[types]]
name   = "Cl"
mass   = 35.45
charge = -1.0

[[atoms]]
type     = "Na"
position = [0.0, 0.0, 0.0]

[[atoms]]
type     = "Cl"
position = [2.82, 0.0, 0.0]

[[bondtypes]]
kappa  = 100.0
length = 2.82

[[bonds]]
atoms = [0, 1]
type  = 0
`
