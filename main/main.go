package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ksgustafson/simpatico/io"
	"github.com/ksgustafson/simpatico/potential"
	"github.com/ksgustafson/simpatico/simulation"
)

func main() {
	var (
		paramFile, structFile string
		exampleConfig         string
		printForces           bool
	)

	flag.StringVar(
		&paramFile, "Param", "",
		"Parameter file with [boundary], [cells], [pair], and [coulomb] "+
			"sections.",
	)
	flag.StringVar(
		&structFile, "Structure", "",
		"TOML structure file with atom types, atoms, and bonds.",
	)
	flag.BoolVar(
		&printForces, "Forces", false,
		"Print the force on every atom in addition to the energy report.",
	)
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "",
		"Prints an example input file of the specified type to stdout. "+
			"Accepted arguments are 'Param' and 'Structure'.",
	)

	flag.Parse()

	if exampleConfig != "" {
		switch exampleConfig {
		case "Param":
			fmt.Print(io.ExampleParamConfig)
		case "Structure":
			fmt.Print(io.ExampleStructure)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. Only recognized " +
					"arguments are 'Param' and 'Structure'.",
			)
		}
		return
	}

	if paramFile == "" {
		log.Fatal("Must supply a 'Param' file.")
	}
	if structFile == "" {
		log.Fatal("Must supply a 'Structure' file.")
	}

	params, err := io.ReadParamConfig(paramFile)
	if err != nil {
		log.Fatal(err.Error())
	}
	structure, err := io.ReadStructure(structFile)
	if err != nil {
		log.Fatal(err.Error())
	}

	boundary, err := params.Boundary.Boundary()
	if err != nil {
		log.Fatal(err.Error())
	}

	sys, err := simulation.NewSystem(
		boundary, structure.Storage, structure.Types,
	)
	if err != nil {
		log.Fatal(err.Error())
	}

	if params.Pair.Enabled() {
		lj, err := potential.NewUniformLJPair(
			len(structure.Types), params.Pair.Epsilon,
			params.Pair.Sigma, params.Pair.Cutoff,
		)
		if err != nil {
			log.Fatal(err.Error())
		}
		if err := sys.SetPairPotential(lj, params.Cells.NCellCut); err != nil {
			log.Fatal(err.Error())
		}
	}

	if len(structure.Bonds) > 0 {
		err := sys.SetBondPotential(structure.BondTypes, structure.Bonds)
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	if params.Coulomb.Enabled() {
		err := sys.SetCoulomb(
			params.Coulomb.Alpha, params.Coulomb.Epsilon,
			params.Coulomb.KCutoff,
		)
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	if err := sys.ComputeForces(); err != nil {
		log.Fatal(err.Error())
	}

	pairE, err := sys.PairEnergy()
	if err != nil {
		log.Fatal(err.Error())
	}

	fmt.Printf("atoms:           %d\n", structure.Storage.NLocal())
	fmt.Printf("ghost images:    %d\n", structure.Storage.NGhost())
	fmt.Printf("volume:          %.8g\n", boundary.Volume())
	fmt.Printf("pair energy:     %.8g\n", pairE)
	fmt.Printf("bond energy:     %.8g\n", sys.BondEnergy())
	fmt.Printf("coulomb energy:  %.8g\n", sys.CoulombEnergy())
	total, err := sys.PotentialEnergy()
	if err != nil {
		log.Fatal(err.Error())
	}
	fmt.Printf("total energy:    %.8g\n", total)
	fmt.Printf("max force:       %.8g\n", sys.MaxForceNorm())

	if params.Coulomb.Enabled() {
		fmt.Printf("k-space waves:   %d\n", sys.Ewald().NWave())
		fmt.Printf("k-space P:       %.8g\n", sys.Ewald().Pressure())
	}

	if printForces {
		for i := 0; i < structure.Storage.NLocal(); i++ {
			a := structure.Storage.Atom(i)
			fmt.Printf(
				"%6d %-4s % .8g % .8g % .8g\n",
				a.Id, structure.Types[a.TypeId].Name,
				a.Force[0], a.Force[1], a.Force[2],
			)
		}
	}
}
