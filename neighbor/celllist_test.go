package neighbor_test

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/ksgustafson/simpatico/chemistry"
	"github.com/ksgustafson/simpatico/neighbor"
	"github.com/ksgustafson/simpatico/potential"
	"github.com/ksgustafson/simpatico/simulation"
	"github.com/ksgustafson/simpatico/space"
)

// buildSystem bins nAtom single-type atoms at the given positions with
// an LJ pair interaction of the given cutoff attached.
func buildSystem(
	t *testing.T, b *space.Boundary, positions []space.Vec,
	cutoff float64, nCellCut int,
) *simulation.System {
	t.Helper()

	st := chemistry.NewStorage(32*len(positions) + 64)
	for i, pos := range positions {
		_, err := st.AddLocal(chemistry.Atom{Id: i, Position: pos})
		if err != nil {
			t.Fatal(err)
		}
	}

	types := []chemistry.AtomType{{Name: "A", Mass: 1}}
	sys, err := simulation.NewSystem(b, st, types)
	if err != nil {
		t.Fatal(err)
	}

	lj, err := potential.NewUniformLJPair(1, 1.0, 1.0, cutoff)
	if err != nil {
		t.Fatal(err)
	}
	if err := sys.SetPairPotential(lj, nCellCut); err != nil {
		t.Fatal(err)
	}
	if err := sys.Refresh(); err != nil {
		t.Fatal(err)
	}
	return sys
}

func uniformPositions(rng *rand.Rand, n int, low, high float64) []space.Vec {
	ps := make([]space.Vec, n)
	for i := range ps {
		for j := 0; j < 3; j++ {
			ps[i][j] = low + rng.Float64()*(high-low)
		}
	}
	return ps
}

// collectCutoffPairs walks the cell list and returns how many times
// each unordered pair of atom ids appears within the cutoff.
func collectCutoffPairs(
	cl *neighbor.CellList, cutoff float64,
) map[[2]int]int {
	counts := map[[2]int]int{}
	cutoffSq := cutoff * cutoff
	na := neighbor.NewNeighborArray()

	for c := cl.Begin(); c != nil; c = c.NextCell() {
		na.Clear()
		c.GetNeighbors(na)
		atoms := na.Atoms()

		for i := 0; i < c.NAtom(); i++ {
			r1 := atoms[i].Position()
			for j := i + 1; j < len(atoms); j++ {
				dr := *r1
				dr.SubSelf(atoms[j].Position())
				if dr.Square() > cutoffSq {
					continue
				}

				id1, id2 := atoms[i].Ptr().Id, atoms[j].Ptr().Id
				if id1 > id2 {
					id1, id2 = id2, id1
				}
				counts[[2]int{id1, id2}]++
			}
		}
	}
	return counts
}

// brute-force minimum-image pairs within the cutoff.
func bruteForcePairs(
	b *space.Boundary, st *chemistry.Storage, cutoff float64,
) map[[2]int]bool {
	pairs := map[[2]int]bool{}
	cutoffSq := cutoff * cutoff
	var dr space.Vec

	for i := 0; i < st.NLocal(); i++ {
		for j := i + 1; j < st.NLocal(); j++ {
			dsq := b.DistanceSq(
				&st.Atom(i).Position, &st.Atom(j).Position, &dr,
			)
			if dsq <= cutoffSq {
				pairs[[2]int{i, j}] = true
			}
		}
	}
	return pairs
}

func TestPairsMatchBruteForce(t *testing.T) {
	b, err := space.NewCubic(10)
	if err != nil {
		t.Fatal(err)
	}

	// Atoms in the interior so no pair crosses the boundary; every
	// in-range pair must then show up exactly once.
	rng := rand.New(rand.NewSource(1))
	cutoff := 1.5
	positions := uniformPositions(rng, 200, 2, 8)
	sys := buildSystem(t, b, positions, cutoff, 1)

	got := collectCutoffPairs(sys.CellList(), cutoff)
	want := bruteForcePairs(b, sys.Storage, cutoff)

	for pair := range want {
		if got[pair] != 1 {
			t.Errorf("pair %v found %d times, not once", pair, got[pair])
		}
	}
	for pair, n := range got {
		if !want[pair] {
			t.Errorf("pair %v reported %d times but is out of range", pair, n)
		}
	}
}

func TestPairsMatchBruteForcePeriodic(t *testing.T) {
	// Atoms over the whole box, including boundary-crossing pairs. A
	// crossing pair is enumerated from both sides, once per image, so
	// every in-range pair must appear either once or twice and no
	// out-of-range pair may appear.
	boundaries := map[string]func() (*space.Boundary, error){
		"cubic": func() (*space.Boundary, error) {
			return space.NewCubic(10)
		},
		"triclinic": func() (*space.Boundary, error) {
			return space.NewTriclinic(
				space.Vec{10, 0, 0},
				space.Vec{2.5, 9, 0},
				space.Vec{-1, 2, 11},
			)
		},
	}

	for name, mk := range boundaries {
		b, err := mk()
		if err != nil {
			t.Fatal(err)
		}

		rng := rand.New(rand.NewSource(2))
		cutoff := 2.0
		positions := uniformPositions(rng, 300, -2, 12)
		sys := buildSystem(t, b, positions, cutoff, 2)

		got := collectCutoffPairs(sys.CellList(), cutoff)
		want := bruteForcePairs(b, sys.Storage, cutoff)

		for pair := range want {
			if got[pair] < 1 || got[pair] > 2 {
				t.Errorf("%s: pair %v found %d times, not 1 or 2",
					name, pair, got[pair])
			}
		}
		for pair, n := range got {
			if !want[pair] {
				t.Errorf("%s: pair %v reported %d times but is out of range",
					name, pair, n)
			}
		}
	}
}

func TestPairEnergyMatchesBruteForce(t *testing.T) {
	b, err := space.NewCubic(10)
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(3))
	cutoff := 2.5
	positions := uniformPositions(rng, 150, 0, 10)
	sys := buildSystem(t, b, positions, cutoff, 2)

	got, err := sys.PairEnergy()
	if err != nil {
		t.Fatal(err)
	}

	lj, err := potential.NewUniformLJPair(1, 1.0, 1.0, cutoff)
	if err != nil {
		t.Fatal(err)
	}

	st := sys.Storage
	want := 0.0
	var dr space.Vec
	for i := 0; i < st.NLocal(); i++ {
		for j := i + 1; j < st.NLocal(); j++ {
			dsq := b.DistanceSq(
				&st.Atom(i).Position, &st.Atom(j).Position, &dr,
			)
			want += lj.Energy(dsq, 0, 0)
		}
	}

	if math.Abs(got-want) > 1e-9*math.Abs(want) {
		t.Errorf("cell-list pair energy = %.12g, brute force = %.12g",
			got, want)
	}
}

func TestPairForcesMatchBruteForce(t *testing.T) {
	b, err := space.NewCubic(8)
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(4))
	cutoff := 2.0
	positions := uniformPositions(rng, 120, 0, 8)
	sys := buildSystem(t, b, positions, cutoff, 1)

	if err := sys.ComputeForces(); err != nil {
		t.Fatal(err)
	}

	lj, err := potential.NewUniformLJPair(1, 1.0, 1.0, cutoff)
	if err != nil {
		t.Fatal(err)
	}

	st := sys.Storage
	want := make([]space.Vec, st.NLocal())
	var dr space.Vec
	for i := 0; i < st.NLocal(); i++ {
		for j := i + 1; j < st.NLocal(); j++ {
			dsq := b.DistanceSq(
				&st.Atom(i).Position, &st.Atom(j).Position, &dr,
			)
			fOverR := lj.ForceOverR(dsq, 0, 0)
			want[i].AddScaled(&dr, fOverR)
			want[j].AddScaled(&dr, -fOverR)
		}
	}

	for i := 0; i < st.NLocal(); i++ {
		f := st.Atom(i).Force
		for j := 0; j < 3; j++ {
			diff := math.Abs(f[j] - want[i][j])
			scale := math.Abs(want[i][j]) + 1
			if diff > 1e-9*scale {
				t.Fatalf("atom %d force[%d] = %.12g, brute force = %.12g",
					i, j, f[j], want[i][j])
			}
		}
	}
}

// cellContents captures the atom ids in every cell.
func cellContents(cl *neighbor.CellList) [][]int {
	contents := make([][]int, cl.NCell())
	for id := 0; id < cl.NCell(); id++ {
		c := cl.CellAt(id)
		for i := 0; i < c.NAtom(); i++ {
			contents[id] = append(contents[id], c.Atom(i).Ptr().Id)
		}
	}
	return contents
}

func TestRebinIdempotent(t *testing.T) {
	b, err := space.NewCubic(10)
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(5))
	positions := uniformPositions(rng, 100, 0, 10)
	sys := buildSystem(t, b, positions, 2.0, 1)

	first := cellContents(sys.CellList())
	if err := sys.Refresh(); err != nil {
		t.Fatal(err)
	}
	second := cellContents(sys.CellList())

	for id := range first {
		if len(first[id]) != len(second[id]) {
			t.Fatalf("cell %d holds %d atoms, then %d",
				id, len(first[id]), len(second[id]))
		}
		for i := range first[id] {
			if first[id][i] != second[id][i] {
				t.Fatalf("cell %d slot %d holds atom %d, then %d",
					id, i, first[id][i], second[id][i])
			}
		}
	}
}

func TestMakeGridErrors(t *testing.T) {
	b, err := space.NewCubic(10)
	if err != nil {
		t.Fatal(err)
	}

	table := []struct {
		cutoff   float64
		nCellCut int
	}{
		{4.0, 1},  // only 2 cells fit, need 3
		{2.0, 0},  // nCellCut below range
		{2.0, 5},  // nCellCut above range
		{-1.0, 1}, // negative cutoff
	}

	for i, test := range table {
		cl := &neighbor.CellList{}
		if err := cl.MakeGrid(b, test.cutoff, test.nCellCut); err == nil {
			t.Errorf("%d) MakeGrid(%g, %d) accepted an invalid grid",
				i, test.cutoff, test.nCellCut)
		}
	}
}

func TestGhostCellsExcludedFromList(t *testing.T) {
	b, err := space.NewCubic(10)
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(6))
	positions := uniformPositions(rng, 50, 0, 10)
	sys := buildSystem(t, b, positions, 2.0, 1)

	for c := sys.CellList().Begin(); c != nil; c = c.NextCell() {
		if c.IsGhost() {
			t.Fatalf("ghost cell %d found in the local cell list", c.Id())
		}
		if c.NAtom() == 0 {
			t.Fatalf("empty cell %d found in the local cell list", c.Id())
		}
	}
}

func TestNeighborOverflowPanics(t *testing.T) {
	b, err := space.NewCubic(10)
	if err != nil {
		t.Fatal(err)
	}

	// More atoms inside one cutoff volume than a NeighborArray can hold.
	rng := rand.New(rand.NewSource(7))
	positions := make([]space.Vec, neighbor.MaxNeighborAtom+100)
	for i := range positions {
		for j := 0; j < 3; j++ {
			positions[i][j] = 5 + rng.Float64()*0.5
		}
	}
	sys := buildSystem(t, b, positions, 2.0, 1)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("overfull neighbor query did not panic")
		}
		msg, ok := r.(string)
		if !ok || !strings.Contains(msg, "neighbor list overflow") {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()

	na := neighbor.NewNeighborArray()
	for c := sys.CellList().Begin(); c != nil; c = c.NextCell() {
		na.Clear()
		c.GetNeighbors(na)
	}
}

func BenchmarkUpdate(b *testing.B) {
	bd, err := space.NewCubic(20)
	if err != nil {
		b.Fatal(err)
	}

	rng := rand.New(rand.NewSource(8))
	st := chemistry.NewStorage(64 * 1024)
	for i := 0; i < 4000; i++ {
		_, err := st.AddLocal(chemistry.Atom{Id: i, Position: space.Vec{
			rng.Float64() * 20, rng.Float64() * 20, rng.Float64() * 20,
		}})
		if err != nil {
			b.Fatal(err)
		}
	}

	cl := &neighbor.CellList{}
	if err := cl.MakeGrid(bd, 2.0, 2); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := cl.Update(st); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGetNeighbors(b *testing.B) {
	bd, err := space.NewCubic(20)
	if err != nil {
		b.Fatal(err)
	}

	rng := rand.New(rand.NewSource(9))
	st := chemistry.NewStorage(64 * 1024)
	for i := 0; i < 4000; i++ {
		_, err := st.AddLocal(chemistry.Atom{Id: i, Position: space.Vec{
			rng.Float64() * 20, rng.Float64() * 20, rng.Float64() * 20,
		}})
		if err != nil {
			b.Fatal(err)
		}
	}

	cl := &neighbor.CellList{}
	if err := cl.MakeGrid(bd, 2.0, 2); err != nil {
		b.Fatal(err)
	}
	if err := cl.Update(st); err != nil {
		b.Fatal(err)
	}

	na := neighbor.NewNeighborArray()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for c := cl.Begin(); c != nil; c = c.NextCell() {
			na.Clear()
			c.GetNeighbors(na)
		}
	}
}
