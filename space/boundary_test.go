package space

import (
	"math"
	"math/rand"
	"testing"
)

const testEps = 1e-12

func epsEq(x, y, eps float64) bool {
	return (x == 0 && math.Abs(y) < eps) ||
		(y == 0 && math.Abs(x) < eps) ||
		(math.Abs(x-y) < eps*math.Abs(x) && math.Abs(x-y) < eps*math.Abs(y))
}

func testBoundaries(t *testing.T) []*Boundary {
	cubic, err := NewCubic(10)
	if err != nil {
		t.Fatal(err)
	}
	ortho, err := NewOrthorhombic(Vec{6, 8, 12})
	if err != nil {
		t.Fatal(err)
	}
	tric, err := NewTriclinic(
		Vec{10, 0, 0}, Vec{3, 9, 0}, Vec{-2, 1, 11},
	)
	if err != nil {
		t.Fatal(err)
	}
	return []*Boundary{cubic, ortho, tric}
}

func TestReciprocalBasis(t *testing.T) {
	twoPi := 2 * math.Pi

	for bi, b := range testBoundaries(t) {
		for i := 0; i < 3; i++ {
			bv := b.ReciprocalBasisVector(i)
			for j := 0; j < 3; j++ {
				av := b.BravaisBasisVector(j)
				dot := bv.Dot(&av)

				want := 0.0
				if i == j {
					want = twoPi
				}
				if math.Abs(dot-want) > 1e-10 {
					t.Errorf(
						"%d) b%d . a%d = %g, not %g", bi, i, j, dot, want,
					)
				}
			}
		}
	}
}

func TestVolume(t *testing.T) {
	table := []struct {
		a0, a1, a2 Vec
		vol        float64
	}{
		{Vec{10, 0, 0}, Vec{0, 10, 0}, Vec{0, 0, 10}, 1000},
		{Vec{6, 0, 0}, Vec{0, 8, 0}, Vec{0, 0, 12}, 576},
		{Vec{10, 0, 0}, Vec{3, 9, 0}, Vec{-2, 1, 11}, 990},
	}

	for i, test := range table {
		b, err := NewTriclinic(test.a0, test.a1, test.a2)
		if err != nil {
			t.Fatalf("%d) %v", i, err)
		}
		if !epsEq(b.Volume(), test.vol, 1e-10) {
			t.Errorf("%d) Volume() = %g, not %g", i, b.Volume(), test.vol)
		}
	}
}

func TestDegenerateCell(t *testing.T) {
	_, err := NewTriclinic(
		Vec{1, 0, 0}, Vec{2, 0, 0}, Vec{0, 0, 1},
	)
	if err == nil {
		t.Errorf("NewTriclinic accepted a degenerate cell")
	}
}

func TestCartGenRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for bi, b := range testBoundaries(t) {
		for n := 0; n < 100; n++ {
			r := Vec{
				rng.Float64()*40 - 20,
				rng.Float64()*40 - 20,
				rng.Float64()*40 - 20,
			}

			var gen, back Vec
			b.TransformCartToGen(&r, &gen)
			b.TransformGenToCart(&gen, &back)

			for j := 0; j < 3; j++ {
				if math.Abs(r[j]-back[j]) > 1e-10 {
					t.Fatalf(
						"%d) round trip of %v gives %v", bi, r, back,
					)
				}
			}
		}
	}
}

func TestShift(t *testing.T) {
	b, err := NewCubic(10)
	if err != nil {
		t.Fatal(err)
	}

	table := []struct{ in, out Vec }{
		{Vec{0.5, 0.25, 0.75}, Vec{0.5, 0.25, 0.75}},
		{Vec{-0.25, 1.25, 0}, Vec{0.75, 0.25, 0}},
		{Vec{-1.1, 2.0, 3.5}, Vec{0.9, 0, 0.5}},
	}

	for i, test := range table {
		gen := test.in
		b.Shift(&gen)
		for j := 0; j < 3; j++ {
			if math.Abs(gen[j]-test.out[j]) > 1e-12 {
				t.Errorf("%d) Shift(%v) = %v, not %v",
					i, test.in, gen, test.out)
			}
			if gen[j] < 0 || gen[j] >= 1 {
				t.Errorf("%d) Shift(%v)[%d] = %g outside [0, 1)",
					i, test.in, j, gen[j])
			}
		}
	}
}

func TestMinimumImageDistance(t *testing.T) {
	b, err := NewCubic(10)
	if err != nil {
		t.Fatal(err)
	}

	table := []struct {
		r1, r2 Vec
		d      float64
	}{
		{Vec{1, 1, 1}, Vec{2, 1, 1}, 1},
		{Vec{0.5, 5, 5}, Vec{9.5, 5, 5}, 1},
		{Vec{0.5, 0.5, 5}, Vec{9.5, 9.5, 5}, math.Sqrt(2)},
		{Vec{0, 0, 0}, Vec{5, 5, 5}, math.Sqrt(75)},
	}

	var dr Vec
	for i, test := range table {
		dsq := b.DistanceSq(&test.r1, &test.r2, &dr)
		if !epsEq(math.Sqrt(dsq), test.d, 1e-10) {
			t.Errorf("%d) distance(%v, %v) = %g, not %g",
				i, test.r1, test.r2, math.Sqrt(dsq), test.d)
		}
	}
}
