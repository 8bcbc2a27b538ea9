package polynomial

import (
	"math/big"
	"math/rand"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	n := big.NewInt(123456789)
	b := PutUint(n, 33)
	if len(b) != 33 {
		t.Fatalf("expected 33 bytes, got %d", len(b))
	}
	if Uint(b).Cmp(n) != 0 {
		t.Fatalf("round trip mismatch: got %s want %s", Uint(b), n)
	}
}

func TestEvalConstant(t *testing.T) {
	p := New(big.NewInt(42))
	got := p.Eval(big.NewInt(7), Prime)
	if got.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("constant polynomial should evaluate to itself, got %s", got)
	}
}

func TestInterpolateRecoversPolynomial(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	coeffs := make([]*big.Int, 4)
	for i := range coeffs {
		coeffs[i] = new(big.Int).Rand(r, new(big.Int).Lsh(big.NewInt(1), 256))
	}
	p := New(coeffs...)

	xs := []int64{3, 9, 17, 44}
	points := make([]Coordinate, len(xs))
	for i, x := range xs {
		bx := big.NewInt(x)
		points[i] = Coordinate{X: bx, Y: p.Eval(bx, Prime)}
	}

	got := Interpolate(points, Prime)
	want := p.Mod(Prime)
	if !got.Equal(want) {
		t.Fatalf("interpolation mismatch:\ngot  %v\nwant %v", got.Coeffs, want.Coeffs)
	}
}

func TestInterpolateExtraPointsStillExact(t *testing.T) {
	p := New(big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(4))

	xs := []int64{1, 2, 3, 4, 5, 6}
	points := make([]Coordinate, len(xs))
	for i, x := range xs {
		bx := big.NewInt(x)
		points[i] = Coordinate{X: bx, Y: p.Eval(bx, Prime)}
	}

	got := Interpolate(points, Prime)
	if !got.Equal(p.Mod(Prime)) {
		t.Fatalf("interpolation with extra points should still be exact")
	}
}

func TestAddMulMod(t *testing.T) {
	a := New(big.NewInt(1), big.NewInt(2))
	b := New(big.NewInt(3), big.NewInt(4))

	sum := a.Add(b)
	if !sum.Equal(New(big.NewInt(4), big.NewInt(6))) {
		t.Fatalf("unexpected sum: %v", sum.Coeffs)
	}

	prod := a.Mul(b)
	// (1 + 2x)(3 + 4x) = 3 + 4x + 6x + 8x^2 = 3 + 10x + 8x^2
	if !prod.Equal(New(big.NewInt(3), big.NewInt(10), big.NewInt(8))) {
		t.Fatalf("unexpected product: %v", prod.Coeffs)
	}

	reduced := New(big.NewInt(10)).Mod(big.NewInt(7))
	if !reduced.Equal(New(big.NewInt(3))) {
		t.Fatalf("unexpected mod: %v", reduced.Coeffs)
	}
}
