package window

import (
	"math"
	"testing"

	"github.com/ricardo736/voxlab-sub000/internal/testutil"
)

func TestGenerateProperties(t *testing.T) {
	types := []Type{TypeRectangular, TypeHann, TypeHamming, TypeBlackman}
	for _, typ := range types {
		t.Run(typ.String(), func(t *testing.T) {
			w := Generate(typ, 64)
			if len(w) != 64 {
				t.Fatalf("len = %d, want 64", len(w))
			}
			testutil.RequireFinite(t, w)
			// Symmetric windows mirror around the center.
			for i := range w {
				j := len(w) - 1 - i
				if math.Abs(w[i]-w[j]) > 1e-12 {
					t.Fatalf("asymmetry at %d: %v vs %v", i, w[i], w[j])
				}
			}
			// Peak at the center.
			mid := w[len(w)/2]
			for i, v := range w {
				if v > mid+1e-12 {
					t.Fatalf("w[%d] = %v exceeds center %v", i, v, mid)
				}
			}
		})
	}
}

func TestGenerateEndpoints(t *testing.T) {
	hann := Generate(TypeHann, 33)
	testutil.RequireNearlyEqual(t, hann[0], 0, 1e-12)
	testutil.RequireNearlyEqual(t, hann[32], 0, 1e-12)
	testutil.RequireNearlyEqual(t, hann[16], 1, 1e-12)

	hamming := Generate(TypeHamming, 33)
	testutil.RequireNearlyEqual(t, hamming[0], 0.08, 1e-12)

	blackman := Generate(TypeBlackman, 33)
	testutil.RequireNearlyEqual(t, blackman[0], 0, 1e-12)
}

func TestGenerateDegenerate(t *testing.T) {
	if Generate(TypeHann, 0) != nil {
		t.Error("length 0 should return nil")
	}
	one := Generate(TypeHann, 1)
	if len(one) != 1 || one[0] != 1 {
		t.Errorf("length 1 = %v, want [1]", one)
	}
}

func TestApplyInPlace(t *testing.T) {
	samples := []float64{1, 1, 1, 1}
	coeffs := []float64{0.5, 1, 1, 0.5}
	if err := ApplyInPlace(samples, coeffs); err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, samples, []float64{0.5, 1, 1, 0.5}, 1e-15)
}

func TestApplyInPlaceMismatch(t *testing.T) {
	if err := ApplyInPlace(make([]float64, 4), make([]float64, 3)); err == nil {
		t.Fatal("expected length mismatch error")
	}
}
