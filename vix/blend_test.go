package vix

import (
	"errors"
	"math"
	"testing"

	"github.com/bcdannyboy/indiavix/models"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestWeightsSumToOne(t *testing.T) {
	tests := []struct {
		mte1, mte2 int
	}{
		{12960, 53280},
		{1, 43201},
		{43199, 43201},
		{100, 1000000},
		{20160, 60480},
		{7, 86393},
		{36000, 44641},
	}

	for _, tc := range tests {
		w1, w2, err := Weights(tc.mte1, tc.mte2)
		if err != nil {
			t.Fatalf("Weights(%d, %d) returned an error: %v", tc.mte1, tc.mte2, err)
		}
		if w1+w2 != 1 {
			t.Errorf("Weights(%d, %d): %v + %v != 1", tc.mte1, tc.mte2, w1, w2)
		}
		if w1 <= 0 || w1 >= 1 {
			t.Errorf("Weights(%d, %d): near weight %v outside (0, 1)", tc.mte1, tc.mte2, w1)
		}
		want := float64(43200-tc.mte1) / float64(tc.mte2-tc.mte1)
		if !scalar.EqualWithinAbs(w2, want, 1e-15) {
			t.Errorf("Weights(%d, %d): next weight %v, want %v", tc.mte1, tc.mte2, w2, want)
		}
	}

	w1, w2, _ := Weights(12960, 53280)
	if w1 != 0.25 || w2 != 0.75 {
		t.Errorf("expected weights 0.25 and 0.75, got %v and %v", w1, w2)
	}
}

func TestWeightsDegenerateSpacing(t *testing.T) {
	tests := []struct {
		name       string
		mte1, mte2 int
	}{
		{"NearAt30Days", 43200, 50000},
		{"NextAt30Days", 20000, 43200},
		{"BothBelow", 10000, 20000},
		{"BothAbove", 50000, 60000},
		{"Equal", 43200, 43200},
		{"Reversed", 53280, 12960},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := Weights(tc.mte1, tc.mte2); !errors.Is(err, ErrDegenerateExpirySpacing) {
				t.Errorf("expected ErrDegenerateExpirySpacing, got %v", err)
			}
			if _, err := Blend(0.04, tc.mte1, 0.04, tc.mte2); !errors.Is(err, ErrDegenerateExpirySpacing) {
				t.Errorf("Blend: expected ErrDegenerateExpirySpacing, got %v", err)
			}
		})
	}
}

func TestBlend(t *testing.T) {
	t.Run("FlatTermStructure", func(t *testing.T) {
		got, err := Blend(0.0225, 12960, 0.0225, 53280)
		if err != nil {
			t.Fatalf("Blend returned an error: %v", err)
		}
		if !scalar.EqualWithinRel(got, 15, 1e-12) {
			t.Errorf("expected 15, got %v", got)
		}
	})

	t.Run("ByHand", func(t *testing.T) {
		v1, v2 := 0.03, 0.02
		T1, T2 := 12960.0/525600, 53280.0/525600
		rate := 525600.0 / 43200 * (T1*v1*0.25 + T2*v2*0.75)

		got, err := Blend(v1, 12960, v2, 53280)
		if err != nil {
			t.Fatalf("Blend returned an error: %v", err)
		}
		if !scalar.EqualWithinRel(got, 100*math.Sqrt(rate), 1e-12) {
			t.Errorf("expected %v, got %v", 100*math.Sqrt(rate), got)
		}
	})

	t.Run("NegativeVariance", func(t *testing.T) {
		got, err := Blend(-0.5, 12960, 0.01, 53280)
		if !errors.Is(err, ErrNegativeVariance) {
			t.Fatalf("expected ErrNegativeVariance, got %v", err)
		}
		if !math.IsNaN(got) {
			t.Errorf("expected NaN on error, got %v", got)
		}
	})

	t.Run("NegativeButOffsetByNext", func(t *testing.T) {
		// A slightly negative near variance is fine as long as the blend is not.
		if _, err := Blend(-0.001, 12960, 0.04, 53280); err != nil {
			t.Errorf("expected a valid blend, got %v", err)
		}
	})

	t.Run("NaNVariance", func(t *testing.T) {
		if _, err := Blend(math.NaN(), 12960, 0.04, 53280); !errors.Is(err, models.ErrInsufficientData) {
			t.Errorf("expected ErrInsufficientData, got %v", err)
		}
	})
}
