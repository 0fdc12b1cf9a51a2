package vix

import (
	"errors"
	"fmt"
	"math"

	"github.com/bcdannyboy/indiavix/models"
)

// MinutesIn30Days is the constant maturity the index is interpolated to.
const MinutesIn30Days = 43200

var (
	ErrDegenerateExpirySpacing = errors.New("degenerate expiry spacing")
	ErrNegativeVariance        = errors.New("negative blended variance")
)

// Weights returns the interpolation weights of the near and next expiry. The
// near expiry must be strictly inside 30 days and the next strictly beyond,
// otherwise the blend would extrapolate.
func Weights(mte1, mte2 int) (w1, w2 float64, err error) {
	if mte1 >= mte2 || mte1 >= MinutesIn30Days || mte2 <= MinutesIn30Days {
		return 0, 0, fmt.Errorf("%w: need near < %d < next minutes to expiry, got near %d and next %d",
			ErrDegenerateExpirySpacing, MinutesIn30Days, mte1, mte2)
	}

	w1 = float64(mte2-MinutesIn30Days) / float64(mte2-mte1)
	// Equal to (43200 - mte1) / (mte2 - mte1); taking the complement keeps
	// w1 + w2 at exactly 1.
	w2 = 1 - w1
	return w1, w2, nil
}

// Blend interpolates two expiry variances to 30 days and returns the index in
// annualised volatility points.
func Blend(variance1 float64, mte1 int, variance2 float64, mte2 int) (float64, error) {
	w1, w2, err := Weights(mte1, mte2)
	if err != nil {
		return math.NaN(), err
	}

	T1 := float64(mte1) / models.MinutesPerYear
	T2 := float64(mte2) / models.MinutesPerYear

	rate := (models.MinutesPerYear / float64(MinutesIn30Days)) * (T1*variance1*w1 + T2*variance2*w2)
	if math.IsNaN(rate) {
		return math.NaN(), fmt.Errorf("%w: variances %v and %v", models.ErrInsufficientData, variance1, variance2)
	}
	if rate < 0 {
		return math.NaN(), fmt.Errorf("%w: %v", ErrNegativeVariance, rate)
	}

	return 100 * math.Sqrt(rate), nil
}
