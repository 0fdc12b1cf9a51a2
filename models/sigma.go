package models

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/indiavix/chain"
	"gonum.org/v1/gonum/floats"
)

// Sigma returns the implied variance of one expiry using the default policy.
func Sigma(strip chain.Strip, minutesToExpiry int, futuresPrice, riskFreeRate float64) (float64, error) {
	est, err := EstimateVariance(strip, ExpiryContext{
		MinutesToExpiry: minutesToExpiry,
		FuturesPrice:    futuresPrice,
		RiskFreeRate:    riskFreeRate,
	}, DefaultPolicy())
	if err != nil {
		return math.NaN(), err
	}
	return est.Variance, nil
}

// EstimateVariance replicates the variance of one expiry from its strip of
// out-of-the-money option prices:
//
//	σ² = (2 Σ ΔK/K² · e^{rT} · Q(K) − (F/K₀ − 1)²) / T
//
// where K₀ is the ATM strike, Q is the put mid below K₀, the call mid above it
// and their average at K₀, and T is the expiry in years.
func EstimateVariance(strip chain.Strip, expiry ExpiryContext, policy Policy) (VarianceEstimate, error) {
	if err := expiry.Validate(); err != nil {
		return VarianceEstimate{}, err
	}

	corrected, err := Correct(strip, expiry.FuturesPrice, policy)
	if err != nil {
		return VarianceEstimate{}, err
	}
	if !corrected.CallCorrected {
		return VarianceEstimate{}, fmt.Errorf("%w: %d clean call quotes at or above ATM strike %v, need %d",
			ErrInsufficientData, corrected.CallKnots, corrected.ATMStrike, policy.MinKnots)
	}
	if !corrected.PutCorrected {
		return VarianceEstimate{}, fmt.Errorf("%w: %d clean put quotes at or below ATM strike %v, need %d",
			ErrInsufficientData, corrected.PutKnots, corrected.ATMStrike, policy.MinKnots)
	}

	strikes, prices, unpriced := contributionPrices(corrected, policy.Missing)
	if len(unpriced) > 0 && policy.Missing == MissingReject {
		return VarianceEstimate{}, fmt.Errorf("%w: no corrected price for strikes %v outside the clean quote range",
			ErrInsufficientData, unpriced)
	}
	if len(strikes) < 2 {
		return VarianceEstimate{}, fmt.Errorf("%w: %d priced strikes left", ErrInsufficientData, len(strikes))
	}

	T := expiry.YearFraction()
	growth := math.Exp(expiry.RiskFreeRate * T)
	deltaK := strikeSpacing(strikes)

	contributions := make([]float64, len(strikes))
	for i, k := range strikes {
		contributions[i] = (deltaK[i] / (k * k)) * growth * prices[i]
	}
	sum := floats.Sum(contributions)

	forwardTerm := expiry.FuturesPrice/corrected.ATMStrike - 1
	variance := (2*sum - forwardTerm*forwardTerm) / T

	return VarianceEstimate{
		Variance:        variance,
		Expiry:          expiry,
		ATMStrike:       corrected.ATMStrike,
		ContributionSum: sum,
		Strikes:         len(strikes),
		CallKnots:       corrected.CallKnots,
		PutKnots:        corrected.PutKnots,
		Unpriced:        unpriced,
	}, nil
}

// contributionPrices picks the out-of-the-money price of every row and applies
// the missing quote handling to rows left without one. The strikes returned
// are the rows that take part in the sum.
func contributionPrices(cs CorrectedStrip, missing MissingQuotes) (strikes, prices, unpriced []float64) {
	strikes = make([]float64, 0, len(cs.Rows))
	prices = make([]float64, 0, len(cs.Rows))

	for _, row := range cs.Rows {
		var q float64
		switch {
		case row.Strike < cs.ATMStrike:
			q = row.PutMid
		case row.Strike > cs.ATMStrike:
			q = row.CallMid
		default:
			q = (row.PutMid + row.CallMid) / 2
		}

		if math.IsNaN(q) {
			unpriced = append(unpriced, row.Strike)
			switch missing {
			case MissingDrop:
				continue
			case MissingZero:
				q = 0
			}
		}

		strikes = append(strikes, row.Strike)
		prices = append(prices, q)
	}

	return strikes, prices, unpriced
}

// strikeSpacing returns ΔK for each strike: half the distance between its two
// neighbours, or the distance to the only neighbour at either end.
func strikeSpacing(strikes []float64) []float64 {
	n := len(strikes)
	deltaK := make([]float64, n)
	for i := range strikes {
		switch i {
		case 0:
			deltaK[i] = math.Abs(strikes[1] - strikes[0])
		case n - 1:
			deltaK[i] = math.Abs(strikes[i] - strikes[i-1])
		default:
			deltaK[i] = (math.Abs(strikes[i]-strikes[i-1]) + math.Abs(strikes[i+1]-strikes[i])) / 2
		}
	}
	return deltaK
}
