package models

import (
	"fmt"
	"math"
	"sort"

	"github.com/bcdannyboy/indiavix/chain"
	"gonum.org/v1/gonum/interp"
)

// Correct derives mid prices and spread ratios for every row of strip, picks
// the ATM strike for futuresPrice and replaces the mids of each side with a
// natural cubic spline through that side's clean quotes.
//
// The ATM strike is the strike just below the insertion point of the futures
// price, so a futures price sitting exactly on a strike selects the strike
// beneath it. Calls are splined over strikes at or above ATM and puts over
// strikes at or below it. A side with fewer than policy.MinKnots clean quotes
// is left entirely NaN, and strikes outside a spline's knot range are NaN as
// well since the spline is never extrapolated.
func Correct(strip chain.Strip, futuresPrice float64, policy Policy) (CorrectedStrip, error) {
	if err := strip.Validate(); err != nil {
		return CorrectedStrip{}, err
	}
	if err := policy.Validate(); err != nil {
		return CorrectedStrip{}, err
	}

	if math.IsNaN(futuresPrice) || math.IsInf(futuresPrice, 0) || futuresPrice <= 0 {
		return CorrectedStrip{}, fmt.Errorf("%w: futures price %v", ErrInvalidExpiry, futuresPrice)
	}

	strikes := strip.Strikes()
	atmIndex := sort.SearchFloat64s(strikes, futuresPrice) - 1
	if atmIndex < 0 {
		return CorrectedStrip{}, fmt.Errorf("%w: futures price %v is at or below the lowest strike %v", ErrNoATMStrike, futuresPrice, strikes[0])
	}

	rows := make([]CorrectedRow, len(strip))
	callMids := make([]float64, len(strip))
	putMids := make([]float64, len(strip))
	callRatios := make([]float64, len(strip))
	putRatios := make([]float64, len(strip))
	for i, row := range strip {
		callMids[i] = (row.CallBid + row.CallAsk) / 2
		putMids[i] = (row.PutBid + row.PutAsk) / 2
		callRatios[i] = (row.CallAsk - row.CallBid) / callMids[i]
		putRatios[i] = (row.PutAsk - row.PutBid) / putMids[i]
		rows[i] = CorrectedRow{
			Row:             row,
			CallSpreadRatio: callRatios[i],
			PutSpreadRatio:  putRatios[i],
		}
	}

	out := CorrectedStrip{
		Rows:      rows,
		ATMStrike: strikes[atmIndex],
		ATMIndex:  atmIndex,
	}

	// The ATM row belongs to both sides.
	callSide := sideKnots(strikes[atmIndex:], callMids[atmIndex:], callRatios[atmIndex:], policy.MaxSpreadRatio)
	putSide := sideKnots(strikes[:atmIndex+1], putMids[:atmIndex+1], putRatios[:atmIndex+1], policy.MaxSpreadRatio)
	out.CallKnots = len(callSide.xs)
	out.PutKnots = len(putSide.xs)

	correctedCalls, ok, err := callSide.evaluate(strikes, policy.MinKnots)
	if err != nil {
		return CorrectedStrip{}, fmt.Errorf("call spline: %w", err)
	}
	out.CallCorrected = ok

	correctedPuts, ok, err := putSide.evaluate(strikes, policy.MinKnots)
	if err != nil {
		return CorrectedStrip{}, fmt.Errorf("put spline: %w", err)
	}
	out.PutCorrected = ok

	for i := range rows {
		rows[i].CallMid = correctedCalls[i]
		rows[i].PutMid = correctedPuts[i]
	}

	return out, nil
}

// knots are the clean (strike, mid) points of one side of the strip.
type knots struct {
	xs []float64
	ys []float64
}

func sideKnots(strikes, mids, ratios []float64, maxRatio float64) knots {
	var k knots
	for i, ratio := range ratios {
		// NaN ratios (zero mids) fail the comparison and are never knots.
		if ratio <= maxRatio {
			k.xs = append(k.xs, strikes[i])
			k.ys = append(k.ys, mids[i])
		}
	}
	return k
}

// evaluate fits the knots and predicts every strike. Too few knots gives an
// all-NaN result and ok == false.
func (k knots) evaluate(strikes []float64, minKnots int) ([]float64, bool, error) {
	out := make([]float64, len(strikes))
	if len(k.xs) < minKnots || len(k.xs) < 2 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out, false, nil
	}

	var spline interp.NaturalCubic
	if err := spline.Fit(k.xs, k.ys); err != nil {
		return nil, false, err
	}

	lo, hi := k.xs[0], k.xs[len(k.xs)-1]
	for i, strike := range strikes {
		if strike < lo || strike > hi {
			out[i] = math.NaN()
			continue
		}
		out[i] = spline.Predict(strike)
	}
	return out, true, nil
}
