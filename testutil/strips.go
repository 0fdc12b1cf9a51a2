// Package testutil builds synthetic option strips for tests.
package testutil

import (
	"math"

	"github.com/bcdannyboy/indiavix/chain"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// StripParams describes a strip priced with Black-76 at a flat volatility.
type StripParams struct {
	Forward     float64
	Rate        float64
	Years       float64
	Vol         float64
	LowStrike   float64
	HighStrike  float64
	Step        float64
	SpreadRatio float64 // relative bid/ask spread applied to every quote
}

// Black76 prices a European option on a futures contract.
func Black76(isCall bool, F, K, T, r, sigma float64) float64 {
	sd := sigma * math.Sqrt(T)
	d1 := (math.Log(F/K) + 0.5*sd*sd) / sd
	d2 := d1 - sd
	df := math.Exp(-r * T)

	if isCall {
		return df * (F*distuv.UnitNormal.CDF(d1) - K*distuv.UnitNormal.CDF(d2))
	}
	return df * (K*distuv.UnitNormal.CDF(-d2) - F*distuv.UnitNormal.CDF(-d1))
}

// Quote returns a bid and ask around mid whose spread ratio is spreadRatio.
func Quote(mid, spreadRatio float64) (bid, ask float64) {
	half := mid * spreadRatio / 2
	return mid - half, mid + half
}

func Strip(p StripParams) chain.Strip {
	var strip chain.Strip
	for k := p.LowStrike; k <= p.HighStrike+p.Step/2; k += p.Step {
		call := Black76(true, p.Forward, k, p.Years, p.Rate, p.Vol)
		put := Black76(false, p.Forward, k, p.Years, p.Rate, p.Vol)

		row := chain.Row{Strike: k}
		row.CallBid, row.CallAsk = Quote(call, p.SpreadRatio)
		row.PutBid, row.PutAsk = Quote(put, p.SpreadRatio)
		strip = append(strip, row)
	}
	return strip
}

// NearMonth and NextMonth are the two expiries of the toy scenario: 9 and 37
// days out, futures at 5129 and 5115, strikes 25 apart across ±25%.
func NearMonth(vol float64) chain.Strip {
	return Strip(StripParams{
		Forward: 5129, Rate: 0.039, Years: 12960.0 / 525600, Vol: vol,
		LowStrike: 3850, HighStrike: 6400, Step: 25, SpreadRatio: 0.1,
	})
}

func NextMonth(vol float64) chain.Strip {
	return Strip(StripParams{
		Forward: 5115, Rate: 0.0465, Years: 53280.0 / 525600, Vol: vol,
		LowStrike: 3850, HighStrike: 6400, Step: 25, SpreadRatio: 0.1,
	})
}

// Perturber nudges quotes by small random amounts from a seeded source so
// property tests are repeatable.
type Perturber struct {
	dist distuv.Uniform
}

func NewPerturber(seed uint64, size float64) *Perturber {
	return &Perturber{dist: distuv.Uniform{Min: -size, Max: size, Src: rand.NewSource(seed)}}
}

func (p *Perturber) Next() float64 {
	return p.dist.Rand()
}
