package vix

import (
	"github.com/bcdannyboy/indiavix/models"
	"github.com/shopspring/decimal"
)

type Result struct {
	Index      float64                 `json:"index"`
	Near       models.VarianceEstimate `json:"near"`
	Next       models.VarianceEstimate `json:"next"`
	NearWeight float64                 `json:"near_weight"`
	NextWeight float64                 `json:"next_weight"`
}

// Rounded returns the index rounded half away from zero to places decimals,
// the way it is published.
func (r Result) Rounded(places int32) decimal.Decimal {
	return decimal.NewFromFloat(r.Index).Round(places)
}
