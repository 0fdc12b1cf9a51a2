package models

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/bcdannyboy/indiavix/chain"
)

const MinutesPerYear = 525600

const (
	// DefaultMaxSpreadRatio is the widest relative bid/ask spread a quote may
	// have and still be used as a spline knot.
	DefaultMaxSpreadRatio = 0.3
	// DefaultMinKnots is the fewest clean quotes a side needs to be corrected.
	DefaultMinKnots = 3
)

var (
	ErrInvalidExpiry    = errors.New("invalid expiry")
	ErrInvalidPolicy    = errors.New("invalid correction policy")
	ErrNoATMStrike      = errors.New("no strike below futures price")
	ErrInsufficientData = errors.New("insufficient option data")
)

// ExpiryContext holds the per-expiry inputs that accompany an option strip.
type ExpiryContext struct {
	MinutesToExpiry int     `json:"minutes_to_expiry"`
	FuturesPrice    float64 `json:"futures_price"`
	RiskFreeRate    float64 `json:"risk_free_rate"`
}

// YearFraction converts minutes to expiry into years of 525600 minutes.
func (e ExpiryContext) YearFraction() float64 {
	return float64(e.MinutesToExpiry) / MinutesPerYear
}

func (e ExpiryContext) Validate() error {
	if e.MinutesToExpiry <= 0 {
		return fmt.Errorf("%w: minutes to expiry must be positive, got %d", ErrInvalidExpiry, e.MinutesToExpiry)
	}
	if math.IsNaN(e.FuturesPrice) || math.IsInf(e.FuturesPrice, 0) || e.FuturesPrice <= 0 {
		return fmt.Errorf("%w: futures price must be positive, got %v", ErrInvalidExpiry, e.FuturesPrice)
	}
	if math.IsNaN(e.RiskFreeRate) || math.IsInf(e.RiskFreeRate, 0) {
		return fmt.Errorf("%w: risk-free rate must be finite, got %v", ErrInvalidExpiry, e.RiskFreeRate)
	}
	return nil
}

// MissingQuotes selects what happens to strikes whose corrected price is
// undefined because they fall outside the range of clean spline knots. The
// choice belongs to the caller; there is no neutral default that is right
// for every data source.
type MissingQuotes int

const (
	// MissingReject fails the estimate and names the affected strikes.
	MissingReject MissingQuotes = iota
	// MissingDrop removes the affected rows before strike spacing is computed.
	MissingDrop
	// MissingZero prices the affected rows at zero, keeping strike spacing.
	MissingZero
)

func (m MissingQuotes) String() string {
	switch m {
	case MissingReject:
		return "reject"
	case MissingDrop:
		return "drop"
	case MissingZero:
		return "zero"
	default:
		return fmt.Sprintf("MissingQuotes(%d)", int(m))
	}
}

func ParseMissingQuotes(s string) (MissingQuotes, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reject", "":
		return MissingReject, nil
	case "drop":
		return MissingDrop, nil
	case "zero":
		return MissingZero, nil
	}
	return MissingReject, fmt.Errorf("%w: unknown missing quote handling %q", ErrInvalidPolicy, s)
}

// Policy holds the quote reliability thresholds used by the spline correction.
type Policy struct {
	MaxSpreadRatio float64
	MinKnots       int
	Missing        MissingQuotes
}

func DefaultPolicy() Policy {
	return Policy{
		MaxSpreadRatio: DefaultMaxSpreadRatio,
		MinKnots:       DefaultMinKnots,
		Missing:        MissingReject,
	}
}

func (p Policy) Validate() error {
	if math.IsNaN(p.MaxSpreadRatio) || p.MaxSpreadRatio < 0 {
		return fmt.Errorf("%w: max spread ratio %v", ErrInvalidPolicy, p.MaxSpreadRatio)
	}
	// A cubic spline needs at least two knots.
	if p.MinKnots < 2 {
		return fmt.Errorf("%w: min knots %d is below 2", ErrInvalidPolicy, p.MinKnots)
	}
	switch p.Missing {
	case MissingReject, MissingDrop, MissingZero:
	default:
		return fmt.Errorf("%w: %v", ErrInvalidPolicy, p.Missing)
	}
	return nil
}

// CorrectedRow is a strip row with its derived mid prices and spread ratios.
// After correction the mids hold spline values, NaN where undefined.
type CorrectedRow struct {
	chain.Row
	CallMid         float64
	PutMid          float64
	CallSpreadRatio float64
	PutSpreadRatio  float64
}

// CorrectedStrip is built fresh for every estimate and never shares storage
// with the strip it was derived from.
type CorrectedStrip struct {
	Rows          []CorrectedRow
	ATMStrike     float64
	ATMIndex      int
	CallCorrected bool
	PutCorrected  bool
	CallKnots     int
	PutKnots      int
}

// VarianceEstimate is the implied variance of one expiry.
type VarianceEstimate struct {
	Variance        float64       `json:"variance"`
	Expiry          ExpiryContext `json:"expiry"`
	ATMStrike       float64       `json:"atm_strike"`
	ContributionSum float64       `json:"contribution_sum"`
	Strikes         int           `json:"strikes"`
	CallKnots       int           `json:"call_knots"`
	PutKnots        int           `json:"put_knots"`
	Unpriced        []float64     `json:"unpriced_strikes,omitempty"`
}
