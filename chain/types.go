package chain

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidStrip = errors.New("invalid option strip")

// Row is one strike of an option chain with the best call and put quotes.
type Row struct {
	Strike  float64 `csv:"Strike" json:"strike"`
	CallBid float64 `csv:"Call Bid" json:"call_bid"`
	CallAsk float64 `csv:"Call Ask" json:"call_ask"`
	PutBid  float64 `csv:"Put Bid" json:"put_bid"`
	PutAsk  float64 `csv:"Put Ask" json:"put_ask"`
}

// Strip is an option chain for a single expiry, sorted ascending by strike.
type Strip []Row

func (s Strip) Strikes() []float64 {
	strikes := make([]float64, len(s))
	for i, row := range s {
		strikes[i] = row.Strike
	}
	return strikes
}

func (s Strip) Clone() Strip {
	out := make(Strip, len(s))
	copy(out, s)
	return out
}

// Validate rejects strips the variance calculation cannot be run on: fewer
// than two rows, non-positive or non-increasing strikes, and crossed or
// negative quotes.
func (s Strip) Validate() error {
	if len(s) < 2 {
		return fmt.Errorf("%w: need at least 2 rows, got %d", ErrInvalidStrip, len(s))
	}

	for i, row := range s {
		if math.IsNaN(row.Strike) || math.IsInf(row.Strike, 0) || row.Strike <= 0 {
			return fmt.Errorf("%w: row %d has strike %v", ErrInvalidStrip, i, row.Strike)
		}
		if i > 0 && row.Strike <= s[i-1].Strike {
			return fmt.Errorf("%w: strikes not strictly increasing at row %d (%v after %v)", ErrInvalidStrip, i, row.Strike, s[i-1].Strike)
		}
		if err := checkQuote(row.CallBid, row.CallAsk); err != nil {
			return fmt.Errorf("%w: row %d call quote: %s", ErrInvalidStrip, i, err)
		}
		if err := checkQuote(row.PutBid, row.PutAsk); err != nil {
			return fmt.Errorf("%w: row %d put quote: %s", ErrInvalidStrip, i, err)
		}
	}

	return nil
}

func checkQuote(bid, ask float64) error {
	switch {
	case math.IsNaN(bid) || math.IsNaN(ask):
		return errors.New("missing bid or ask")
	case bid < 0 || ask < 0:
		return fmt.Errorf("negative price (bid %v, ask %v)", bid, ask)
	case ask < bid:
		return fmt.Errorf("ask %v below bid %v", ask, bid)
	}
	return nil
}
