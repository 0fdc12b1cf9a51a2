package chain

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func validStrip() Strip {
	return Strip{
		{Strike: 100, CallBid: 9, CallAsk: 10, PutBid: 1, PutAsk: 1.2},
		{Strike: 110, CallBid: 4, CallAsk: 4.4, PutBid: 4, PutAsk: 4.5},
		{Strike: 120, CallBid: 1, CallAsk: 1.1, PutBid: 9, PutAsk: 10},
	}
}

func TestValidate(t *testing.T) {
	if err := validStrip().Validate(); err != nil {
		t.Fatalf("valid strip rejected: %v", err)
	}

	tests := []struct {
		name  string
		strip func() Strip
	}{
		{"Empty", func() Strip { return nil }},
		{"SingleRow", func() Strip { return validStrip()[:1] }},
		{"ZeroStrike", func() Strip { s := validStrip(); s[0].Strike = 0; return s }},
		{"NegativeStrike", func() Strip { s := validStrip(); s[0].Strike = -5; return s }},
		{"DuplicateStrike", func() Strip { s := validStrip(); s[1].Strike = 100; return s }},
		{"DescendingStrike", func() Strip { s := validStrip(); s[2].Strike = 105; return s }},
		{"NaNStrike", func() Strip { s := validStrip(); s[1].Strike = math.NaN(); return s }},
		{"CrossedCall", func() Strip { s := validStrip(); s[1].CallAsk = 3; return s }},
		{"NegativePutBid", func() Strip { s := validStrip(); s[2].PutBid = -1; return s }},
		{"MissingPutAsk", func() Strip { s := validStrip(); s[0].PutAsk = math.NaN(); return s }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.strip().Validate()
			if !errors.Is(err, ErrInvalidStrip) {
				t.Fatalf("expected ErrInvalidStrip, got %v", err)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := validStrip()
	c := s.Clone()
	c[0].CallBid = 99

	if s[0].CallBid != 9 {
		t.Errorf("mutating the clone changed the original: %v", s[0].CallBid)
	}
}

func TestStrikes(t *testing.T) {
	got := validStrip().Strikes()
	want := []float64{100, 110, 120}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("strike %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestReadCSV(t *testing.T) {
	in := "Strike,Call Bid,Call Ask,Put Bid,Put Ask\n" +
		"110,4,4.4,4,4.5\n" +
		"100,9,10,1,1.2\n"

	strip, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV returned an error: %v", err)
	}
	if len(strip) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(strip))
	}
	if strip[0].Strike != 100 || strip[1].Strike != 110 {
		t.Errorf("rows not sorted by strike: %+v", strip)
	}
	if strip[1].PutAsk != 4.5 {
		t.Errorf("Put Ask column not decoded: %+v", strip[1])
	}
}

func TestLoadCSV(t *testing.T) {
	strip, err := LoadCSV("testdata/near_month_option_chain.csv")
	if err != nil {
		t.Fatalf("LoadCSV returned an error: %v", err)
	}
	if len(strip) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(strip))
	}
	if err := strip.Validate(); err != nil {
		t.Errorf("fixture should validate after loading: %v", err)
	}
	if strip[0].Strike != 5000 || strip[4].Strike != 5200 {
		t.Errorf("unexpected strike range %v..%v", strip[0].Strike, strip[4].Strike)
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	if _, err := LoadCSV("testdata/does_not_exist.csv"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
