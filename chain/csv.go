package chain

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
)

// ReadCSV decodes an option chain with the columns Strike, Call Bid, Call Ask,
// Put Bid and Put Ask. Rows are returned sorted by strike; any remaining
// problem (duplicate strikes, crossed quotes) is left for Validate.
func ReadCSV(r io.Reader) (Strip, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode option chain: %w", err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Strike < rows[j].Strike
	})

	return Strip(rows), nil
}

func LoadCSV(path string) (Strip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open option chain %s: %w", path, err)
	}
	defer f.Close()

	strip, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return strip, nil
}
