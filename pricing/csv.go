package pricing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// LoadCSV reads a long-format close file with a date,ticker,close header.
// It is the plain-text alternative to the parquet data contract, handy for
// small fixtures.
func LoadCSV(path string) (*History, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses date,ticker,close rows from r. The first row is treated as
// a header and skipped.
func ReadCSV(r io.Reader) (*History, error) {
	cr := csv.NewReader(r)
	h := NewHistory()
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("price csv line %d: %w", line+1, err)
		}
		line++
		if line == 1 {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("price csv line %d: want 3 fields, got %d", line, len(rec))
		}
		d, err := ParseDay(rec[0])
		if err != nil {
			return nil, fmt.Errorf("price csv line %d: bad date %q: %w", line, rec[0], err)
		}
		close, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("price csv line %d: bad close %q: %w", line, rec[2], err)
		}
		h.Add(rec[1], d, close)
	}
	return h, nil
}
