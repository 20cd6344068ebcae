// Package universe models the supervised ticker set the strategy is allowed
// to hold. Membership outside it forces an exit regardless of any other rule.
package universe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Universe is an immutable set of ticker identifiers with a fixed sorted
// iteration order. The buy-selection pass depends on that order being
// stable, so it is established once at construction.
type Universe struct {
	tickers []string
	members map[string]struct{}
}

// New builds a universe from tickers, deduplicated and sorted.
func New(tickers []string) *Universe {
	members := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		members[t] = struct{}{}
	}
	sorted := make([]string, 0, len(members))
	for t := range members {
		sorted = append(sorted, t)
	}
	sort.Strings(sorted)
	return &Universe{tickers: sorted, members: members}
}

// Contains reports membership.
func (u *Universe) Contains(ticker string) bool {
	_, ok := u.members[ticker]
	return ok
}

// Tickers returns the members in sorted order.
func (u *Universe) Tickers() []string {
	out := make([]string, len(u.tickers))
	copy(out, u.tickers)
	return out
}

func (u *Universe) Len() int { return len(u.tickers) }

// memberRecord is the parquet schema of the supervised-universe file.
type memberRecord struct {
	Ticker string `parquet:"ticker"`
}

// LoadFile reads a universe from a .parquet or .json file, chosen by
// extension.
func LoadFile(path string) (*Universe, error) {
	switch filepath.Ext(path) {
	case ".parquet":
		records, err := parquet.ReadFile[memberRecord](path)
		if err != nil {
			return nil, fmt.Errorf("read universe parquet: %w", err)
		}
		tickers := make([]string, 0, len(records))
		for _, r := range records {
			tickers = append(tickers, r.Ticker)
		}
		return New(tickers), nil
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read universe json: %w", err)
		}
		var tickers []string
		if err := json.Unmarshal(data, &tickers); err != nil {
			return nil, fmt.Errorf("parse universe json: %w", err)
		}
		return New(tickers), nil
	default:
		return nil, fmt.Errorf("universe file %s: unsupported extension", path)
	}
}
