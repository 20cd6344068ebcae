package pricing

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
)

// PriceRecord is the Parquet schema for daily close files: one row per
// (ticker, date) observation.
type PriceRecord struct {
	Ticker    string  `parquet:"ticker"`
	Timestamp int64   `parquet:"date,timestamp(millisecond)"` // Unix ms
	Close     float64 `parquet:"close"`
}

// Manifest maps tickers to their price files, mirroring the
// manifest_prices.json contract of the data directory.
type Manifest struct {
	Entries map[string]ManifestEntry `json:"entries"`
}

type ManifestEntry struct {
	File string `json:"file"`
}

// LoadManifest reads manifest_prices.json from dir. A missing manifest is
// not an error; lookups then fall back to <ticker>.parquet naming.
func LoadManifest(dir string) (Manifest, error) {
	path := filepath.Join(dir, "manifest_prices.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, nil
		}
		return Manifest{}, fmt.Errorf("read price manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse price manifest: %w", err)
	}
	return m, nil
}

// PriceFile resolves the parquet file for a ticker: manifest entry first,
// then the conventional <ticker>.parquet name with dots mapped to
// underscores. Returns "" when neither exists.
func (m Manifest) PriceFile(dir, ticker string) string {
	if e, ok := m.Entries[ticker]; ok {
		if filepath.IsAbs(e.File) {
			return e.File
		}
		return filepath.Join(dir, e.File)
	}
	candidate := filepath.Join(dir, strings.ReplaceAll(ticker, ".", "_")+".parquet")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

// LoadHistory reads the parquet close series for the given tickers from dir.
// Tickers whose file cannot be found are reported in missing and skipped;
// only I/O or decode failures on present files are errors.
func LoadHistory(dir string, tickers []string) (h *History, missing []string, err error) {
	manifest, err := LoadManifest(dir)
	if err != nil {
		return nil, nil, err
	}

	h = NewHistory()
	for _, ticker := range tickers {
		path := manifest.PriceFile(dir, ticker)
		if path == "" {
			missing = append(missing, ticker)
			continue
		}
		records, err := parquet.ReadFile[PriceRecord](path)
		if err != nil {
			return nil, missing, fmt.Errorf("read prices for %s: %w", ticker, err)
		}
		for _, r := range records {
			t := ticker
			if r.Ticker != "" {
				t = r.Ticker
			}
			h.Add(t, time.UnixMilli(r.Timestamp).UTC(), r.Close)
		}
	}
	return h, missing, nil
}

// LoadSeries reads a single ticker's parquet file into an existing history.
// Used for the benchmark series, which lives outside the supervised set.
func LoadSeries(dir, ticker string, h *History) (bool, error) {
	manifest, err := LoadManifest(dir)
	if err != nil {
		return false, err
	}
	path := manifest.PriceFile(dir, ticker)
	if path == "" {
		return false, nil
	}
	records, err := parquet.ReadFile[PriceRecord](path)
	if err != nil {
		return false, fmt.Errorf("read prices for %s: %w", ticker, err)
	}
	for _, r := range records {
		h.Add(ticker, time.UnixMilli(r.Timestamp).UTC(), r.Close)
	}
	return true, nil
}

// WriteHistory writes one parquet file per ticker into dir using the
// conventional naming. Mostly useful for fixtures and data preparation.
func WriteHistory(dir string, h *History) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, ticker := range h.Tickers() {
		var records []PriceRecord
		for _, d := range h.Dates() {
			if v, ok := h.Price(d, ticker); ok {
				records = append(records, PriceRecord{
					Ticker:    ticker,
					Timestamp: d.UnixMilli(),
					Close:     v,
				})
			}
		}
		path := filepath.Join(dir, strings.ReplaceAll(ticker, ".", "_")+".parquet")
		if err := parquet.WriteFile(path, records); err != nil {
			return fmt.Errorf("write prices for %s: %w", ticker, err)
		}
	}
	return nil
}
