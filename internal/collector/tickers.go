package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

const maxTickerLen = 10

// ErrNoTickers is returned when a ticker list holds no valid symbols.
var ErrNoTickers = errors.New("no valid tickers")

// LoadTickers reads the first column of a CSV file into normalized symbols.
// Duplicates are kept in file order.
func LoadTickers(path string, logger *zap.Logger) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ticker list: %w", err)
	}
	defer f.Close()

	tickers, err := ParseTickers(f, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tickers, nil
}

// ParseTickers is LoadTickers over an arbitrary reader.
func ParseTickers(r io.Reader, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	var tickers []string
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				logger.Debug("dropping malformed row", zap.Int("row", row+1), zap.Error(err))
				continue
			}
			return nil, fmt.Errorf("read ticker list: %w", err)
		}
		if len(rec) == 0 {
			continue
		}
		cell := strings.ToUpper(strings.TrimSpace(rec[0]))
		if row == 0 && (cell == "TICKER" || cell == "SYMBOL") {
			continue
		}
		if !validTicker(cell) {
			if cell != "" {
				logger.Debug("dropping invalid ticker", zap.Int("row", row+1), zap.String("value", cell))
			}
			continue
		}
		tickers = append(tickers, cell)
	}
	if len(tickers) == 0 {
		return nil, ErrNoTickers
	}
	return tickers, nil
}

func validTicker(s string) bool {
	if len(s) == 0 || len(s) > maxTickerLen {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '.':
		default:
			return false
		}
	}
	return true
}
