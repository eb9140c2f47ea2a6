// Package universe provides access to the historical price data the
// optimizer runs against.
package universe

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// HistoryDB provides access to historical price data and reshapes it into
// the return matrix the optimization engines consume.
type HistoryDB struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistoryDB creates a new history database accessor
func NewHistoryDB(db *sql.DB, log zerolog.Logger) *HistoryDB {
	return &HistoryDB{
		db:  db,
		log: log.With().Str("component", "history_db").Logger(),
	}
}

// DailyPrice represents one adjusted closing price observation.
type DailyPrice struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Init creates the price history schema if it does not exist.
func (h *HistoryDB) Init() error {
	_, err := h.db.Exec(`
		CREATE TABLE IF NOT EXISTS daily_prices (
			symbol    TEXT    NOT NULL,
			date      INTEGER NOT NULL,
			adj_close REAL    NOT NULL,
			PRIMARY KEY (symbol, date)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create daily_prices table: %w", err)
	}
	return nil
}

// SavePrices inserts or replaces daily prices for a symbol.
func (h *HistoryDB) SavePrices(symbol string, prices []DailyPrice) error {
	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO daily_prices (symbol, date, adj_close)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range prices {
		if _, err := stmt.Exec(symbol, p.Date.Unix(), p.Close); err != nil {
			return fmt.Errorf("failed to insert price for %s: %w", symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit prices for %s: %w", symbol, err)
	}
	return nil
}

// Symbols returns all symbols with stored prices, sorted.
func (h *HistoryDB) Symbols() ([]string, error) {
	rows, err := h.db.Query(`SELECT DISTINCT symbol FROM daily_prices ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// ClosingPrices returns up to limit closing prices for a symbol in
// ascending date order. Non-positive closes are forward-filled from the
// previous observation so the derived returns have no missing entries.
func (h *HistoryDB) ClosingPrices(symbol string, limit int) ([]float64, error) {
	rows, err := h.db.Query(`
		SELECT adj_close
		FROM daily_prices
		WHERE symbol = ?
		ORDER BY date DESC
		LIMIT ?
	`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query closing prices: %w", err)
	}
	defer rows.Close()

	var reversed []float64
	for rows.Next() {
		var c float64
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan closing price: %w", err)
		}
		reversed = append(reversed, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Restore ascending order and forward-fill bad observations.
	closes := make([]float64, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		c := reversed[i]
		if c <= 0 {
			if len(closes) == 0 {
				continue // no previous value to fill from
			}
			c = closes[len(closes)-1]
		}
		closes = append(closes, c)
	}
	return closes, nil
}

// Returns converts closing prices for a symbol into fractional
// period-over-period changes.
func (h *HistoryDB) Returns(symbol string, lookbackDays int) ([]float64, error) {
	closes, err := h.ClosingPrices(symbol, lookbackDays)
	if err != nil {
		return nil, err
	}
	if len(closes) < 2 {
		return nil, fmt.Errorf("symbol %s has %d usable prices, need at least 2", symbol, len(closes))
	}
	returns := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns[i-1] = (closes[i] - closes[i-1]) / closes[i-1]
	}
	return returns, nil
}

// ReturnMatrix builds the T×N return matrix for the given symbols, one
// column per symbol. Series are aligned on their most recent observations
// and truncated to the shortest series so the matrix has no gaps.
func (h *HistoryDB) ReturnMatrix(symbols []string, lookbackDays int) (*mat.Dense, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols provided")
	}

	series := make([][]float64, len(symbols))
	minLen := -1
	for i, symbol := range symbols {
		returns, err := h.Returns(symbol, lookbackDays)
		if err != nil {
			return nil, err
		}
		series[i] = returns
		if minLen == -1 || len(returns) < minLen {
			minLen = len(returns)
		}
	}
	if minLen < 2 {
		return nil, fmt.Errorf("aligned return series too short: %d rows", minLen)
	}

	matrix := mat.NewDense(minLen, len(symbols), nil)
	for j, returns := range series {
		tail := returns[len(returns)-minLen:]
		for i, r := range tail {
			matrix.Set(i, j, r)
		}
	}

	h.log.Debug().
		Int("symbols", len(symbols)).
		Int("rows", minLen).
		Msg("Built return matrix")

	return matrix, nil
}

// TopByMeanReturn selects the count symbols with the highest mean return
// over the lookback window. Symbols with unusable price series are skipped.
func (h *HistoryDB) TopByMeanReturn(count, lookbackDays int) ([]string, error) {
	if count < 1 {
		return nil, fmt.Errorf("asset count must be positive, got %d", count)
	}

	symbols, err := h.Symbols()
	if err != nil {
		return nil, err
	}

	type ranked struct {
		symbol string
		mean   float64
	}
	var candidates []ranked
	for _, symbol := range symbols {
		returns, err := h.Returns(symbol, lookbackDays)
		if err != nil {
			h.log.Warn().Str("symbol", symbol).Err(err).Msg("Skipping symbol without usable returns")
			continue
		}
		candidates = append(candidates, ranked{symbol: symbol, mean: stat.Mean(returns, nil)})
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no symbols with usable price history")
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].mean > candidates[j].mean
	})

	if count > len(candidates) {
		count = len(candidates)
	}
	top := make([]string, count)
	for i := 0; i < count; i++ {
		top[i] = candidates[i].symbol
	}
	return top, nil
}
