// Package results persists optimization run outcomes for reporting and
// comparison across engines.
package results

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// Record is one persisted engine result: the best-of-N-runs weights for an
// engine together with the parameters that produced them.
type Record struct {
	ID             string    `json:"id"`
	Engine         string    `json:"engine"`
	Symbols        []string  `json:"symbols"`
	Weights        []float64 `json:"weights"`
	SharpeRatio    float64   `json:"sharpe_ratio"`
	History        []float64 `json:"history"`
	PopulationSize int       `json:"population_size"`
	Generations    int       `json:"generations"`
	Runs           int       `json:"runs"`
	CreatedAt      time.Time `json:"created_at"`
}

// Finite reports whether every numeric value of the record is finite.
// Degenerate covariance inputs can yield NaN or infinite Sharpe ratios
// (see the optimization package); such records cannot be JSON-encoded and
// are filtered before persistence and API responses.
func (r Record) Finite() bool {
	if math.IsNaN(r.SharpeRatio) || math.IsInf(r.SharpeRatio, 0) {
		return false
	}
	for _, w := range r.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return false
		}
	}
	for _, h := range r.History {
		if math.IsNaN(h) || math.IsInf(h, 0) {
			return false
		}
	}
	return true
}

// RunRepository stores optimization records in SQLite.
type RunRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *sql.DB, log zerolog.Logger) *RunRepository {
	return &RunRepository{
		db:  db,
		log: log.With().Str("component", "run_repository").Logger(),
	}
}

// Init creates the results schema if it does not exist.
func (r *RunRepository) Init() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS optimization_runs (
			id              TEXT PRIMARY KEY,
			engine          TEXT NOT NULL,
			symbols         TEXT NOT NULL,
			weights         TEXT NOT NULL,
			sharpe_ratio    REAL NOT NULL,
			history         TEXT NOT NULL,
			population_size INTEGER NOT NULL,
			generations     INTEGER NOT NULL,
			runs            INTEGER NOT NULL,
			created_at      INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create optimization_runs table: %w", err)
	}
	return nil
}

// Save persists a record.
func (r *RunRepository) Save(rec Record) error {
	symbols, err := json.Marshal(rec.Symbols)
	if err != nil {
		return fmt.Errorf("failed to marshal symbols: %w", err)
	}
	weights, err := json.Marshal(rec.Weights)
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}
	history, err := json.Marshal(rec.History)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO optimization_runs
			(id, engine, symbols, weights, sharpe_ratio, history, population_size, generations, runs, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.Engine, string(symbols), string(weights), rec.SharpeRatio,
		string(history), rec.PopulationSize, rec.Generations, rec.Runs, rec.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert optimization run %s: %w", rec.ID, err)
	}

	r.log.Debug().
		Str("id", rec.ID).
		Str("engine", rec.Engine).
		Float64("sharpe_ratio", rec.SharpeRatio).
		Msg("Saved optimization run")

	return nil
}

// Get fetches a record by id.
func (r *RunRepository) Get(id string) (*Record, error) {
	row := r.db.QueryRow(`
		SELECT id, engine, symbols, weights, sharpe_ratio, history, population_size, generations, runs, created_at
		FROM optimization_runs
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("optimization run %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns the most recent records, newest first.
func (r *RunRepository) List(limit int) ([]Record, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := r.db.Query(`
		SELECT id, engine, symbols, weights, sharpe_ratio, history, population_size, generations, runs, created_at
		FROM optimization_runs
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query optimization runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var symbols, weights, history string
	var createdAt int64

	err := row.Scan(
		&rec.ID, &rec.Engine, &symbols, &weights, &rec.SharpeRatio,
		&history, &rec.PopulationSize, &rec.Generations, &rec.Runs, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(symbols), &rec.Symbols); err != nil {
		return nil, fmt.Errorf("failed to unmarshal symbols: %w", err)
	}
	if err := json.Unmarshal([]byte(weights), &rec.Weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}
	if err := json.Unmarshal([]byte(history), &rec.History); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &rec, nil
}
