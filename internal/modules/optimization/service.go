package optimization

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/swarmfolio/internal/modules/results"
	"github.com/aristath/swarmfolio/internal/modules/universe"
)

// RunParams parameterizes one optimization request. Zero values fall back
// to the service defaults; a nil Seed means a fresh time-derived seed.
type RunParams struct {
	Engines        []string `json:"engines"`
	AssetCount     int      `json:"asset_count"`
	PopulationSize int      `json:"population_size"`
	Generations    int      `json:"generations"`
	Runs           int      `json:"runs"`
	LookbackDays   int      `json:"lookback_days"`
	Seed           *uint64  `json:"seed,omitempty"`
}

// OptimizerService ties the price store, the engines and the results
// repository together: it selects the highest-mean-return assets, derives
// the optimization problem, runs the multi-run selector and persists the
// per-engine best results.
type OptimizerService struct {
	history  *universe.HistoryDB
	repo     *results.RunRepository
	defaults RunParams
	log      zerolog.Logger
}

// NewOptimizerService creates the optimizer service. repo may be nil, in
// which case results are returned but not persisted.
func NewOptimizerService(
	history *universe.HistoryDB,
	repo *results.RunRepository,
	defaults RunParams,
	log zerolog.Logger,
) *OptimizerService {
	return &OptimizerService{
		history:  history,
		repo:     repo,
		defaults: defaults,
		log:      log.With().Str("component", "optimizer_service").Logger(),
	}
}

// Optimize runs every requested engine against the current price history
// and returns one record per engine (best of N runs).
func (s *OptimizerService) Optimize(params RunParams) ([]results.Record, error) {
	p := s.applyDefaults(params)

	symbols, err := s.history.TopByMeanReturn(p.AssetCount, p.LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("failed to select assets: %w", err)
	}

	returnMatrix, err := s.history.ReturnMatrix(symbols, p.LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("failed to build return matrix: %w", err)
	}

	problem, err := NewProblem(returnMatrix)
	if err != nil {
		return nil, fmt.Errorf("failed to derive problem statistics: %w", err)
	}

	seed := uint64(time.Now().UnixNano())
	if p.Seed != nil {
		seed = *p.Seed
	}

	s.log.Info().
		Strs("engines", p.Engines).
		Strs("symbols", symbols).
		Int("population_size", p.PopulationSize).
		Int("generations", p.Generations).
		Int("runs", p.Runs).
		Uint64("seed", seed).
		Msg("Starting optimization")

	selector := NewSelector(problem, seed, s.log)
	bestPerEngine, err := selector.Run(p.Engines, p.PopulationSize, p.Generations, p.Runs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	records := make([]results.Record, 0, len(p.Engines))
	for _, name := range p.Engines {
		res := bestPerEngine[name]
		rec := results.Record{
			ID:             uuid.New().String(),
			Engine:         name,
			Symbols:        symbols,
			Weights:        res.Weights,
			SharpeRatio:    res.SharpeRatio,
			History:        res.History,
			PopulationSize: p.PopulationSize,
			Generations:    p.Generations,
			Runs:           p.Runs,
			CreatedAt:      now,
		}
		records = append(records, rec)

		if s.repo == nil {
			continue
		}
		if !rec.Finite() {
			// Degenerate variance produced non-finite values; keep the
			// record in the response but don't persist it.
			s.log.Warn().Str("engine", name).Msg("Skipping persistence of non-finite result")
			continue
		}
		if err := s.repo.Save(rec); err != nil {
			s.log.Error().Str("engine", name).Err(err).Msg("Failed to persist optimization run")
		}
	}

	return records, nil
}

// Defaults returns the service's default run parameters.
func (s *OptimizerService) Defaults() RunParams {
	return s.defaults
}

func (s *OptimizerService) applyDefaults(p RunParams) RunParams {
	if len(p.Engines) == 0 {
		p.Engines = s.defaults.Engines
	}
	if len(p.Engines) == 0 {
		p.Engines = EngineNames
	}
	if p.AssetCount <= 0 {
		p.AssetCount = s.defaults.AssetCount
	}
	if p.PopulationSize <= 0 {
		p.PopulationSize = s.defaults.PopulationSize
	}
	if p.Generations <= 0 {
		p.Generations = s.defaults.Generations
	}
	if p.Runs <= 0 {
		p.Runs = s.defaults.Runs
	}
	if p.LookbackDays <= 0 {
		p.LookbackDays = s.defaults.LookbackDays
	}
	return p
}
